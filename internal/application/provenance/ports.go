package provenance

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que leer el lote anterior, decidir y escribir el lote nuevo sea atómico.
type TxRunner interface {
	RunBatch(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		scoreRepo repository.ScoreRepository,
		auditRepo repository.AuditRepository,
	) error) error
}
