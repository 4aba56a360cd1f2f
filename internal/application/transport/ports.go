package transport

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// La verificación de origen y de ruta duplicada ocurre en la misma tx que el insert.
type TxRunner interface {
	RunTransport(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		transportRepo repository.TransportRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// OriginsCache caché de lectura de orígenes disponibles por lote.
// Nunca participa en la admisión de tramos; solo sirve la consulta pública.
// Los fallos del backend se tratan como miss.
type OriginsCache interface {
	Get(ctx context.Context, batchID string) (*entity.AvailableOrigins, bool)
	Set(ctx context.Context, batchID string, origins entity.AvailableOrigins)
	Invalidate(ctx context.Context, batchID string)
}
