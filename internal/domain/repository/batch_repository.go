package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// BatchFilter filtros del listado de lotes de un fabricante.
type BatchFilter struct {
	ManufacturerID string
	Search         string // coincide con código de lote, nombre o marca del producto
	Limit          int
	Offset         int
}

// PendingLabFilter filtros de la cola de lotes pendientes de laboratorio.
type PendingLabFilter struct {
	Search string // coincide con código de lote, ubicación de fabricación o nombre del producto
	Limit  int
	Offset int
}

// BatchRepository define el puerto de persistencia para Batch.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	GetWithProduct(ctx context.Context, id string) (*entity.BatchWithProduct, error)
	GetByProductAndCode(ctx context.Context, productID, batchCode string) (*entity.Batch, error)
	// LatestForProduct devuelve el lote más reciente del producto (created_at DESC, id DESC).
	// before, si no es nil, limita a lotes creados antes de ese instante; excludeID omite un lote.
	// Con ambos, el corte es la tupla (before, excludeID): los empates de created_at cuentan
	// como anteriores si su id es menor.
	LatestForProduct(ctx context.Context, productID string, before *time.Time, excludeID string) (*entity.Batch, error)
	List(ctx context.Context, filter BatchFilter) ([]*entity.BatchWithProduct, int, error)
	// ListByProduct devuelve los lotes del producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error)
	// ListPendingLab lista los lotes lab_required que aún no tienen ningún informe de laboratorio.
	ListPendingLab(ctx context.Context, filter PendingLabFilter) ([]*entity.BatchWithProduct, int, error)
	Update(ctx context.Context, batch *entity.Batch) error
	UpdateValidationStatus(ctx context.Context, id string, status entity.ValidationStatus) error
	// BumpLedgerVersion incrementa LedgerVersion; se llama en la misma tx que escribe tramos.
	BumpLedgerVersion(ctx context.Context, id string) error
	// Delete elimina el lote junto con sus tramos, puntajes e informes.
	Delete(ctx context.Context, id string) error
}
