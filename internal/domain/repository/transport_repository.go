package repository

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// TransportFilter filtros del listado de tramos de un transportador.
type TransportFilter struct {
	TransporterID string
	Search        string // coincide con origen, destino o código de lote
	Limit         int
	Offset        int
}

// TransportRepository define el puerto de persistencia para los tramos de transporte.
type TransportRepository interface {
	Create(ctx context.Context, transport *entity.Transport) error
	GetByID(ctx context.Context, id string) (*entity.Transport, error)
	// ListByBatch devuelve todos los tramos del lote en orden de creación (base del ledger).
	ListByBatch(ctx context.Context, batchID string) ([]*entity.Transport, error)
	ListByBatchPaged(ctx context.Context, batchID string, limit, offset int) ([]*entity.Transport, int, error)
	ListByTransporter(ctx context.Context, filter TransportFilter) ([]*entity.TransportWithBatch, int, error)
	Update(ctx context.Context, transport *entity.Transport) error
	Delete(ctx context.Context, id string) error
}
