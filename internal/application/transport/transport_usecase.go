package transport

import (
	"context"
	"strings"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// TransportUseCase consultas de tramos (solo lectura).
type TransportUseCase struct {
	batchRepo     repository.BatchRepository
	transportRepo repository.TransportRepository
}

// NewTransportUseCase construye el caso de uso.
func NewTransportUseCase(batchRepo repository.BatchRepository, transportRepo repository.TransportRepository) *TransportUseCase {
	return &TransportUseCase{batchRepo: batchRepo, transportRepo: transportRepo}
}

// Get obtiene un tramo. Solo el transportador que lo registró o un admin.
func (uc *TransportUseCase) Get(ctx context.Context, actorID string, isAdmin bool, id string) (*dto.TransportResponse, error) {
	t, err := uc.transportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !isAdmin && t.TransporterID != actorID {
		return nil, domain.ErrNotOwned
	}
	return toTransportResponse(t, ""), nil
}

// ListMy lista los tramos del transportador, más recientes primero.
func (uc *TransportUseCase) ListMy(ctx context.Context, transporterID string, skip, limit int, search string) (*dto.TransportListResponse, error) {
	pr := dto.PageRequest{Limit: limit, Offset: skip}
	pr.DefaultPage()

	list, total, err := uc.transportRepo.ListByTransporter(ctx, repository.TransportFilter{
		TransporterID: transporterID,
		Search:        strings.TrimSpace(search),
		Limit:         pr.Limit,
		Offset:        pr.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransportResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransportResponse(&t.Transport, t.BatchCode))
	}
	return &dto.TransportListResponse{Total: total, Items: items}, nil
}

// ListByBatch lista los tramos de un lote en orden de creación. Un fabricante solo ve
// los tramos de sus propios lotes; un admin ve todos.
func (uc *TransportUseCase) ListByBatch(ctx context.Context, actorID string, isAdmin bool, batchID string, skip, limit int) (*dto.TransportListResponse, error) {
	bw, err := uc.batchRepo.GetWithProduct(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if bw == nil {
		return nil, domain.ErrNotFound
	}
	if !isAdmin && bw.ManufacturerID != actorID {
		return nil, domain.ErrNotOwned
	}

	pr := dto.PageRequest{Limit: limit, Offset: skip}
	pr.DefaultPage()

	list, total, err := uc.transportRepo.ListByBatchPaged(ctx, batchID, pr.Limit, pr.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransportResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransportResponse(t, bw.BatchCode))
	}
	return &dto.TransportListResponse{Total: total, Items: items}, nil
}
