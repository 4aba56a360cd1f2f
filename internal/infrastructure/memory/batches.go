package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// BatchRepo implementa repository.BatchRepository.
type BatchRepo struct{ view }

var _ repository.BatchRepository = (*BatchRepo)(nil)

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	return r.read(func(st *state) error {
		if codeTaken(st, b.ProductID, b.BatchCode, "") {
			return domain.ErrConflict
		}
		st.batches[b.ID] = *b
		st.track(b.ID)
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.read(func(st *state) error {
		if b, ok := st.batches[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID dentro de la tx.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) GetWithProduct(_ context.Context, id string) (*entity.BatchWithProduct, error) {
	var out *entity.BatchWithProduct
	err := r.read(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return nil
		}
		out = withProduct(st, b)
		return nil
	})
	return out, err
}

func (r *BatchRepo) GetByProductAndCode(_ context.Context, productID, batchCode string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.read(func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID && b.BatchCode == batchCode {
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

// LatestForProduct ordena por (created_at, id) igual que PostgreSQL. Con before y un
// excludeID existente el corte es la tupla del lote excluido.
func (r *BatchRepo) LatestForProduct(_ context.Context, productID string, before *time.Time, excludeID string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.read(func(st *state) error {
		excluded, hasExcluded := st.batches[excludeID]
		for _, b := range st.batches {
			if b.ProductID != productID || b.ID == excludeID {
				continue
			}
			switch {
			case before == nil:
			case hasExcluded:
				if !batchNewer(excluded, b) {
					continue
				}
			case !b.CreatedAt.Before(*before):
				continue
			}
			if out == nil || batchNewer(b, *out) {
				out = &b
			}
		}
		return nil
	})
	return out, err
}

func (r *BatchRepo) List(_ context.Context, f repository.BatchFilter) ([]*entity.BatchWithProduct, int, error) {
	var (
		out   []*entity.BatchWithProduct
		total int
	)
	err := r.read(func(st *state) error {
		var all []*entity.BatchWithProduct
		for _, b := range st.batches {
			bw := withProduct(st, b)
			if bw.ManufacturerID != f.ManufacturerID {
				continue
			}
			if !matches(f.Search, bw.BatchCode, bw.ProductName, bw.ProductBrand) {
				continue
			}
			all = append(all, bw)
		}
		sort.Slice(all, func(i, j int) bool {
			return newerFirst(st, all[i].ID, all[i].CreatedAt, all[j].ID, all[j].CreatedAt)
		})
		total = len(all)
		out = paginate(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

// Update reescribe el lote. validation_status y ledger_version no se tocan.
func (r *BatchRepo) Update(_ context.Context, b *entity.Batch) error {
	return r.read(func(st *state) error {
		cur, ok := st.batches[b.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if codeTaken(st, b.ProductID, b.BatchCode, b.ID) {
			return domain.ErrConflict
		}
		next := *b
		next.ValidationStatus = cur.ValidationStatus
		next.LedgerVersion = cur.LedgerVersion
		st.batches[b.ID] = next
		return nil
	})
}

func (r *BatchRepo) BumpLedgerVersion(_ context.Context, id string) error {
	return r.read(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		b.LedgerVersion++
		st.batches[id] = b
		return nil
	})
}

func (r *BatchRepo) UpdateValidationStatus(_ context.Context, id string, status entity.ValidationStatus) error {
	return r.read(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		b.ValidationStatus = status
		b.UpdatedAt = time.Now().UTC()
		st.batches[id] = b
		return nil
	})
}

// Delete elimina el lote y en cascada tramos, puntajes e informes.
func (r *BatchRepo) Delete(_ context.Context, id string) error {
	return r.read(func(st *state) error {
		if _, ok := st.batches[id]; !ok {
			return domain.ErrNotFound
		}
		deleteBatch(st, id)
		return nil
	})
}

func (r *BatchRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := r.read(func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID {
				out = append(out, &b)
			}
		}
		sort.Slice(out, func(i, j int) bool { return batchNewer(*out[i], *out[j]) })
		return nil
	})
	return out, err
}

func (r *BatchRepo) ListPendingLab(_ context.Context, f repository.PendingLabFilter) ([]*entity.BatchWithProduct, int, error) {
	var (
		out   []*entity.BatchWithProduct
		total int
	)
	err := r.read(func(st *state) error {
		tested := make(map[string]bool, len(st.labReports))
		for _, l := range st.labReports {
			tested[l.BatchID] = true
		}
		var all []*entity.BatchWithProduct
		for _, b := range st.batches {
			if b.ValidationStatus != entity.ValidationLabRequired || tested[b.ID] {
				continue
			}
			bw := withProduct(st, b)
			if !matches(f.Search, bw.BatchCode, bw.ManufacturingLocation, bw.ProductName) {
				continue
			}
			all = append(all, bw)
		}
		sort.Slice(all, func(i, j int) bool { return batchNewer(all[i].Batch, all[j].Batch) })
		total = len(all)
		out = paginate(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

// deleteBatch borra el lote con sus tramos, puntajes e informes (ON DELETE CASCADE).
func deleteBatch(st *state, id string) {
	delete(st.batches, id)
	for k, t := range st.transports {
		if t.BatchID == id {
			delete(st.transports, k)
		}
	}
	for k, s := range st.scores {
		if s.BatchID == id {
			delete(st.scores, k)
		}
	}
	for k, l := range st.labReports {
		if l.BatchID == id {
			delete(st.labReports, k)
		}
	}
}

func codeTaken(st *state, productID, code, excludeID string) bool {
	for _, other := range st.batches {
		if other.ID != excludeID && other.ProductID == productID && other.BatchCode == code {
			return true
		}
	}
	return false
}

func withProduct(st *state, b entity.Batch) *entity.BatchWithProduct {
	p := st.products[b.ProductID]
	return &entity.BatchWithProduct{
		Batch:          b,
		ProductName:    p.Name,
		ProductBrand:   p.Brand,
		ManufacturerID: p.ManufacturerID,
	}
}

// batchNewer orden created_at DESC, id DESC del historial de un producto.
func batchNewer(a, b entity.Batch) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
