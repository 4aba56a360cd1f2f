package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ view }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.read(func(st *state) error {
		for _, other := range st.products {
			if strings.EqualFold(other.Name, p.Name) {
				return domain.ErrConflict
			}
		}
		st.products[p.ID] = *p
		st.track(p.ID)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la tx ya tiene el almacén en exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	var out *entity.Product
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.Name, name) {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) ListByManufacturer(_ context.Context, manufacturerID string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if p.ManufacturerID == manufacturerID {
				out = append(out, &p)
			}
		}
		sort.Slice(out, func(i, j int) bool { return newerFirst(st, out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, int, error) {
	var (
		out   []*entity.Product
		total int
	)
	err := r.read(func(st *state) error {
		all := make([]*entity.Product, 0, len(st.products))
		for _, p := range st.products {
			all = append(all, &p)
		}
		sort.Slice(all, func(i, j int) bool { return newerFirst(st, all[i].ID, all[i].CreatedAt, all[j].ID, all[j].CreatedAt) })
		total = len(all)
		out = paginate(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.read(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.products {
			if other.ID != p.ID && strings.EqualFold(other.Name, p.Name) {
				return domain.ErrConflict
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

// Delete elimina el producto y en cascada sus lotes.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.read(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		for bid, b := range st.batches {
			if b.ProductID == id {
				deleteBatch(st, bid)
			}
		}
		return nil
	})
}
