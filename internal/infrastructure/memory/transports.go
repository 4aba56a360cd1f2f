package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// TransportRepo implementa repository.TransportRepository.
type TransportRepo struct{ view }

var _ repository.TransportRepository = (*TransportRepo)(nil)

func (r *TransportRepo) Create(_ context.Context, t *entity.Transport) error {
	return r.read(func(st *state) error {
		if routeTaken(st, t) {
			return domain.ErrDuplicateRoute
		}
		st.transports[t.ID] = *t
		st.track(t.ID)
		return nil
	})
}

func (r *TransportRepo) GetByID(_ context.Context, id string) (*entity.Transport, error) {
	var out *entity.Transport
	err := r.read(func(st *state) error {
		if t, ok := st.transports[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *TransportRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.Transport, error) {
	var out []*entity.Transport
	err := r.read(func(st *state) error {
		out = batchTransports(st, batchID)
		return nil
	})
	return out, err
}

func (r *TransportRepo) ListByBatchPaged(_ context.Context, batchID string, limit, offset int) ([]*entity.Transport, int, error) {
	var (
		out   []*entity.Transport
		total int
	)
	err := r.read(func(st *state) error {
		all := batchTransports(st, batchID)
		total = len(all)
		out = paginate(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *TransportRepo) ListByTransporter(_ context.Context, f repository.TransportFilter) ([]*entity.TransportWithBatch, int, error) {
	var (
		out   []*entity.TransportWithBatch
		total int
	)
	err := r.read(func(st *state) error {
		var all []*entity.TransportWithBatch
		for _, t := range st.transports {
			if t.TransporterID != f.TransporterID {
				continue
			}
			code := st.batches[t.BatchID].BatchCode
			if !matches(f.Search, t.Origin, t.Destination, code) {
				continue
			}
			all = append(all, &entity.TransportWithBatch{Transport: t, BatchCode: code})
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

func (r *TransportRepo) Update(_ context.Context, t *entity.Transport) error {
	return r.read(func(st *state) error {
		if _, ok := st.transports[t.ID]; !ok {
			return domain.ErrNotFound
		}
		if routeTaken(st, t) {
			return domain.ErrDuplicateRoute
		}
		st.transports[t.ID] = *t
		return nil
	})
}

func (r *TransportRepo) Delete(_ context.Context, id string) error {
	return r.read(func(st *state) error {
		if _, ok := st.transports[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.transports, id)
		return nil
	})
}

// batchTransports tramos del lote en orden de creación.
func batchTransports(st *state, batchID string) []*entity.Transport {
	var out []*entity.Transport
	for _, t := range st.transports {
		if t.BatchID == batchID {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return olderFirst(st, out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out
}

// routeTaken réplica de uq_transport_route: (batch_id, lower(origin), lower(destination)).
func routeTaken(st *state, t *entity.Transport) bool {
	for _, other := range st.transports {
		if other.ID == t.ID || other.BatchID != t.BatchID {
			continue
		}
		if strings.EqualFold(other.Origin, t.Origin) && strings.EqualFold(other.Destination, t.Destination) {
			return true
		}
	}
	return false
}
