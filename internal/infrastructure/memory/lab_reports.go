package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// LabReportRepo implementa repository.LabReportRepository.
type LabReportRepo struct{ view }

var _ repository.LabReportRepository = (*LabReportRepo)(nil)

func (r *LabReportRepo) Create(_ context.Context, l *entity.LabReport) error {
	return r.read(func(st *state) error {
		for _, other := range st.labReports {
			if other.BatchID == l.BatchID && other.LabID == l.LabID {
				return domain.ErrConflict
			}
		}
		st.labReports[l.ID] = *l
		st.track(l.ID)
		return nil
	})
}

func (r *LabReportRepo) GetByID(_ context.Context, id string) (*entity.LabReport, error) {
	var out *entity.LabReport
	err := r.read(func(st *state) error {
		if l, ok := st.labReports[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *LabReportRepo) GetByBatchAndLab(_ context.Context, batchID, labID string) (*entity.LabReport, error) {
	var out *entity.LabReport
	err := r.read(func(st *state) error {
		for _, l := range st.labReports {
			if l.BatchID == batchID && l.LabID == labID {
				out = &l
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LabReportRepo) ListByLab(_ context.Context, f repository.LabReportFilter) ([]*entity.LabReport, int, error) {
	var (
		out   []*entity.LabReport
		total int
	)
	err := r.read(func(st *state) error {
		var all []*entity.LabReport
		for _, l := range st.labReports {
			if l.LabID != f.LabID {
				continue
			}
			if f.Verified != nil && l.Verified != *f.Verified {
				continue
			}
			if !matches(f.Search, l.TestSummary, l.Certifications, l.ID, st.batches[l.BatchID].BatchCode) {
				continue
			}
			all = append(all, &l)
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

func (r *LabReportRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.LabReport, error) {
	var out []*entity.LabReport
	err := r.read(func(st *state) error {
		for _, l := range st.labReports {
			if l.BatchID == batchID {
				out = append(out, &l)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return newerFirst(st, out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
		})
		return nil
	})
	return out, err
}

func (r *LabReportRepo) StatsByLab(_ context.Context, labID string) (*entity.LabReportStats, error) {
	out := &entity.LabReportStats{}
	err := r.read(func(st *state) error {
		products := make(map[string]struct{})
		for _, l := range st.labReports {
			if l.LabID != labID {
				continue
			}
			out.Total++
			if l.Verified {
				out.Verified++
			} else {
				out.Pending++
			}
			if b, ok := st.batches[l.BatchID]; ok {
				products[b.ProductID] = struct{}{}
			}
		}
		out.UniqueProducts = len(products)
		return nil
	})
	return out, err
}

func (r *LabReportRepo) Update(_ context.Context, l *entity.LabReport) error {
	return r.read(func(st *state) error {
		if _, ok := st.labReports[l.ID]; !ok {
			return domain.ErrNotFound
		}
		st.labReports[l.ID] = *l
		return nil
	})
}

func (r *LabReportRepo) Delete(_ context.Context, id string) error {
	return r.read(func(st *state) error {
		if _, ok := st.labReports[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.labReports, id)
		return nil
	})
}
