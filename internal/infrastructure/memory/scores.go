package memory

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// ScoreRepo implementa repository.ScoreRepository.
type ScoreRepo struct{ view }

var _ repository.ScoreRepository = (*ScoreRepo)(nil)

func (r *ScoreRepo) Create(_ context.Context, s *entity.Score) error {
	return r.read(func(st *state) error {
		st.scores[s.ID] = *s
		st.track(s.ID)
		return nil
	})
}

func (r *ScoreRepo) GetByBatchID(_ context.Context, batchID string) (*entity.Score, error) {
	var out *entity.Score
	err := r.read(func(st *state) error {
		for _, s := range st.scores {
			if s.BatchID != batchID {
				continue
			}
			if out == nil || newerFirst(st, s.ID, s.GeneratedAt, out.ID, out.GeneratedAt) {
				out = &s
			}
		}
		return nil
	})
	return out, err
}

func (r *ScoreRepo) DeleteByBatchID(_ context.Context, batchID string) error {
	return r.read(func(st *state) error {
		for k, s := range st.scores {
			if s.BatchID == batchID {
				delete(st.scores, k)
			}
		}
		return nil
	})
}
