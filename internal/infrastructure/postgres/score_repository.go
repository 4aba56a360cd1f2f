package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

var _ repository.ScoreRepository = (*ScoreRepo)(nil)

// ScoreRepo puntajes de sostenibilidad sobre PostgreSQL.
type ScoreRepo struct {
	q Querier
}

// NewScoreRepository construye el adaptador de puntajes.
func NewScoreRepository(q Querier) *ScoreRepo {
	return &ScoreRepo{q: q}
}

func (r *ScoreRepo) Create(ctx context.Context, s *entity.Score) error {
	query := `
		INSERT INTO scores (id, batch_id, environment_score, ethics_score, safety_score, cost_score,
			final_score, reasoning, copied_from_batch_id, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.BatchID, s.EnvironmentScore, s.EthicsScore, s.SafetyScore, s.CostScore,
		s.FinalScore, s.Reasoning, s.CopiedFromBatchID, s.GeneratedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// GetByBatchID devuelve el puntaje más reciente del lote.
func (r *ScoreRepo) GetByBatchID(ctx context.Context, batchID string) (*entity.Score, error) {
	if !validID(batchID) {
		return nil, nil
	}
	query := `
		SELECT id, batch_id, environment_score, ethics_score, safety_score, cost_score,
			final_score, reasoning, copied_from_batch_id, generated_at
		FROM scores WHERE batch_id = $1
		ORDER BY generated_at DESC LIMIT 1`
	var s entity.Score
	err := r.q.QueryRow(ctx, query, batchID).Scan(
		&s.ID, &s.BatchID, &s.EnvironmentScore, &s.EthicsScore, &s.SafetyScore, &s.CostScore,
		&s.FinalScore, &s.Reasoning, &s.CopiedFromBatchID, &s.GeneratedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get score: %w", err)
	}
	return &s, nil
}

func (r *ScoreRepo) DeleteByBatchID(ctx context.Context, batchID string) error {
	if !validID(batchID) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM scores WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("delete scores: %w", err)
	}
	return nil
}
