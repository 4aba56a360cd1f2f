package repository

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// ScoreRepository define el puerto de persistencia para los puntajes de sostenibilidad.
type ScoreRepository interface {
	Create(ctx context.Context, score *entity.Score) error
	// GetByBatchID devuelve el puntaje más reciente del lote o nil si no tiene.
	GetByBatchID(ctx context.Context, batchID string) (*entity.Score, error)
	DeleteByBatchID(ctx context.Context, batchID string) error
}
