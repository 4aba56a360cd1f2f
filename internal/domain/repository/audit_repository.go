package repository

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// AuditRepository registra entradas de bitácora (solo inserción).
type AuditRepository interface {
	Record(ctx context.Context, entry *entity.AuditLog) error
}
