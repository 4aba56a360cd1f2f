package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de cambios; se escribe dentro de la misma tx que el cambio auditado.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de bitácora.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Record(ctx context.Context, e *entity.AuditLog) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO audit_logs (id, entity_type, entity_id, action, performed_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.EntityType, e.EntityID, e.Action, e.PerformedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
