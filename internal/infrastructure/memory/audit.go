package memory

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// AuditRepo implementa repository.AuditRepository.
type AuditRepo struct{ view }

var _ repository.AuditRepository = (*AuditRepo)(nil)

func (r *AuditRepo) Record(_ context.Context, e *entity.AuditLog) error {
	return r.read(func(st *state) error {
		st.audit = append(st.audit, *e)
		return nil
	})
}
