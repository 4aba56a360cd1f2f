package entity

import "time"

// Entidades y acciones registradas en la bitácora.
const (
	AuditEntityBatch     = "batch"
	AuditEntityTransport = "transport"

	AuditActionCreate  = "create"
	AuditActionUpdate  = "update"
	AuditActionDelete  = "delete"
	AuditActionRescore = "rescore"
)

// AuditLog registro de bitácora escrito en la misma transacción que el cambio.
type AuditLog struct {
	ID          string
	EntityType  string
	EntityID    string
	Action      string
	PerformedBy string
	CreatedAt   time.Time
}
