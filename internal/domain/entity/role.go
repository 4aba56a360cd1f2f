package entity

// Roles reconocidos en el claim "role" del JWT. Las cuentas viven en el proveedor de identidad.
const (
	RoleManufacturer = "manufacturer"
	RoleTransporter  = "transporter"
	RoleLab          = "lab"
	RoleAdmin        = "admin"
	RoleConsumer     = "consumer"
)

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleManufacturer, RoleTransporter, RoleLab, RoleAdmin, RoleConsumer:
		return true
	}
	return false
}
