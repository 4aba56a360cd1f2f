package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrNotOwned       = errors.New("el recurso no pertenece al usuario")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrInvalidOrigin  = errors.New("origen no disponible para este lote")
	ErrDuplicateRoute = errors.New("la ruta ya existe para este lote")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
)
