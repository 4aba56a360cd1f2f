package entity

import "time"

// Product representa un producto de un fabricante; sus lotes llevan la trazabilidad.
type Product struct {
	ID             string
	ManufacturerID string
	Name           string // único en todo el sistema
	Brand          string
	Category       string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
