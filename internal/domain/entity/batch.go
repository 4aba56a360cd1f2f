package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationStatus nivel de confianza asignado a un lote al momento de crearlo.
type ValidationStatus string

// Niveles de validación de un lote.
const (
	ValidationAutoVerified ValidationStatus = "auto_verified" // misma composición que el lote anterior
	ValidationAIReview     ValidationStatus = "ai_review"     // cambio menor, requiere puntaje automático
	ValidationLabRequired  ValidationStatus = "lab_required"  // primer lote o cambio mayor
)

// Valid indica si el valor es uno de los niveles conocidos.
func (s ValidationStatus) Valid() bool {
	switch s {
	case ValidationAutoVerified, ValidationAIReview, ValidationLabRequired:
		return true
	}
	return false
}

// Batch representa una corrida de producción de un producto.
// (ProductID, BatchCode) es único; ValidationStatus lo asigna el motor de validación.
type Batch struct {
	ID                    string
	ProductID             string
	BatchCode             string
	ManufactureDate       *time.Time
	ExpiryDate            *time.Time
	MaterialInfo          string // composición de materiales, opaca para la clasificación
	MaterialSource        string
	ManufacturingLocation string
	BaseCarbonFootprint   *decimal.Decimal
	ValidationStatus      ValidationStatus
	LedgerVersion         int64 // sube con cada alta, corrección o baja de tramos del lote
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// BatchWithProduct lote junto con los datos mínimos de su producto (listados y detalle).
type BatchWithProduct struct {
	Batch
	ProductName    string
	ProductBrand   string
	ManufacturerID string
}
