package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Score puntaje de sostenibilidad de un lote. Por convención hay uno por lote;
// el almacenamiento no lo obliga.
type Score struct {
	ID                string
	BatchID           string
	EnvironmentScore  *decimal.Decimal
	EthicsScore       *decimal.Decimal
	SafetyScore       *decimal.Decimal
	CostScore         *decimal.Decimal
	FinalScore        decimal.Decimal
	Reasoning         string
	CopiedFromBatchID *string // lote del que se copió el puntaje final (sin cambios de composición)
	GeneratedAt       time.Time
}
