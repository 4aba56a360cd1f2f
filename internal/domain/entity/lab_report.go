package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabReport informe de un laboratorio sobre un lote. No modifica el ValidationStatus del lote.
type LabReport struct {
	ID             string
	BatchID        string
	LabID          string
	TestSummary    string
	Certifications string
	EcoRating      int
	LabScore       decimal.Decimal
	Verified       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LabReportStats totales de los informes emitidos por un laboratorio.
type LabReportStats struct {
	Total          int
	Verified       int
	Pending        int
	UniqueProducts int // productos distintos cuyos lotes recibieron informe
}
