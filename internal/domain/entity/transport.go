package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transport representa un tramo de envío de un lote entre dos ubicaciones.
// TransportEmission siempre es derivado de DistanceKm y FuelType.
type Transport struct {
	ID                string
	BatchID           string
	TransporterID     string
	Origin            string
	Destination       string
	DistanceKm        decimal.Decimal
	FuelType          string
	VehicleType       string
	TransportEmission decimal.Decimal
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TransportWithBatch tramo con el código del lote (listados del transportador).
type TransportWithBatch struct {
	Transport
	BatchCode string
}

// AvailableOrigins ubicaciones desde donde puede salir el siguiente tramo de un lote.
// Version es el LedgerVersion del lote con el que se calcularon.
type AvailableOrigins struct {
	ManufacturedAt string
	Origins        []string
	Version        int64
}
