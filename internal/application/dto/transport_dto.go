package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransportRequest body para POST /api/transports.
// La emisión nunca la envía el cliente; siempre se calcula.
type CreateTransportRequest struct {
	BatchID     string          `json:"batch_id" validate:"required"`
	Origin      string          `json:"origin" validate:"required,min=2,max=100"`
	Destination string          `json:"destination" validate:"required,min=2,max=100"`
	DistanceKm  decimal.Decimal `json:"distance_km" validate:"gt=0"`
	FuelType    string          `json:"fuel_type" validate:"required"`
	VehicleType string          `json:"vehicle_type,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// UpdateTransportRequest corrección de un tramo ya aceptado. Campos nil no cambian.
type UpdateTransportRequest struct {
	Origin      *string          `json:"origin" validate:"omitempty,min=2,max=100"`
	Destination *string          `json:"destination" validate:"omitempty,min=2,max=100"`
	DistanceKm  *decimal.Decimal `json:"distance_km" validate:"omitempty,gt=0"`
	FuelType    *string          `json:"fuel_type"`
	VehicleType *string          `json:"vehicle_type"`
	Notes       *string          `json:"notes"`
}

// BatchMini datos mínimos del lote anidados en un tramo.
type BatchMini struct {
	ID        string `json:"id"`
	BatchCode string `json:"batch_code"`
}

// TransportResponse salida de un tramo.
type TransportResponse struct {
	ID                string          `json:"id"`
	BatchID           string          `json:"batch_id"`
	Batch             *BatchMini      `json:"batch,omitempty"`
	TransporterID     string          `json:"transporter_id"`
	Origin            string          `json:"origin"`
	Destination       string          `json:"destination"`
	DistanceKm        decimal.Decimal `json:"distance_km"`
	FuelType          string          `json:"fuel_type"`
	VehicleType       string          `json:"vehicle_type,omitempty"`
	TransportEmission decimal.Decimal `json:"transport_emission"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TransportListResponse lista paginada de tramos.
type TransportListResponse struct {
	Total int                 `json:"total"`
	Items []TransportResponse `json:"items"`
}

// AvailableOriginsResponse orígenes válidos para el próximo tramo de un lote.
type AvailableOriginsResponse struct {
	BatchID        string   `json:"batch_id"`
	ManufacturedAt string   `json:"manufactured_at"`
	Origins        []string `json:"origins"`
}

// TransportStatsResponse estadísticas agregadas de un transportador.
type TransportStatsResponse struct {
	TotalTransports  int             `json:"total_transports"`
	TotalDistance    decimal.Decimal `json:"total_distance"`
	TotalEmission    decimal.Decimal `json:"total_emission"`
	AvgEmissionPerKm decimal.Decimal `json:"avg_emission_per_km"`
}
