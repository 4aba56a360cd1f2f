package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransporterTotals resultado crudo de la agregación de tramos de un transportador.
// Lo produce la DB; el use case calcula promedios y redondeos.
type TransporterTotals struct {
	TransportCount int
	TotalDistance  decimal.Decimal
	TotalEmission  decimal.Decimal
}

// ProductBatchSummary conteo de lotes y último lote de un producto.
type ProductBatchSummary struct {
	ProductID          string
	ProductName        string
	BatchCount         int
	LastBatchID        *string
	LastBatchCode      *string
	LastBatchCreatedAt *time.Time
}

// AnalyticsRepository define las consultas de lectura para estadísticas y dashboards.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetTransporterTotals suma distancia y emisiones de los tramos del transportador.
	// Usa COALESCE para devolver cero si no hay tramos.
	GetTransporterTotals(ctx context.Context, transporterID string) (TransporterTotals, error)

	// ── Métodos del Dashboard del fabricante ──────────────────────────────────

	CountProducts(ctx context.Context, manufacturerID string) (int, error)
	CountBatches(ctx context.Context, manufacturerID string) (int, error)

	// ProductBatchSummaries devuelve un registro por producto del fabricante,
	// incluidos los productos sin lotes.
	ProductBatchSummaries(ctx context.Context, manufacturerID string) ([]ProductBatchSummary, error)
}
