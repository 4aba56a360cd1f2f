package dto

import "time"

// ProductBatchStatsDTO conteo de lotes y último lote de un producto.
type ProductBatchStatsDTO struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	BatchCount         int        `json:"batch_count"`
	LastBatchID        *string    `json:"last_batch_id"`
	LastBatchCode      *string    `json:"last_batch_code"`
	LastBatchCreatedAt *time.Time `json:"last_batch_created_at"`
}

// ManufacturerDashboardDTO resumen del fabricante para el dashboard.
type ManufacturerDashboardDTO struct {
	TotalProducts int                    `json:"total_products"`
	TotalBatches  int                    `json:"total_batches"`
	Products      []ProductBatchStatsDTO `json:"products"`
}
