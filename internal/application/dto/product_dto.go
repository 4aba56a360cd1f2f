package dto

import "time"

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// UpdateProductRequest campos editables de un producto (solo admin).
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	Brand       *string `json:"brand"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string    `json:"id"`
	ManufacturerID string    `json:"manufacturer_id"`
	Name           string    `json:"name"`
	Brand          string    `json:"brand"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductMini datos mínimos del producto anidados en un lote.
type ProductMini struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

// ProductBatchMini lote resumido dentro del detalle de un producto.
type ProductBatchMini struct {
	ID               string    `json:"id"`
	BatchCode        string    `json:"batch_code"`
	ValidationStatus string    `json:"validation_status"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProductWithBatchesResponse producto con sus lotes, más recientes primero.
type ProductWithBatchesResponse struct {
	ProductResponse
	Batches []ProductBatchMini `json:"batches"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Total int               `json:"total"`
	Items []ProductResponse `json:"items"`
}
