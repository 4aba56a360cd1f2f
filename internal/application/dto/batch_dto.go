package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest body para POST /api/batches/product/{productId}.
type CreateBatchRequest struct {
	BatchCode             string           `json:"batch_code" validate:"required,min=3,max=50"`
	ManufactureDate       *time.Time       `json:"manufacture_date"`
	ExpiryDate            *time.Time       `json:"expiry_date,omitempty"`
	MaterialInfo          string           `json:"material_info" validate:"max=500"`
	MaterialSource        string           `json:"material_source,omitempty"`
	ManufacturingLocation string           `json:"manufacturing_location" validate:"max=100"`
	BaseCarbonFootprint   *decimal.Decimal `json:"base_carbon_footprint,omitempty"`
}

// UpdateBatchRequest campos descriptivos editables de un lote. No re-clasifica el lote.
type UpdateBatchRequest struct {
	BatchCode             *string          `json:"batch_code" validate:"omitempty,min=3,max=50"`
	ManufactureDate       *time.Time       `json:"manufacture_date"`
	ExpiryDate            *time.Time       `json:"expiry_date"`
	MaterialInfo          *string          `json:"material_info" validate:"omitempty,max=500"`
	MaterialSource        *string          `json:"material_source"`
	ManufacturingLocation *string          `json:"manufacturing_location" validate:"omitempty,max=100"`
	BaseCarbonFootprint   *decimal.Decimal `json:"base_carbon_footprint"`
}

// ScoreResponse puntaje de sostenibilidad de un lote.
type ScoreResponse struct {
	FinalScore        decimal.Decimal  `json:"final_score"`
	EnvironmentScore  *decimal.Decimal `json:"environment_score,omitempty"`
	EthicsScore       *decimal.Decimal `json:"ethics_score,omitempty"`
	SafetyScore       *decimal.Decimal `json:"safety_score,omitempty"`
	CostScore         *decimal.Decimal `json:"cost_score,omitempty"`
	Reasoning         string           `json:"reasoning,omitempty"`
	CopiedFromBatchID *string          `json:"copied_from_batch_id,omitempty"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// ValidationDecisionDTO explica cómo se asignó el nivel de validación.
type ValidationDecisionDTO struct {
	ValidationStatus string `json:"validation_status"`
	ChangeType       string `json:"change_type,omitempty"` // vacío si es el primer lote del producto
	ScoreAction      string `json:"score_action"`
	ImpactLevel      string `json:"impact_level"`
	RequiresLabTest  bool   `json:"requires_lab_test"`
	PriorBatchID     string `json:"prior_batch_id,omitempty"`
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	ID                    string                 `json:"id"`
	ProductID             string                 `json:"product_id"`
	Product               *ProductMini           `json:"product,omitempty"`
	BatchCode             string                 `json:"batch_code"`
	ManufactureDate       *time.Time             `json:"manufacture_date,omitempty"`
	ExpiryDate            *time.Time             `json:"expiry_date,omitempty"`
	MaterialInfo          string                 `json:"material_info"`
	MaterialSource        string                 `json:"material_source,omitempty"`
	ManufacturingLocation string                 `json:"manufacturing_location"`
	BaseCarbonFootprint   *decimal.Decimal       `json:"base_carbon_footprint,omitempty"`
	ValidationStatus      string                 `json:"validation_status"`
	Score                 *ScoreResponse         `json:"score,omitempty"`
	Validation            *ValidationDecisionDTO `json:"validation,omitempty"` // solo al crear o re-puntuar
	QRURL                 string                 `json:"qr_url"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// BatchListResponse lista paginada de lotes.
type BatchListResponse struct {
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Items      []BatchResponse `json:"items"`
}
