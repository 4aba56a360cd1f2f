package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLabReportRequest body para POST /api/lab-reports/batch/{batchId}.
type CreateLabReportRequest struct {
	TestSummary    string          `json:"test_summary"`
	Certifications string          `json:"certifications"`
	EcoRating      int             `json:"eco_rating" validate:"min=0"`
	LabScore       decimal.Decimal `json:"lab_score" validate:"min=0,max=100"`
}

// UpdateLabReportRequest campos editables de un informe.
type UpdateLabReportRequest struct {
	TestSummary    *string          `json:"test_summary"`
	Certifications *string          `json:"certifications"`
	EcoRating      *int             `json:"eco_rating"`
	LabScore       *decimal.Decimal `json:"lab_score"`
	Verified       *bool            `json:"verified"`
}

// LabReportResponse salida de un informe de laboratorio.
type LabReportResponse struct {
	ID             string          `json:"id"`
	BatchID        string          `json:"batch_id"`
	LabID          string          `json:"lab_id"`
	TestSummary    string          `json:"test_summary"`
	Certifications string          `json:"certifications"`
	EcoRating      int             `json:"eco_rating"`
	LabScore       decimal.Decimal `json:"lab_score"`
	Verified       bool            `json:"verified"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LabReportListResponse lista paginada de informes.
type LabReportListResponse struct {
	Total int                 `json:"total"`
	Items []LabReportResponse `json:"items"`
}

// LabStatsResponse dashboard del laboratorio.
type LabStatsResponse struct {
	TotalBatchesTested   int                 `json:"total_batches_tested"`
	UniqueProductsTested int                 `json:"unique_products_tested"`
	VerifiedReports      int                 `json:"verified_reports"`
	PendingReports       int                 `json:"pending_reports"`
	RecentReports        []LabReportResponse `json:"recent_reports"`
}
