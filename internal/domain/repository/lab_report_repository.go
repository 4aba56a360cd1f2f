package repository

import (
	"context"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// LabReportFilter filtros del listado de informes de un laboratorio.
type LabReportFilter struct {
	LabID    string
	Search   string
	Verified *bool
	Limit    int
	Offset   int
}

// LabReportRepository define el puerto de persistencia para informes de laboratorio.
type LabReportRepository interface {
	Create(ctx context.Context, report *entity.LabReport) error
	GetByID(ctx context.Context, id string) (*entity.LabReport, error)
	GetByBatchAndLab(ctx context.Context, batchID, labID string) (*entity.LabReport, error)
	ListByLab(ctx context.Context, filter LabReportFilter) ([]*entity.LabReport, int, error)
	ListByBatch(ctx context.Context, batchID string) ([]*entity.LabReport, error)
	StatsByLab(ctx context.Context, labID string) (*entity.LabReportStats, error)
	Update(ctx context.Context, report *entity.LabReport) error
	Delete(ctx context.Context, id string) error
}
