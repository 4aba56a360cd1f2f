package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

var maxLabScore = decimal.NewFromInt(100)

const recentLabReports = 5

// LabReportUseCase informes de laboratorio sobre lotes. Registrar o verificar un informe
// no modifica el validation_status del lote.
type LabReportUseCase struct {
	batchRepo repository.BatchRepository
	repo      repository.LabReportRepository
}

// NewLabReportUseCase construye el caso de uso.
func NewLabReportUseCase(batchRepo repository.BatchRepository, repo repository.LabReportRepository) *LabReportUseCase {
	return &LabReportUseCase{batchRepo: batchRepo, repo: repo}
}

// Create registra el informe del laboratorio para el lote. Un laboratorio emite como máximo
// un informe por lote. Verified inicia en false.
func (uc *LabReportUseCase) Create(ctx context.Context, labID, batchID string, in dto.CreateLabReportRequest) (*dto.LabReportResponse, error) {
	if err := validateLabValues(in.EcoRating, in.LabScore); err != nil {
		return nil, err
	}
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	existing, err := uc.repo.GetByBatchAndLab(ctx, batchID, labID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	now := time.Now().UTC()
	report := &entity.LabReport{
		ID:             uuid.New().String(),
		BatchID:        batchID,
		LabID:          labID,
		TestSummary:    in.TestSummary,
		Certifications: in.Certifications,
		EcoRating:      in.EcoRating,
		LabScore:       in.LabScore,
		Verified:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	return toLabReportResponse(report), nil
}

// Get obtiene un informe. Un laboratorio solo ve los suyos; un admin ve todos.
func (uc *LabReportUseCase) Get(ctx context.Context, actorID string, isAdmin bool, id string) (*dto.LabReportResponse, error) {
	report, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}
	if !isAdmin && report.LabID != actorID {
		return nil, domain.ErrNotOwned
	}
	return toLabReportResponse(report), nil
}

// ListMy lista los informes del laboratorio, más recientes primero.
func (uc *LabReportUseCase) ListMy(ctx context.Context, labID string, skip, limit int, search string, verified *bool) (*dto.LabReportListResponse, error) {
	pr := dto.PageRequest{Limit: limit, Offset: skip}
	pr.DefaultPage()

	list, total, err := uc.repo.ListByLab(ctx, repository.LabReportFilter{
		LabID:    labID,
		Search:   strings.TrimSpace(search),
		Verified: verified,
		Limit:    pr.Limit,
		Offset:   pr.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LabReportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toLabReportResponse(r))
	}
	return &dto.LabReportListResponse{Total: total, Items: items}, nil
}

// Stats dashboard del laboratorio: totales, productos distintos y los últimos informes.
// Totales e informes recientes se consultan en paralelo.
func (uc *LabReportUseCase) Stats(ctx context.Context, labID string) (*dto.LabStatsResponse, error) {
	var (
		stats  *entity.LabReportStats
		recent []*entity.LabReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := uc.repo.StatsByLab(gctx, labID)
		if err != nil {
			return fmt.Errorf("lab stats: %w", err)
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		list, _, err := uc.repo.ListByLab(gctx, repository.LabReportFilter{LabID: labID, Limit: recentLabReports})
		if err != nil {
			return fmt.Errorf("recent lab reports: %w", err)
		}
		recent = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.LabStatsResponse{
		TotalBatchesTested:   stats.Total,
		UniqueProductsTested: stats.UniqueProducts,
		VerifiedReports:      stats.Verified,
		PendingReports:       stats.Pending,
		RecentReports:        make([]dto.LabReportResponse, 0, len(recent)),
	}
	for _, r := range recent {
		out.RecentReports = append(out.RecentReports, *toLabReportResponse(r))
	}
	return out, nil
}

// ListByBatch lista los informes de un lote.
func (uc *LabReportUseCase) ListByBatch(ctx context.Context, batchID string) ([]dto.LabReportResponse, error) {
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LabReportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toLabReportResponse(r))
	}
	return items, nil
}

// Update modifica un informe. El laboratorio dueño edita el contenido; solo un admin
// puede marcarlo como verificado.
func (uc *LabReportUseCase) Update(ctx context.Context, actorID string, isAdmin bool, id string, in dto.UpdateLabReportRequest) (*dto.LabReportResponse, error) {
	report, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}
	if !isAdmin && report.LabID != actorID {
		return nil, domain.ErrNotOwned
	}
	if in.Verified != nil && !isAdmin {
		return nil, domain.ErrForbidden
	}

	if in.TestSummary != nil {
		report.TestSummary = *in.TestSummary
	}
	if in.Certifications != nil {
		report.Certifications = *in.Certifications
	}
	if in.EcoRating != nil {
		report.EcoRating = *in.EcoRating
	}
	if in.LabScore != nil {
		report.LabScore = *in.LabScore
	}
	if in.Verified != nil {
		report.Verified = *in.Verified
	}
	if err := validateLabValues(report.EcoRating, report.LabScore); err != nil {
		return nil, err
	}

	report.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, report); err != nil {
		return nil, err
	}
	return toLabReportResponse(report), nil
}

// Delete elimina un informe (laboratorio dueño o admin).
func (uc *LabReportUseCase) Delete(ctx context.Context, actorID string, isAdmin bool, id string) error {
	report, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if report == nil {
		return domain.ErrNotFound
	}
	if !isAdmin && report.LabID != actorID {
		return domain.ErrNotOwned
	}
	return uc.repo.Delete(ctx, id)
}

func validateLabValues(ecoRating int, labScore decimal.Decimal) error {
	if ecoRating < 0 {
		return fmt.Errorf("%w: eco_rating no puede ser negativo", domain.ErrInvalidInput)
	}
	if labScore.IsNegative() || labScore.GreaterThan(maxLabScore) {
		return fmt.Errorf("%w: lab_score debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	return nil
}

func toLabReportResponse(r *entity.LabReport) *dto.LabReportResponse {
	return &dto.LabReportResponse{
		ID:             r.ID,
		BatchID:        r.BatchID,
		LabID:          r.LabID,
		TestSummary:    r.TestSummary,
		Certifications: r.Certifications,
		EcoRating:      r.EcoRating,
		LabScore:       r.LabScore,
		Verified:       r.Verified,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
