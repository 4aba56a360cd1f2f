// Package analytics contiene las proyecciones de lectura: estadísticas del transportador
// y dashboard del fabricante.
package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen de productos y lotes del fabricante.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo}
}

// GetManufacturerDashboard construye el ManufacturerDashboardDTO del fabricante.
//
// Tres consultas en paralelo:
//  1. CountProducts          → TotalProducts
//  2. CountBatches           → TotalBatches
//  3. ProductBatchSummaries  → Products (incluye productos sin lotes)
func (uc *DashboardUseCase) GetManufacturerDashboard(ctx context.Context, manufacturerID string) (*dto.ManufacturerDashboardDTO, error) {
	var (
		totalProducts int
		totalBatches  int
		summaries     []repository.ProductBatchSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.analyticsRepo.CountProducts(gctx, manufacturerID)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		totalProducts = n
		return nil
	})
	g.Go(func() error {
		n, err := uc.analyticsRepo.CountBatches(gctx, manufacturerID)
		if err != nil {
			return fmt.Errorf("count batches: %w", err)
		}
		totalBatches = n
		return nil
	})
	g.Go(func() error {
		s, err := uc.analyticsRepo.ProductBatchSummaries(gctx, manufacturerID)
		if err != nil {
			return fmt.Errorf("product batch summaries: %w", err)
		}
		summaries = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := make([]dto.ProductBatchStatsDTO, 0, len(summaries))
	for _, s := range summaries {
		products = append(products, dto.ProductBatchStatsDTO{
			ID:                 s.ProductID,
			Name:               s.ProductName,
			BatchCount:         s.BatchCount,
			LastBatchID:        s.LastBatchID,
			LastBatchCode:      s.LastBatchCode,
			LastBatchCreatedAt: s.LastBatchCreatedAt,
		})
	}

	return &dto.ManufacturerDashboardDTO{
		TotalProducts: totalProducts,
		TotalBatches:  totalBatches,
		Products:      products,
	}, nil
}
