package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// TransportStatsUseCase agrega los tramos de un transportador.
type TransportStatsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewTransportStatsUseCase construye el caso de uso.
func NewTransportStatsUseCase(analyticsRepo repository.AnalyticsRepository) *TransportStatsUseCase {
	return &TransportStatsUseCase{analyticsRepo: analyticsRepo}
}

// GetStats totales redondeados a 2 decimales y emisión promedio por km a 4.
// Con distancia total cero el promedio es 0.
func (uc *TransportStatsUseCase) GetStats(ctx context.Context, transporterID string) (*dto.TransportStatsResponse, error) {
	totals, err := uc.analyticsRepo.GetTransporterTotals(ctx, transporterID)
	if err != nil {
		return nil, err
	}

	distance := totals.TotalDistance.Round(2)
	emission := totals.TotalEmission.Round(2)

	avg := decimal.Zero
	if totals.TotalDistance.IsPositive() {
		avg = totals.TotalEmission.DivRound(totals.TotalDistance, 4)
	}

	return &dto.TransportStatsResponse{
		TotalTransports:  totals.TransportCount,
		TotalDistance:    distance,
		TotalEmission:    emission,
		AvgEmissionPerKm: avg,
	}, nil
}
