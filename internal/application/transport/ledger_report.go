package transport

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/ledger"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// LocationBalance unidades netas del lote en una ubicación.
type LocationBalance struct {
	Location string
	Balance  int
}

// LedgerReport datos del informe de movimientos de un lote.
type LedgerReport struct {
	Batch       *entity.BatchWithProduct
	Movements   []*entity.Transport
	Balances    []LocationBalance // ordenados por ubicación
	Origins     entity.AvailableOrigins
	QRURL       string
	GeneratedAt time.Time
}

// LedgerPDFGenerator puerto de salida hacia el generador de PDF.
type LedgerPDFGenerator interface {
	GenerateLedgerPDF(ctx context.Context, report *LedgerReport) ([]byte, error)
}

// LedgerReportUseCase arma el informe de movimientos, balances y orígenes de un lote.
type LedgerReportUseCase struct {
	batchRepo     repository.BatchRepository
	transportRepo repository.TransportRepository
	generator     LedgerPDFGenerator
	baseURL       string
}

// NewLedgerReportUseCase construye el caso de uso.
func NewLedgerReportUseCase(
	batchRepo repository.BatchRepository,
	transportRepo repository.TransportRepository,
	generator LedgerPDFGenerator,
	baseURL string,
) *LedgerReportUseCase {
	return &LedgerReportUseCase{
		batchRepo:     batchRepo,
		transportRepo: transportRepo,
		generator:     generator,
		baseURL:       baseURL,
	}
}

// Build recopila el informe. El fabricante dueño del lote o un admin pueden pedirlo.
func (uc *LedgerReportUseCase) Build(ctx context.Context, actorID string, isAdmin bool, batchID string) (*LedgerReport, error) {
	batch, err := uc.batchRepo.GetWithProduct(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("ledger report: obtener lote: %w", err)
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	if !isAdmin && batch.ManufacturerID != actorID {
		return nil, domain.ErrNotOwned
	}

	movements, err := uc.transportRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("ledger report: obtener tramos: %w", err)
	}

	balances := make([]LocationBalance, 0)
	for loc, bal := range ledger.Balances(movements) {
		balances = append(balances, LocationBalance{Location: loc, Balance: bal})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Location < balances[j].Location })

	return &LedgerReport{
		Batch:       batch,
		Movements:   movements,
		Balances:    balances,
		Origins:     ledger.AvailableOrigins(batch.ManufacturingLocation, movements),
		QRURL:       uc.baseURL + "/public/batch/" + batch.ID,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// DownloadPDF genera el PDF del informe y devuelve bytes y nombre de archivo.
func (uc *LedgerReportUseCase) DownloadPDF(ctx context.Context, actorID string, isAdmin bool, batchID string) (pdfBytes []byte, filename string, err error) {
	report, err := uc.Build(ctx, actorID, isAdmin, batchID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateLedgerPDF(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("ledger report: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("ledger_%s.pdf", report.Batch.BatchCode), nil
}
