package provenance

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// BatchUseCase consultas y mantenimiento de lotes del fabricante.
// Editar un lote nunca lo re-clasifica; para eso está RescoreBatch.
type BatchUseCase struct {
	txRunner  TxRunner
	batchRepo repository.BatchRepository
	scoreRepo repository.ScoreRepository
	baseURL   string
}

// NewBatchUseCase construye el caso de uso. baseURL se usa para la URL pública de trazabilidad.
func NewBatchUseCase(
	txRunner TxRunner,
	batchRepo repository.BatchRepository,
	scoreRepo repository.ScoreRepository,
	baseURL string,
) *BatchUseCase {
	return &BatchUseCase{
		txRunner:  txRunner,
		batchRepo: batchRepo,
		scoreRepo: scoreRepo,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Get obtiene un lote del fabricante con su puntaje vigente.
func (uc *BatchUseCase) Get(ctx context.Context, manufacturerID, id string) (*dto.BatchResponse, error) {
	bw, err := uc.batchRepo.GetWithProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if bw == nil {
		return nil, domain.ErrNotFound
	}
	if bw.ManufacturerID != manufacturerID {
		return nil, domain.ErrNotOwned
	}
	score, err := uc.scoreRepo.GetByBatchID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := uc.toBatchResponse(&bw.Batch, score)
	resp.Product = &dto.ProductMini{ID: bw.ProductID, Name: bw.ProductName, Brand: bw.ProductBrand}
	return resp, nil
}

// List lista los lotes del fabricante, más recientes primero. page empieza en 1.
func (uc *BatchUseCase) List(ctx context.Context, manufacturerID string, page, limit int, search string) (*dto.BatchListResponse, error) {
	if page < 1 {
		page = 1
	}
	pr := dto.PageRequest{Limit: limit}
	pr.DefaultPage()

	list, total, err := uc.batchRepo.List(ctx, repository.BatchFilter{
		ManufacturerID: manufacturerID,
		Search:         strings.TrimSpace(search),
		Limit:          pr.Limit,
		Offset:         (page - 1) * pr.Limit,
	})
	if err != nil {
		return nil, err
	}

	return uc.toListResponse(list, total, page, pr.Limit), nil
}

// PendingLabTests cola del laboratorio: lotes lab_required que ningún laboratorio ha
// informado todavía, más recientes primero. page empieza en 1.
func (uc *BatchUseCase) PendingLabTests(ctx context.Context, page, limit int, search string) (*dto.BatchListResponse, error) {
	if page < 1 {
		page = 1
	}
	pr := dto.PageRequest{Limit: limit}
	pr.DefaultPage()

	list, total, err := uc.batchRepo.ListPendingLab(ctx, repository.PendingLabFilter{
		Search: strings.TrimSpace(search),
		Limit:  pr.Limit,
		Offset: (page - 1) * pr.Limit,
	})
	if err != nil {
		return nil, err
	}
	return uc.toListResponse(list, total, page, pr.Limit), nil
}

// Update modifica los campos descriptivos de un lote. Un cambio de código vuelve a
// verificar la unicidad dentro del producto.
func (uc *BatchUseCase) Update(ctx context.Context, manufacturerID, id string, in dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	var resp *dto.BatchResponse

	err := uc.txRunner.RunBatch(ctx, func(
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		scoreRepo repository.ScoreRepository,
		auditRepo repository.AuditRepository,
	) error {
		batch, product, err := lockOwnedBatch(ctx, productRepo, batchRepo, manufacturerID, id)
		if err != nil {
			return err
		}

		if in.BatchCode != nil {
			code := strings.TrimSpace(*in.BatchCode)
			if code != batch.BatchCode {
				existing, err := batchRepo.GetByProductAndCode(ctx, batch.ProductID, code)
				if err != nil {
					return err
				}
				if existing != nil {
					return domain.ErrConflict
				}
			}
			batch.BatchCode = code
		}
		if in.ManufactureDate != nil {
			batch.ManufactureDate = in.ManufactureDate
		}
		if in.ExpiryDate != nil {
			batch.ExpiryDate = in.ExpiryDate
		}
		if in.MaterialInfo != nil {
			batch.MaterialInfo = *in.MaterialInfo
		}
		if in.MaterialSource != nil {
			batch.MaterialSource = *in.MaterialSource
		}
		if in.ManufacturingLocation != nil {
			batch.ManufacturingLocation = *in.ManufacturingLocation
		}
		if in.BaseCarbonFootprint != nil {
			batch.BaseCarbonFootprint = in.BaseCarbonFootprint
		}

		if err := validateBatchInput(BatchInputDTO{
			ManufacturerID:        manufacturerID,
			ProductID:             batch.ProductID,
			BatchCode:             batch.BatchCode,
			ManufactureDate:       batch.ManufactureDate,
			ExpiryDate:            batch.ExpiryDate,
			MaterialInfo:          batch.MaterialInfo,
			ManufacturingLocation: batch.ManufacturingLocation,
			BaseCarbonFootprint:   batch.BaseCarbonFootprint,
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		batch.UpdatedAt = now
		if err := batchRepo.Update(ctx, batch); err != nil {
			return err
		}
		if err := auditRepo.Record(ctx, newAudit(batch.ID, entity.AuditActionUpdate, manufacturerID, now)); err != nil {
			return err
		}

		score, err := scoreRepo.GetByBatchID(ctx, batch.ID)
		if err != nil {
			return err
		}
		resp = uc.toBatchResponse(batch, score)
		resp.Product = &dto.ProductMini{ID: product.ID, Name: product.Name, Brand: product.Brand}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete elimina el lote y en cascada sus tramos, puntajes e informes de laboratorio.
func (uc *BatchUseCase) Delete(ctx context.Context, manufacturerID, id string) error {
	return uc.txRunner.RunBatch(ctx, func(
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		_ repository.ScoreRepository,
		auditRepo repository.AuditRepository,
	) error {
		batch, _, err := lockOwnedBatch(ctx, productRepo, batchRepo, manufacturerID, id)
		if err != nil {
			return err
		}
		if err := batchRepo.Delete(ctx, batch.ID); err != nil {
			return err
		}
		return auditRepo.Record(ctx, newAudit(batch.ID, entity.AuditActionDelete, manufacturerID, time.Now().UTC()))
	})
}

// Present convierte el resultado de CreateBatch/RescoreBatch en la respuesta HTTP.
func (uc *BatchUseCase) Present(r *BatchResult) *dto.BatchResponse {
	resp := uc.toBatchResponse(r.Batch, r.Score)
	if r.Product != nil {
		resp.Product = &dto.ProductMini{ID: r.Product.ID, Name: r.Product.Name, Brand: r.Product.Brand}
	}

	v := &dto.ValidationDecisionDTO{
		ValidationStatus: string(r.Decision.Status),
		ChangeType:       string(r.Decision.Change),
		ScoreAction:      string(r.Decision.ScoreAction),
		ImpactLevel:      "high",
		RequiresLabTest:  r.Decision.Status == entity.ValidationLabRequired,
		PriorBatchID:     r.PriorBatchID,
	}
	if r.Analysis != nil {
		v.ImpactLevel = r.Analysis.ImpactLevel
		v.RequiresLabTest = r.Analysis.RequiresLabTest
	}
	resp.Validation = v
	return resp
}

// QRURL URL pública de trazabilidad del lote.
func (uc *BatchUseCase) QRURL(batchID string) string {
	return uc.baseURL + "/public/batch/" + batchID
}

// lockOwnedBatch bloquea producto y lote, en ese orden, y verifica la propiedad.
func lockOwnedBatch(
	ctx context.Context,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	manufacturerID, id string,
) (*entity.Batch, *entity.Product, error) {
	current, err := batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if current == nil {
		return nil, nil, domain.ErrNotFound
	}
	product, err := productRepo.GetForUpdate(ctx, current.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	if product.ManufacturerID != manufacturerID {
		return nil, nil, domain.ErrNotOwned
	}
	batch, err := batchRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}
	return batch, product, nil
}

func (uc *BatchUseCase) toListResponse(list []*entity.BatchWithProduct, total, page, limit int) *dto.BatchListResponse {
	items := make([]dto.BatchResponse, 0, len(list))
	for _, bw := range list {
		resp := uc.toBatchResponse(&bw.Batch, nil)
		resp.Product = &dto.ProductMini{ID: bw.ProductID, Name: bw.ProductName, Brand: bw.ProductBrand}
		items = append(items, *resp)
	}
	return &dto.BatchListResponse{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: dto.TotalPages(total, limit),
		Items:      items,
	}
}

func (uc *BatchUseCase) toBatchResponse(b *entity.Batch, score *entity.Score) *dto.BatchResponse {
	resp := &dto.BatchResponse{
		ID:                    b.ID,
		ProductID:             b.ProductID,
		BatchCode:             b.BatchCode,
		ManufactureDate:       b.ManufactureDate,
		ExpiryDate:            b.ExpiryDate,
		MaterialInfo:          b.MaterialInfo,
		MaterialSource:        b.MaterialSource,
		ManufacturingLocation: b.ManufacturingLocation,
		BaseCarbonFootprint:   b.BaseCarbonFootprint,
		ValidationStatus:      string(b.ValidationStatus),
		QRURL:                 uc.QRURL(b.ID),
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
	if score != nil {
		resp.Score = &dto.ScoreResponse{
			FinalScore:        score.FinalScore,
			EnvironmentScore:  score.EnvironmentScore,
			EthicsScore:       score.EthicsScore,
			SafetyScore:       score.SafetyScore,
			CostScore:         score.CostScore,
			Reasoning:         score.Reasoning,
			CopiedFromBatchID: score.CopiedFromBatchID,
			GeneratedAt:       score.GeneratedAt,
		}
	}
	return resp
}
