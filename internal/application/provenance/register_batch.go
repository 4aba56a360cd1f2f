// Package provenance contiene los casos de uso de registro y revisión de lotes.
package provenance

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecotrace-api/internal/application/ports"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	domprov "github.com/jhoicas/ecotrace-api/internal/domain/provenance"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// Límites de los campos de un lote.
const (
	batchCodeMinLen   = 3
	batchCodeMaxLen   = 50
	materialInfoMax   = 500
	locationMaxLength = 100
)

// RegisterBatchUseCase registra lotes nuevos y re-puntúa lotes existentes.
// Bloquea la fila del producto (SELECT FOR UPDATE) durante toda la decisión.
type RegisterBatchUseCase struct {
	txRunner TxRunner
	scorer   ports.ScoreProvider
	metrics  ports.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// NewRegisterBatchUseCase construye el caso de uso. metrics puede ser nil.
func NewRegisterBatchUseCase(
	txRunner TxRunner,
	scorer ports.ScoreProvider,
	metrics ports.Metrics,
	log zerolog.Logger,
) *RegisterBatchUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &RegisterBatchUseCase{
		txRunner: txRunner,
		scorer:   scorer,
		metrics:  metrics,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BatchInputDTO entrada para registrar un lote.
type BatchInputDTO struct {
	ManufacturerID        string
	ProductID             string
	BatchCode             string
	ManufactureDate       *time.Time
	ExpiryDate            *time.Time
	MaterialInfo          string
	MaterialSource        string
	ManufacturingLocation string
	BaseCarbonFootprint   *decimal.Decimal
}

// BatchResult lote persistido junto con la decisión que lo clasificó.
type BatchResult struct {
	Batch        *entity.Batch
	Product      *entity.Product
	Score        *entity.Score // nil si el lote anterior no tenía puntaje
	Decision     domprov.Decision
	Analysis     *domprov.ChangeAnalysis // nil si no hay lote anterior
	PriorBatchID string
}

// CreateBatch registra un lote: bloquea el producto, verifica propiedad y unicidad del código,
// clasifica contra el lote más reciente del producto y escribe lote, puntaje y bitácora
// en una sola transacción.
func (uc *RegisterBatchUseCase) CreateBatch(ctx context.Context, in BatchInputDTO) (*BatchResult, error) {
	in.BatchCode = strings.TrimSpace(in.BatchCode)
	if err := validateBatchInput(in); err != nil {
		return nil, err
	}

	var result *BatchResult

	err := uc.txRunner.RunBatch(ctx, func(
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		scoreRepo repository.ScoreRepository,
		auditRepo repository.AuditRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if product.ManufacturerID != in.ManufacturerID {
			return domain.ErrNotOwned
		}

		existing, err := batchRepo.GetByProductAndCode(ctx, in.ProductID, in.BatchCode)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrConflict
		}

		prior, err := batchRepo.LatestForProduct(ctx, in.ProductID, nil, "")
		if err != nil {
			return err
		}
		decision := domprov.Decide(prior, in.MaterialInfo)
		now := uc.createdAfter(prior)

		batch := &entity.Batch{
			ID:                    uuid.New().String(),
			ProductID:             in.ProductID,
			BatchCode:             in.BatchCode,
			ManufactureDate:       in.ManufactureDate,
			ExpiryDate:            in.ExpiryDate,
			MaterialInfo:          in.MaterialInfo,
			MaterialSource:        in.MaterialSource,
			ManufacturingLocation: in.ManufacturingLocation,
			BaseCarbonFootprint:   in.BaseCarbonFootprint,
			ValidationStatus:      decision.Status,
			CreatedAt:             now,
			UpdatedAt:             now,
		}

		score, err := uc.resolveScore(ctx, scoreRepo, decision, prior, batch, product, now)
		if err != nil {
			return err
		}

		if err := batchRepo.Create(ctx, batch); err != nil {
			return err
		}
		if score != nil {
			if err := scoreRepo.Create(ctx, score); err != nil {
				return err
			}
		}
		if err := auditRepo.Record(ctx, newAudit(batch.ID, entity.AuditActionCreate, in.ManufacturerID, now)); err != nil {
			return err
		}

		result = buildResult(batch, product, score, decision, prior)
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).
			Str("product_id", in.ProductID).
			Str("batch_code", in.BatchCode).
			Msg("registro de lote rechazado")
		return nil, err
	}

	uc.metrics.BatchClassified(string(result.Decision.Status), string(result.Decision.Change))
	uc.log.Info().
		Str("batch_id", result.Batch.ID).
		Str("product_id", in.ProductID).
		Str("validation_status", string(result.Decision.Status)).
		Str("change_type", string(result.Decision.Change)).
		Str("score_action", string(result.Decision.ScoreAction)).
		Msg("lote registrado")
	return result, nil
}

// RescoreBatch vuelve a clasificar un lote contra el lote creado inmediatamente antes
// (mismo producto), sobrescribe su validation_status y reemplaza su puntaje.
func (uc *RegisterBatchUseCase) RescoreBatch(ctx context.Context, manufacturerID, batchID string) (*BatchResult, error) {
	now := uc.now()
	var result *BatchResult

	err := uc.txRunner.RunBatch(ctx, func(
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		scoreRepo repository.ScoreRepository,
		auditRepo repository.AuditRepository,
	) error {
		batch, product, err := lockOwnedBatch(ctx, productRepo, batchRepo, manufacturerID, batchID)
		if err != nil {
			return err
		}

		prior, err := batchRepo.LatestForProduct(ctx, batch.ProductID, &batch.CreatedAt, batch.ID)
		if err != nil {
			return err
		}
		decision := domprov.Decide(prior, batch.MaterialInfo)

		score, err := uc.resolveScore(ctx, scoreRepo, decision, prior, batch, product, now)
		if err != nil {
			return err
		}

		if err := scoreRepo.DeleteByBatchID(ctx, batch.ID); err != nil {
			return err
		}
		if score != nil {
			if err := scoreRepo.Create(ctx, score); err != nil {
				return err
			}
		}
		if err := batchRepo.UpdateValidationStatus(ctx, batch.ID, decision.Status); err != nil {
			return err
		}
		batch.ValidationStatus = decision.Status
		batch.UpdatedAt = now

		if err := auditRepo.Record(ctx, newAudit(batch.ID, entity.AuditActionRescore, manufacturerID, now)); err != nil {
			return err
		}

		result = buildResult(batch, product, score, decision, prior)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.BatchClassified(string(result.Decision.Status), string(result.Decision.Change))
	uc.log.Info().
		Str("batch_id", batchID).
		Str("validation_status", string(result.Decision.Status)).
		Str("change_type", string(result.Decision.Change)).
		Msg("lote re-puntuado")
	return result, nil
}

// createdAfter toma la hora con el producto ya bloqueado. El historial del producto queda
// en el mismo orden en que se confirmaron los lotes, aunque el reloj retroceda.
func (uc *RegisterBatchUseCase) createdAfter(prior *entity.Batch) time.Time {
	now := uc.now()
	if prior != nil && !now.After(prior.CreatedAt) {
		// Resolución de TIMESTAMPTZ.
		now = prior.CreatedAt.Add(time.Microsecond)
	}
	return now
}

// resolveScore copia el puntaje final del lote anterior o pide uno nuevo al proveedor.
// Un lote anterior sin puntaje no es error: el lote nuevo queda sin puntaje.
func (uc *RegisterBatchUseCase) resolveScore(
	ctx context.Context,
	scoreRepo repository.ScoreRepository,
	decision domprov.Decision,
	prior *entity.Batch,
	batch *entity.Batch,
	product *entity.Product,
	now time.Time,
) (*entity.Score, error) {
	if decision.ScoreAction == domprov.ScoreReusePrior {
		priorScore, err := scoreRepo.GetByBatchID(ctx, prior.ID)
		if err != nil {
			return nil, err
		}
		if priorScore == nil {
			return nil, nil
		}
		priorID := prior.ID
		return &entity.Score{
			ID:                uuid.New().String(),
			BatchID:           batch.ID,
			FinalScore:        priorScore.FinalScore,
			CopiedFromBatchID: &priorID,
			GeneratedAt:       now,
		}, nil
	}

	start := time.Now()
	res, err := uc.scorer.GenerateScore(ctx, ports.ScoreRequest{
		BatchCode:    batch.BatchCode,
		ProductName:  product.Name,
		MaterialInfo: batch.MaterialInfo,
	})
	if err != nil {
		uc.metrics.ObserveScoreProvider("error", time.Since(start))
		return nil, fmt.Errorf("generate score: %w", err)
	}
	uc.metrics.ObserveScoreProvider("ok", time.Since(start))

	return &entity.Score{
		ID:               uuid.New().String(),
		BatchID:          batch.ID,
		EnvironmentScore: decimalPtr(res.EnvironmentScore),
		EthicsScore:      decimalPtr(res.EthicsScore),
		SafetyScore:      decimalPtr(res.SafetyScore),
		CostScore:        decimalPtr(res.CostScore),
		FinalScore:       res.FinalScore,
		Reasoning:        res.Reasoning,
		GeneratedAt:      now,
	}, nil
}

func validateBatchInput(in BatchInputDTO) error {
	if in.ManufacturerID == "" || in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if n := utf8.RuneCountInString(in.BatchCode); n < batchCodeMinLen || n > batchCodeMaxLen {
		return fmt.Errorf("%w: batch_code debe tener entre %d y %d caracteres", domain.ErrInvalidInput, batchCodeMinLen, batchCodeMaxLen)
	}
	if utf8.RuneCountInString(in.MaterialInfo) > materialInfoMax {
		return fmt.Errorf("%w: material_info admite hasta %d caracteres", domain.ErrInvalidInput, materialInfoMax)
	}
	if utf8.RuneCountInString(in.ManufacturingLocation) > locationMaxLength {
		return fmt.Errorf("%w: manufacturing_location admite hasta %d caracteres", domain.ErrInvalidInput, locationMaxLength)
	}
	if in.BaseCarbonFootprint != nil && in.BaseCarbonFootprint.IsNegative() {
		return fmt.Errorf("%w: base_carbon_footprint no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.ManufactureDate != nil && in.ExpiryDate != nil && in.ExpiryDate.Before(*in.ManufactureDate) {
		return fmt.Errorf("%w: expiry_date anterior a manufacture_date", domain.ErrInvalidInput)
	}
	return nil
}

func buildResult(
	batch *entity.Batch,
	product *entity.Product,
	score *entity.Score,
	decision domprov.Decision,
	prior *entity.Batch,
) *BatchResult {
	r := &BatchResult{Batch: batch, Product: product, Score: score, Decision: decision}
	if prior != nil {
		a := domprov.AnalyzeChange(prior.MaterialInfo, batch.MaterialInfo)
		r.Analysis = &a
		r.PriorBatchID = prior.ID
	}
	return r
}

func newAudit(batchID, action, performedBy string, now time.Time) *entity.AuditLog {
	return &entity.AuditLog{
		ID:          uuid.New().String(),
		EntityType:  entity.AuditEntityBatch,
		EntityID:    batchID,
		Action:      action,
		PerformedBy: performedBy,
		CreatedAt:   now,
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
