// Package transport contiene la admisión de tramos de transporte y las consultas del ledger.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/application/ports"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/emission"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/ledger"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

const (
	locationMinLen = 2
	locationMaxLen = 100
)

// RegisterTransportUseCase registra, corrige y elimina tramos bloqueando la fila del lote
// (SELECT FOR UPDATE), de modo que dos tramos concurrentes del mismo lote se serializan.
type RegisterTransportUseCase struct {
	txRunner      TxRunner
	batchRepo     repository.BatchRepository
	transportRepo repository.TransportRepository
	estimator     emission.Estimator
	cache         OriginsCache
	metrics       ports.Metrics
	log           zerolog.Logger
}

// NewRegisterTransportUseCase construye el caso de uso. cache y metrics pueden ser nil.
func NewRegisterTransportUseCase(
	txRunner TxRunner,
	batchRepo repository.BatchRepository,
	transportRepo repository.TransportRepository,
	estimator emission.Estimator,
	cache OriginsCache,
	metrics ports.Metrics,
	log zerolog.Logger,
) *RegisterTransportUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &RegisterTransportUseCase{
		txRunner:      txRunner,
		batchRepo:     batchRepo,
		transportRepo: transportRepo,
		estimator:     estimator,
		cache:         cache,
		metrics:       metrics,
		log:           log,
	}
}

// TransportInputDTO entrada para registrar un tramo.
type TransportInputDTO struct {
	TransporterID string
	BatchID       string
	Origin        string
	Destination   string
	DistanceKm    decimal.Decimal
	FuelType      string
	VehicleType   string
	Notes         string
}

// CreateTransport admite un tramo nuevo: el origen debe estar entre los orígenes disponibles
// del lote (sensible a mayúsculas) y el par origen/destino no puede repetirse (sin distinguir
// mayúsculas). La emisión se calcula siempre aquí.
func (uc *RegisterTransportUseCase) CreateTransport(ctx context.Context, in TransportInputDTO) (*dto.TransportResponse, error) {
	in.Origin = strings.TrimSpace(in.Origin)
	in.Destination = strings.TrimSpace(in.Destination)
	in.FuelType = strings.TrimSpace(in.FuelType)
	if in.TransporterID == "" || in.BatchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateRoute(in.Origin, in.Destination); err != nil {
		return nil, err
	}
	if !in.DistanceKm.IsPositive() {
		return nil, fmt.Errorf("%w: distance_km debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if in.FuelType == "" {
		return nil, fmt.Errorf("%w: fuel_type es obligatorio", domain.ErrInvalidInput)
	}

	var created *entity.Transport
	err := uc.txRunner.RunTransport(ctx, func(
		batchRepo repository.BatchRepository,
		transportRepo repository.TransportRepository,
		auditRepo repository.AuditRepository,
	) error {
		batch, err := batchRepo.GetForUpdate(ctx, in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}

		movements, err := transportRepo.ListByBatch(ctx, batch.ID)
		if err != nil {
			return err
		}
		origins := ledger.AvailableOrigins(batch.ManufacturingLocation, movements)
		if !ledger.IsAvailable(origins, in.Origin) {
			return domain.ErrInvalidOrigin
		}
		if ledger.RouteExists(movements, in.Origin, in.Destination, "") {
			return domain.ErrDuplicateRoute
		}

		now := time.Now().UTC()
		t := &entity.Transport{
			ID:                uuid.New().String(),
			BatchID:           batch.ID,
			TransporterID:     in.TransporterID,
			Origin:            in.Origin,
			Destination:       in.Destination,
			DistanceKm:        in.DistanceKm,
			FuelType:          in.FuelType,
			VehicleType:       in.VehicleType,
			TransportEmission: uc.estimator.Estimate(in.DistanceKm, in.FuelType),
			Notes:             in.Notes,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := transportRepo.Create(ctx, t); err != nil {
			return err
		}
		if err := batchRepo.BumpLedgerVersion(ctx, batch.ID); err != nil {
			return err
		}
		if err := auditRepo.Record(ctx, newAudit(t.ID, entity.AuditActionCreate, in.TransporterID, now)); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		uc.reject(err, in.BatchID, in.Origin, in.Destination)
		return nil, err
	}

	uc.invalidate(ctx, created.BatchID)
	uc.metrics.TransportRecorded(strings.ToLower(created.FuelType))
	uc.log.Info().
		Str("transport_id", created.ID).
		Str("batch_id", created.BatchID).
		Str("origin", created.Origin).
		Str("destination", created.Destination).
		Str("emission", created.TransportEmission.String()).
		Msg("tramo registrado")
	return toTransportResponse(created, ""), nil
}

// UpdateTransport corrige un tramo aceptado. Solo vuelve a verificar la ruta duplicada
// (excluyendo el propio tramo); la disponibilidad del origen NO se revalida.
// La emisión se recalcula si llega distance_km o fuel_type.
func (uc *RegisterTransportUseCase) UpdateTransport(
	ctx context.Context,
	actorID string,
	isAdmin bool,
	id string,
	in dto.UpdateTransportRequest,
) (*dto.TransportResponse, error) {
	var updated *entity.Transport
	err := uc.txRunner.RunTransport(ctx, func(
		batchRepo repository.BatchRepository,
		transportRepo repository.TransportRepository,
		auditRepo repository.AuditRepository,
	) error {
		t, err := lockOwnedTransport(ctx, batchRepo, transportRepo, actorID, isAdmin, id)
		if err != nil {
			return err
		}

		origin, destination := t.Origin, t.Destination
		if in.Origin != nil {
			origin = strings.TrimSpace(*in.Origin)
		}
		if in.Destination != nil {
			destination = strings.TrimSpace(*in.Destination)
		}
		if err := validateRoute(origin, destination); err != nil {
			return err
		}

		movements, err := transportRepo.ListByBatch(ctx, t.BatchID)
		if err != nil {
			return err
		}
		if ledger.RouteExists(movements, origin, destination, t.ID) {
			return domain.ErrDuplicateRoute
		}
		t.Origin, t.Destination = origin, destination

		recompute := false
		if in.DistanceKm != nil {
			if !in.DistanceKm.IsPositive() {
				return fmt.Errorf("%w: distance_km debe ser mayor que 0", domain.ErrInvalidInput)
			}
			t.DistanceKm = *in.DistanceKm
			recompute = true
		}
		if in.FuelType != nil {
			fuel := strings.TrimSpace(*in.FuelType)
			if fuel == "" {
				return fmt.Errorf("%w: fuel_type es obligatorio", domain.ErrInvalidInput)
			}
			t.FuelType = fuel
			recompute = true
		}
		if recompute {
			t.TransportEmission = uc.estimator.Estimate(t.DistanceKm, t.FuelType)
		}
		if in.VehicleType != nil {
			t.VehicleType = *in.VehicleType
		}
		if in.Notes != nil {
			t.Notes = *in.Notes
		}

		now := time.Now().UTC()
		t.UpdatedAt = now
		if err := transportRepo.Update(ctx, t); err != nil {
			return err
		}
		if err := batchRepo.BumpLedgerVersion(ctx, t.BatchID); err != nil {
			return err
		}
		if err := auditRepo.Record(ctx, newAudit(t.ID, entity.AuditActionUpdate, actorID, now)); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateRoute) {
			uc.metrics.TransportRejected("duplicate_route")
		}
		return nil, err
	}

	uc.invalidate(ctx, updated.BatchID)
	return toTransportResponse(updated, ""), nil
}

// DeleteTransport elimina un tramo. Solo el transportador que lo registró o un admin.
func (uc *RegisterTransportUseCase) DeleteTransport(ctx context.Context, actorID string, isAdmin bool, id string) error {
	var batchID string
	err := uc.txRunner.RunTransport(ctx, func(
		batchRepo repository.BatchRepository,
		transportRepo repository.TransportRepository,
		auditRepo repository.AuditRepository,
	) error {
		t, err := lockOwnedTransport(ctx, batchRepo, transportRepo, actorID, isAdmin, id)
		if err != nil {
			return err
		}
		if err := transportRepo.Delete(ctx, t.ID); err != nil {
			return err
		}
		if err := batchRepo.BumpLedgerVersion(ctx, t.BatchID); err != nil {
			return err
		}
		batchID = t.BatchID
		return auditRepo.Record(ctx, newAudit(t.ID, entity.AuditActionDelete, actorID, time.Now().UTC()))
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, batchID)
	return nil
}

// AvailableOrigins devuelve los orígenes válidos para el próximo tramo del lote.
// Puede servirse desde la caché; la admisión de tramos siempre recalcula dentro de la tx.
//
// Solo vale una entrada calculada con el LedgerVersion actual del lote. La versión se lee
// antes que los tramos: si otra tx escribe en medio, la entrada guardada queda con una
// versión vieja y la siguiente lectura la descarta, aunque falle la invalidación.
func (uc *RegisterTransportUseCase) AvailableOrigins(ctx context.Context, batchID string) (*entity.AvailableOrigins, error) {
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}

	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, batchID); ok && fresh(cached, batch) {
			uc.metrics.OriginsCacheLookup(true)
			return cached, nil
		}
		uc.metrics.OriginsCacheLookup(false)
	}

	movements, err := uc.transportRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	origins := ledger.AvailableOrigins(batch.ManufacturingLocation, movements)
	origins.Version = batch.LedgerVersion
	if uc.cache != nil {
		uc.cache.Set(ctx, batchID, origins)
	}
	return &origins, nil
}

// fresh descarta entradas de otra versión del historial o de otra ubicación de fabricación.
func fresh(cached *entity.AvailableOrigins, batch *entity.Batch) bool {
	return cached.Version == batch.LedgerVersion && cached.ManufacturedAt == batch.ManufacturingLocation
}

func (uc *RegisterTransportUseCase) reject(err error, batchID, origin, destination string) {
	var reason string
	switch {
	case errors.Is(err, domain.ErrInvalidOrigin):
		reason = "invalid_origin"
	case errors.Is(err, domain.ErrDuplicateRoute):
		reason = "duplicate_route"
	case errors.Is(err, domain.ErrNotFound):
		reason = "batch_not_found"
	default:
		uc.log.Error().Err(err).Str("batch_id", batchID).Msg("error registrando tramo")
		return
	}
	uc.metrics.TransportRejected(reason)
	uc.log.Debug().
		Str("batch_id", batchID).
		Str("origin", origin).
		Str("destination", destination).
		Str("reason", reason).
		Msg("tramo rechazado")
}

func (uc *RegisterTransportUseCase) invalidate(ctx context.Context, batchID string) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, batchID)
	}
}

// lockOwnedTransport bloquea el lote del tramo y verifica que el actor pueda modificarlo.
func lockOwnedTransport(
	ctx context.Context,
	batchRepo repository.BatchRepository,
	transportRepo repository.TransportRepository,
	actorID string,
	isAdmin bool,
	id string,
) (*entity.Transport, error) {
	t, err := transportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !isAdmin && t.TransporterID != actorID {
		return nil, domain.ErrNotOwned
	}
	batch, err := batchRepo.GetForUpdate(ctx, t.BatchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	// Releer con el lote bloqueado.
	t, err = transportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func validateRoute(origin, destination string) error {
	for _, loc := range []string{origin, destination} {
		if n := utf8.RuneCountInString(loc); n < locationMinLen || n > locationMaxLen {
			return fmt.Errorf("%w: origin y destination deben tener entre %d y %d caracteres", domain.ErrInvalidInput, locationMinLen, locationMaxLen)
		}
	}
	if strings.EqualFold(origin, destination) {
		return fmt.Errorf("%w: origin y destination no pueden ser iguales", domain.ErrInvalidInput)
	}
	return nil
}

func newAudit(transportID, action, performedBy string, now time.Time) *entity.AuditLog {
	return &entity.AuditLog{
		ID:          uuid.New().String(),
		EntityType:  entity.AuditEntityTransport,
		EntityID:    transportID,
		Action:      action,
		PerformedBy: performedBy,
		CreatedAt:   now,
	}
}

func toTransportResponse(t *entity.Transport, batchCode string) *dto.TransportResponse {
	resp := &dto.TransportResponse{
		ID:                t.ID,
		BatchID:           t.BatchID,
		TransporterID:     t.TransporterID,
		Origin:            t.Origin,
		Destination:       t.Destination,
		DistanceKm:        t.DistanceKm,
		FuelType:          t.FuelType,
		VehicleType:       t.VehicleType,
		TransportEmission: t.TransportEmission,
		Notes:             t.Notes,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if batchCode != "" {
		resp.Batch = &dto.BatchMini{ID: t.BatchID, BatchCode: batchCode}
	}
	return resp
}
