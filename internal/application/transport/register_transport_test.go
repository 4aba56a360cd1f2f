package transport_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ecotrace-api/internal/application/dto"
	"github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/emission"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/memory"
)

// ── Fixture ───────────────────────────────────────────────────────────────────

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]entity.AvailableOrigins
	invalidated []string
	failDel     bool // simula un DEL de Redis que no llega
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]entity.AvailableOrigins)}
}

func (c *fakeCache) Get(_ context.Context, batchID string) (*entity.AvailableOrigins, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.entries[batchID]
	if !ok {
		return nil, false
	}
	return &o, true
}

func (c *fakeCache) Set(_ context.Context, batchID string, origins entity.AvailableOrigins) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[batchID] = origins
}

func (c *fakeCache) Invalidate(_ context.Context, batchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, batchID)
	if !c.failDel {
		delete(c.entries, batchID)
	}
}

type fixture struct {
	store *memory.Store
	cache *fakeCache
	uc    *transport.RegisterTransportUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	cache := newFakeCache()
	uc := transport.NewRegisterTransportUseCase(
		store, store.Batches(), store.Transports(), emission.NewFactorTable(), cache, nil, zerolog.Nop(),
	)

	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", ManufacturerID: "m1", Name: "Camiseta"}))
	for _, id := range []string{"b1", "b2"} {
		require.NoError(t, store.Batches().Create(ctx, &entity.Batch{
			ID: id, ProductID: "p1", BatchCode: "LOTE-" + id, ManufacturingLocation: "Factory-A",
		}))
	}
	return &fixture{store: store, cache: cache, uc: uc}
}

func (f *fixture) leg(batchID, origin, destination string) transport.TransportInputDTO {
	return transport.TransportInputDTO{
		TransporterID: "tr1",
		BatchID:       batchID,
		Origin:        origin,
		Destination:   destination,
		DistanceKm:    decimal.RequireFromString("100"),
		FuelType:      "diesel",
	}
}

func (f *fixture) mustCreate(t *testing.T, batchID, origin, destination string) *dto.TransportResponse {
	t.Helper()
	resp, err := f.uc.CreateTransport(context.Background(), f.leg(batchID, origin, destination))
	require.NoError(t, err, "crear tramo %s→%s", origin, destination)
	return resp
}

// ── CreateTransport ───────────────────────────────────────────────────────────

func TestCreateTransport_CalculaEmision(t *testing.T) {
	f := newFixture(t)
	in := f.leg("b1", "Factory-A", "Hub")
	in.DistanceKm = decimal.RequireFromString("12.5")
	in.FuelType = "Petrol"

	resp, err := f.uc.CreateTransport(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "28.88", resp.TransportEmission.StringFixed(2))
	assert.Equal(t, "tr1", resp.TransporterID)

	audit := f.store.AuditEntries()
	require.Len(t, audit, 1)
	assert.Equal(t, entity.AuditEntityTransport, audit[0].EntityType)
	assert.Contains(t, f.cache.invalidated, "b1")
}

func TestCreateTransport_LedgerDeOrigenes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustCreate(t, "b1", "Factory-A", "B")
	f.mustCreate(t, "b1", "Factory-A", "C")
	origins, err := f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A", "B", "C"}, origins.Origins)

	f.mustCreate(t, "b1", "B", "D")
	origins, err = f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A", "C", "D"}, origins.Origins)

	// C ya se reenvió por completo: balance 0.
	f.mustCreate(t, "b1", "C", "E")
	_, err = f.uc.CreateTransport(ctx, f.leg("b1", "C", "A"))
	assert.ErrorIs(t, err, domain.ErrInvalidOrigin)
}

func TestCreateTransport_OrigenSensibleAMayusculas(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateTransport(context.Background(), f.leg("b1", "factory-a", "Hub"))
	assert.ErrorIs(t, err, domain.ErrInvalidOrigin)
}

func TestCreateTransport_RutaDuplicada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mustCreate(t, "b1", "Factory-A", "Hub")
	f.mustCreate(t, "b1", "Hub", "Store")

	// Store tiene balance 1 y puede volver a Hub, pero Factory-A→Hub ya existe.
	_, err := f.uc.CreateTransport(ctx, f.leg("b1", "Factory-A", "hub"))
	assert.ErrorIs(t, err, domain.ErrDuplicateRoute)

	// Mismo par en otro lote: permitido.
	f.mustCreate(t, "b2", "Factory-A", "Hub")
}

func TestCreateTransport_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	same := f.leg("b1", "Factory-A", "FACTORY-A")
	_, err := f.uc.CreateTransport(ctx, same)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	zero := f.leg("b1", "Factory-A", "Hub")
	zero.DistanceKm = decimal.Zero
	_, err = f.uc.CreateTransport(ctx, zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	short := f.leg("b1", "Factory-A", "H")
	_, err = f.uc.CreateTransport(ctx, short)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateTransport(ctx, f.leg("no-existe", "Factory-A", "Hub"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateTransport_Concurrente_MismaRuta(t *testing.T) {
	f := newFixture(t)

	const workers = 6
	var (
		wg         sync.WaitGroup
		successes  atomic.Int32
		duplicates atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.CreateTransport(context.Background(), f.leg("b1", "Factory-A", "Hub"))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrDuplicateRoute):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())
}

// ── UpdateTransport ───────────────────────────────────────────────────────────

func TestUpdateTransport_RecalculaEmisionSoloSiCambiaDistanciaOCombustible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.mustCreate(t, "b1", "Factory-A", "Hub")
	assert.Equal(t, "268.00", created.TransportEmission.StringFixed(2))

	notes := "entregado con retraso"
	got, err := f.uc.UpdateTransport(ctx, "tr1", false, created.ID, dto.UpdateTransportRequest{Notes: &notes})
	require.NoError(t, err)
	assert.True(t, got.TransportEmission.Equal(created.TransportEmission), "notes no cambia la emisión")

	distance := decimal.RequireFromString("50")
	got, err = f.uc.UpdateTransport(ctx, "tr1", false, created.ID, dto.UpdateTransportRequest{DistanceKm: &distance})
	require.NoError(t, err)
	assert.Equal(t, "134.00", got.TransportEmission.StringFixed(2))

	fuel := "electric"
	got, err = f.uc.UpdateTransport(ctx, "tr1", false, created.ID, dto.UpdateTransportRequest{FuelType: &fuel})
	require.NoError(t, err)
	assert.Equal(t, "25.00", got.TransportEmission.StringFixed(2))
}

func TestUpdateTransport_RutaDuplicadaExcluyeElPropioTramo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.mustCreate(t, "b1", "Factory-A", "Hub")
	second := f.mustCreate(t, "b1", "Factory-A", "Port")

	dest := "HUB"
	_, err := f.uc.UpdateTransport(ctx, "tr1", false, second.ID, dto.UpdateTransportRequest{Destination: &dest})
	assert.ErrorIs(t, err, domain.ErrDuplicateRoute)

	// Reescribir el mismo par sobre sí mismo no es duplicado.
	same := "Hub"
	_, err = f.uc.UpdateTransport(ctx, "tr1", false, first.ID, dto.UpdateTransportRequest{Destination: &same})
	assert.NoError(t, err)
}

// Comportamiento documentado: la actualización no revalida la disponibilidad del origen.
func TestUpdateTransport_NoRevalidaOrigen(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreate(t, "b1", "Factory-A", "Hub")

	origin := "Nowhere"
	got, err := f.uc.UpdateTransport(context.Background(), "tr1", false, created.ID, dto.UpdateTransportRequest{Origin: &origin})
	require.NoError(t, err)
	assert.Equal(t, "Nowhere", got.Origin)
}

func TestUpdateTransport_Propiedad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.mustCreate(t, "b1", "Factory-A", "Hub")
	notes := "x"

	_, err := f.uc.UpdateTransport(ctx, "tr2", false, created.ID, dto.UpdateTransportRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrNotOwned)

	_, err = f.uc.UpdateTransport(ctx, "admin1", true, created.ID, dto.UpdateTransportRequest{Notes: &notes})
	assert.NoError(t, err, "un admin puede corregir cualquier tramo")

	_, err = f.uc.UpdateTransport(ctx, "tr1", false, "no-existe", dto.UpdateTransportRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── DeleteTransport / AvailableOrigins ────────────────────────────────────────

func TestDeleteTransport_DevuelveBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.mustCreate(t, "b1", "Factory-A", "Hub")
	forward := f.mustCreate(t, "b1", "Hub", "Store")

	assert.ErrorIs(t, f.uc.DeleteTransport(ctx, "tr2", false, forward.ID), domain.ErrNotOwned)
	require.NoError(t, f.uc.DeleteTransport(ctx, "tr1", false, forward.ID))

	origins, err := f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A", "Hub"}, origins.Origins)

	require.NoError(t, f.uc.DeleteTransport(ctx, "admin1", true, first.ID))
	assert.ErrorIs(t, f.uc.DeleteTransport(ctx, "tr1", false, first.ID), domain.ErrNotFound)
}

func TestAvailableOrigins_UsaCacheSiLaUbicacionCoincide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.cache.Set(ctx, "b1", entity.AvailableOrigins{ManufacturedAt: "Factory-A", Origins: []string{"Factory-A", "Cached"}})
	got, err := f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A", "Cached"}, got.Origins)

	// Entrada obsoleta: el lote se fabricó en otra ubicación.
	f.cache.Set(ctx, "b1", entity.AvailableOrigins{ManufacturedAt: "Old-Site", Origins: []string{"Old-Site"}})
	got, err = f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A"}, got.Origins)

	_, err = f.uc.AvailableOrigins(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateTransport_NoUsaCacheParaAdmitir(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.cache.Set(ctx, "b1", entity.AvailableOrigins{ManufacturedAt: "Factory-A", Origins: []string{"Factory-A", "Ghost"}})

	_, err := f.uc.CreateTransport(ctx, f.leg("b1", "Ghost", "Hub"))
	assert.ErrorIs(t, err, domain.ErrInvalidOrigin)
}

// afterListTransports corre after una sola vez, entre la lectura de tramos y el Set de la caché.
type afterListTransports struct {
	repository.TransportRepository
	after func()
}

func (r *afterListTransports) ListByBatch(ctx context.Context, batchID string) ([]*entity.Transport, error) {
	out, err := r.TransportRepository.ListByBatch(ctx, batchID)
	if hook := r.after; hook != nil {
		r.after = nil
		hook()
	}
	return out, err
}

func TestAvailableOrigins_TramoConfirmadoDuranteLaLectura_NoQuedaEnCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reads := &afterListTransports{TransportRepository: f.store.Transports()}
	uc := transport.NewRegisterTransportUseCase(
		f.store, f.store.Batches(), reads, emission.NewFactorTable(), f.cache, nil, zerolog.Nop(),
	)
	reads.after = func() { f.mustCreate(t, "b1", "Factory-A", "Hub") }

	first, err := uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A"}, first.Origins, "lectura tomada antes del tramo")

	got, err := uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A", "Hub"}, got.Origins)
	assert.Equal(t, int64(1), got.Version)
}

func TestAvailableOrigins_InvalidacionFallida_NoSirveEntradaVieja(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.cache.failDel = true

	before, err := f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A"}, before.Origins)

	created := f.mustCreate(t, "b1", "Factory-A", "Hub")
	got, err := f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A", "Hub"}, got.Origins)

	require.NoError(t, f.uc.DeleteTransport(ctx, "tr1", false, created.ID))
	got, err = f.uc.AvailableOrigins(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Factory-A"}, got.Origins)
	assert.Equal(t, int64(2), got.Version, "alta y baja versionan el historial")
}
