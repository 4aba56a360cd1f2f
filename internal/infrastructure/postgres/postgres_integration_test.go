//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/ecotrace-api/internal/application/analytics"
	"github.com/jhoicas/ecotrace-api/internal/application/provenance"
	"github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/emission"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/ai"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/postgres"
)

type PostgresSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool

	batches    *provenance.RegisterBatchUseCase
	transports *transport.RegisterTransportUseCase
	productID  string
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ecotrace"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err, "levantar postgres")
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.pool, err = postgres.NewPoolFromDSN(ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(postgres.ApplySchema(ctx, s.pool))
	s.Require().NoError(postgres.ApplySchema(ctx, s.pool), "el esquema es idempotente")

	tx := postgres.NewTxRunner(s.pool)
	s.batches = provenance.NewRegisterBatchUseCase(tx, ai.NewPlaceholderScoreProvider(1), nil, zerolog.Nop())
	s.transports = transport.NewRegisterTransportUseCase(tx,
		postgres.NewBatchRepository(s.pool), postgres.NewTransportRepository(s.pool),
		emission.NewFactorTable(), nil, nil, zerolog.Nop())
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if err := testcontainers.TerminateContainer(s.container); err != nil {
		s.T().Logf("terminar contenedor: %v", err)
	}
}

func (s *PostgresSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `TRUNCATE audit_logs, lab_reports, transports, scores, batches, products CASCADE`)
	s.Require().NoError(err)

	s.productID = uuid.New().String()
	now := time.Now().UTC()
	err = postgres.NewProductRepository(s.pool).Create(ctx, &entity.Product{
		ID: s.productID, ManufacturerID: "m1", Name: "Camiseta orgánica", Brand: "Verde",
		CreatedAt: now, UpdatedAt: now,
	})
	s.Require().NoError(err)
}

func (s *PostgresSuite) createBatch(code, material string) *provenance.BatchResult {
	res, err := s.batches.CreateBatch(context.Background(), provenance.BatchInputDTO{
		ManufacturerID:        "m1",
		ProductID:             s.productID,
		BatchCode:             code,
		MaterialInfo:          material,
		ManufacturingLocation: "Factory-A",
	})
	s.Require().NoError(err, "crear lote %s", code)
	return res
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

func (s *PostgresSuite) TestLotes_ClasificacionYCopiaDePuntaje() {
	first := s.createBatch("L-001", "algodón 100%")
	s.Equal(entity.ValidationLabRequired, first.Batch.ValidationStatus)
	s.Require().NotNil(first.Score)

	second := s.createBatch("L-002", "algodón 100%")
	s.Equal(entity.ValidationAutoVerified, second.Batch.ValidationStatus)
	s.Require().NotNil(second.Score)
	s.True(first.Score.FinalScore.Equal(second.Score.FinalScore))
	s.Require().NotNil(second.Score.CopiedFromBatchID)
	s.Equal(first.Batch.ID, *second.Score.CopiedFromBatchID)

	var audits int
	err := s.pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM audit_logs WHERE entity_type = 'batch'`).Scan(&audits)
	s.Require().NoError(err)
	s.Equal(2, audits)
}

func (s *PostgresSuite) TestLotes_CodigoConcurrente_UnSoloExito() {
	const n = 8
	var (
		wg        sync.WaitGroup
		ok        atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.batches.CreateBatch(context.Background(), provenance.BatchInputDTO{
				ManufacturerID: "m1", ProductID: s.productID, BatchCode: "L-RACE", MaterialInfo: "lino",
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load())
	s.Equal(int32(n-1), conflicts.Load())
}

func (s *PostgresSuite) TestLotes_IDNoUUID_EsNoEncontrado() {
	b, err := postgres.NewBatchRepository(s.pool).GetByID(context.Background(), "no-existe")
	s.NoError(err)
	s.Nil(b)

	_, err = s.batches.RescoreBatch(context.Background(), "m1", "no-existe")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresSuite) TestLotes_BorradoEnCascada() {
	b := s.createBatch("L-001", "algodón")
	_, err := s.transports.CreateTransport(context.Background(), transport.TransportInputDTO{
		TransporterID: "t1", BatchID: b.Batch.ID, Origin: "Factory-A", Destination: "Hub",
		DistanceKm: decimal.NewFromInt(10), FuelType: "diesel",
	})
	s.Require().NoError(err)

	s.Require().NoError(postgres.NewBatchRepository(s.pool).Delete(context.Background(), b.Batch.ID))

	var rows int
	err = s.pool.QueryRow(context.Background(),
		`SELECT (SELECT COUNT(*) FROM transports) + (SELECT COUNT(*) FROM scores)`).Scan(&rows)
	s.Require().NoError(err)
	s.Zero(rows)
}

func (s *PostgresSuite) TestLotes_MismoCreatedAt_RescoreDesempataPorID() {
	ctx := context.Background()
	repo := postgres.NewBatchRepository(s.pool)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	const (
		low  = "00000000-0000-0000-0000-000000000001"
		high = "00000000-0000-0000-0000-000000000002"
	)
	for _, id := range []string{high, low} {
		s.Require().NoError(repo.Create(ctx, &entity.Batch{
			ID: id, ProductID: s.productID, BatchCode: "L-" + id[len(id)-1:], MaterialInfo: "lino",
			ValidationStatus: entity.ValidationLabRequired, CreatedAt: at, UpdatedAt: at,
		}))
	}

	res, err := s.batches.RescoreBatch(ctx, "m1", high)
	s.Require().NoError(err)
	s.Equal(low, res.PriorBatchID)
	s.Equal(entity.ValidationAutoVerified, res.Batch.ValidationStatus)

	res, err = s.batches.RescoreBatch(ctx, "m1", low)
	s.Require().NoError(err)
	s.Empty(res.PriorBatchID)
}

// ── Tramos ────────────────────────────────────────────────────────────────────

func (s *PostgresSuite) TestTramos_LedgerYRutaDuplicada() {
	ctx := context.Background()
	b := s.createBatch("L-001", "algodón")
	leg := func(origin, destination string) error {
		_, err := s.transports.CreateTransport(ctx, transport.TransportInputDTO{
			TransporterID: "t1", BatchID: b.Batch.ID, Origin: origin, Destination: destination,
			DistanceKm: decimal.RequireFromString("12.5"), FuelType: "petrol",
		})
		return err
	}

	s.Require().NoError(leg("Factory-A", "B"))
	s.Require().NoError(leg("B", "C"))
	s.ErrorIs(leg("factory-a", "b"), domain.ErrInvalidOrigin, "el origen distingue mayúsculas")
	s.ErrorIs(leg("Factory-A", "b"), domain.ErrDuplicateRoute, "la ruta no distingue mayúsculas")
	s.ErrorIs(leg("D", "E"), domain.ErrInvalidOrigin)

	origins, err := s.transports.AvailableOrigins(ctx, b.Batch.ID)
	s.Require().NoError(err)
	s.Equal([]string{"Factory-A", "C"}, origins.Origins)
}

func (s *PostgresSuite) TestTramos_RutaConcurrente_UnSoloExito() {
	b := s.createBatch("L-001", "algodón")
	const n = 6
	var (
		wg  sync.WaitGroup
		ok  atomic.Int32
		dup atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.transports.CreateTransport(context.Background(), transport.TransportInputDTO{
				TransporterID: "t1", BatchID: b.Batch.ID, Origin: "Factory-A", Destination: "Hub",
				DistanceKm: decimal.NewFromInt(5), FuelType: "electric",
			})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrDuplicateRoute):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load())
	s.Equal(int32(n-1), dup.Load())
}

// ── Analítica ─────────────────────────────────────────────────────────────────

func (s *PostgresSuite) TestAnalitica_TotalesYDashboard() {
	ctx := context.Background()
	b := s.createBatch("L-001", "algodón")
	for _, dest := range []string{"Hub", "Port"} {
		_, err := s.transports.CreateTransport(ctx, transport.TransportInputDTO{
			TransporterID: "t1", BatchID: b.Batch.ID, Origin: "Factory-A", Destination: dest,
			DistanceKm: decimal.NewFromInt(100), FuelType: "diesel",
		})
		s.Require().NoError(err)
	}

	repo := postgres.NewAnalyticsRepository(s.pool)
	stats, err := analytics.NewTransportStatsUseCase(repo).GetStats(ctx, "t1")
	s.Require().NoError(err)
	s.Equal(2, stats.TotalTransports)
	s.Equal("200.00", stats.TotalDistance.StringFixed(2))

	empty, err := analytics.NewTransportStatsUseCase(repo).GetStats(ctx, "nadie")
	s.Require().NoError(err)
	s.Zero(empty.TotalTransports)
	s.True(empty.AvgEmissionPerKm.IsZero())

	dash, err := analytics.NewDashboardUseCase(repo).GetManufacturerDashboard(ctx, "m1")
	s.Require().NoError(err)
	s.Equal(1, dash.TotalProducts)
	s.Equal(1, dash.TotalBatches)
	s.Require().Len(dash.Products, 1)
	s.Require().NotNil(dash.Products[0].LastBatchCode)
	s.Equal("L-001", *dash.Products[0].LastBatchCode)
}
