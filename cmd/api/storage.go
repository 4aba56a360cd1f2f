package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/ecotrace-api/internal/application/provenance"
	apptransport "github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/memory"
	"github.com/jhoicas/ecotrace-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ecotrace-api/pkg/config"
	"github.com/jhoicas/ecotrace-api/pkg/logger"
)

// storage repositorios y transacciones del driver elegido en STORE_DRIVER.
type storage struct {
	batchTx     provenance.TxRunner
	transportTx apptransport.TxRunner
	products    repository.ProductRepository
	batches     repository.BatchRepository
	scores      repository.ScoreRepository
	transports  repository.TransportRepository
	labReports  repository.LabReportRepository
	analytics   repository.AnalyticsRepository
	ping        func(ctx context.Context) error // nil en memoria
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		s := memory.New()
		return &storage{
			batchTx:     s,
			transportTx: s,
			products:    s.Products(),
			batches:     s.Batches(),
			scores:      s.Scores(),
			transports:  s.Transports(),
			labReports:  s.LabReports(),
			analytics:   s.Analytics(),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("aplicar esquema: %w", err)
		}
		log.Info().Msg("esquema aplicado")
	}
	return &storage{
		batchTx:     postgres.NewTxRunner(pool),
		transportTx: postgres.NewTxRunner(pool),
		products:    postgres.NewProductRepository(pool),
		batches:     postgres.NewBatchRepository(pool),
		scores:      postgres.NewScoreRepository(pool),
		transports:  postgres.NewTransportRepository(pool),
		labReports:  postgres.NewLabReportRepository(pool),
		analytics:   postgres.NewAnalyticsRepository(pool),
		ping:        pool.Ping,
		close:       pool.Close,
	}, nil
}
