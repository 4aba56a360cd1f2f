package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ecotrace-api/internal/application/provenance"
	"github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

// Ensure TxRunner implements provenance.TxRunner and transport.TxRunner.
var _ provenance.TxRunner = (*TxRunner)(nil)
var _ transport.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBatch inicia una transacción con los repos de producto, lote, puntaje y bitácora.
func (r *TxRunner) RunBatch(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	scoreRepo repository.ScoreRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewBatchRepository(tx), NewScoreRepository(tx), NewAuditRepository(tx))
	})
}

// RunTransport inicia una transacción con los repos de lote, tramo y bitácora.
func (r *TxRunner) RunTransport(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	transportRepo repository.TransportRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewBatchRepository(tx), NewTransportRepository(tx), NewAuditRepository(tx))
	})
}

// run hace Begin, ejecuta fn y Commit; cualquier error hace Rollback.
// Una violación de unicidad detectada al confirmar se traduce al error de dominio.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
