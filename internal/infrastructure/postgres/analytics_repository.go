package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para estadísticas de transporte y el dashboard del fabricante.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetTransporterTotals suma distancia y emisiones de todos los tramos del transportador.
func (r *AnalyticsRepo) GetTransporterTotals(ctx context.Context, transporterID string) (repository.TransporterTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                                AS transport_count,
	    COALESCE(SUM(distance_km), 0)           AS total_distance,
	    COALESCE(SUM(transport_emission), 0)    AS total_emission
	FROM transports
	WHERE transporter_id = $1`

	var t repository.TransporterTotals
	if err := r.pool.QueryRow(ctx, query, transporterID).Scan(&t.TransportCount, &t.TotalDistance, &t.TotalEmission); err != nil {
		return repository.TransporterTotals{}, fmt.Errorf("GetTransporterTotals: %w", err)
	}
	return t, nil
}

func (r *AnalyticsRepo) CountProducts(ctx context.Context, manufacturerID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE manufacturer_id = $1`, manufacturerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountProducts: %w", err)
	}
	return n, nil
}

func (r *AnalyticsRepo) CountBatches(ctx context.Context, manufacturerID string) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM batches b
	JOIN products p ON p.id = b.product_id
	WHERE p.manufacturer_id = $1`

	var n int
	if err := r.pool.QueryRow(ctx, query, manufacturerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountBatches: %w", err)
	}
	return n, nil
}

// ProductBatchSummaries un registro por producto con su conteo de lotes y el último lote.
// LEFT JOIN LATERAL conserva los productos sin lotes (columnas del último lote en NULL).
func (r *AnalyticsRepo) ProductBatchSummaries(ctx context.Context, manufacturerID string) ([]repository.ProductBatchSummary, error) {
	const query = `
	SELECT
	    p.id,
	    p.name,
	    (SELECT COUNT(*) FROM batches c WHERE c.product_id = p.id) AS batch_count,
	    last.id,
	    last.batch_code,
	    last.created_at
	FROM products p
	LEFT JOIN LATERAL (
	    SELECT b.id::text AS id, b.batch_code, b.created_at
	    FROM batches b
	    WHERE b.product_id = p.id
	    ORDER BY b.created_at DESC, b.id DESC
	    LIMIT 1
	) last ON true
	WHERE p.manufacturer_id = $1
	ORDER BY p.name`

	rows, err := r.pool.Query(ctx, query, manufacturerID)
	if err != nil {
		return nil, fmt.Errorf("ProductBatchSummaries: %w", err)
	}
	defer rows.Close()

	var results []repository.ProductBatchSummary
	for rows.Next() {
		var s repository.ProductBatchSummary
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.BatchCount,
			&s.LastBatchID, &s.LastBatchCode, &s.LastBatchCreatedAt); err != nil {
			return nil, fmt.Errorf("ProductBatchSummaries scan: %w", err)
		}
		results = append(results, s)
	}
	return results, rows.Err()
}
