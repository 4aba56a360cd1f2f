package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de persistencia para lotes.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `b.id, b.product_id, b.batch_code, b.manufacture_date, b.expiry_date, b.material_info,
	b.material_source, b.manufacturing_location, b.base_carbon_footprint, b.validation_status,
	b.ledger_version, b.created_at, b.updated_at`

// Create persiste un lote. Un código repetido para el producto devuelve ErrConflict.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (id, product_id, batch_code, manufacture_date, expiry_date, material_info,
			material_source, manufacturing_location, base_carbon_footprint, validation_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.BatchCode, b.ManufactureDate, b.ExpiryDate, b.MaterialInfo,
		b.MaterialSource, b.ManufacturingLocation, b.BaseCarbonFootprint, string(b.ValidationStatus),
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, id, `SELECT `+batchColumns+` FROM batches b WHERE b.id = $1`)
}

// GetForUpdate obtiene el lote con SELECT FOR UPDATE. Serializa las escrituras de tramos del lote.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, id, `SELECT `+batchColumns+` FROM batches b WHERE b.id = $1 FOR UPDATE`)
}

// GetWithProduct obtiene el lote junto con nombre, marca y fabricante del producto.
func (r *BatchRepo) GetWithProduct(ctx context.Context, id string) (*entity.BatchWithProduct, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `
		SELECT ` + batchColumns + `, p.name, p.brand, p.manufacturer_id
		FROM batches b JOIN products p ON p.id = b.product_id
		WHERE b.id = $1`
	bw, err := scanBatchWithProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch with product: %w", err)
	}
	return bw, nil
}

// GetByProductAndCode busca el lote por producto y código exacto.
func (r *BatchRepo) GetByProductAndCode(ctx context.Context, productID, batchCode string) (*entity.Batch, error) {
	if !validID(productID) {
		return nil, nil
	}
	query := `SELECT ` + batchColumns + ` FROM batches b WHERE b.product_id = $1 AND b.batch_code = $2`
	b, err := scanBatch(r.q.QueryRow(ctx, query, productID, batchCode))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch by code: %w", err)
	}
	return b, nil
}

// LatestForProduct devuelve el lote más reciente del producto. Con before solo considera
// lotes creados antes de ese instante; con before y excludeID, los anteriores a la tupla
// (created_at, id) del lote excluido.
func (r *BatchRepo) LatestForProduct(ctx context.Context, productID string, before *time.Time, excludeID string) (*entity.Batch, error) {
	if !validID(productID) {
		return nil, nil
	}
	query := `SELECT ` + batchColumns + ` FROM batches b WHERE b.product_id = $1`
	args := []any{productID}
	switch {
	case before != nil && validID(excludeID):
		// Mismo orden que el ORDER BY: los empates de created_at se resuelven por id.
		args = append(args, *before, excludeID)
		query += fmt.Sprintf(" AND (b.created_at, b.id) < ($%d, $%d::uuid)", len(args)-1, len(args))
	case before != nil:
		args = append(args, *before)
		query += fmt.Sprintf(" AND b.created_at < $%d", len(args))
	case validID(excludeID):
		args = append(args, excludeID)
		query += fmt.Sprintf(" AND b.id <> $%d", len(args))
	}
	query += ` ORDER BY b.created_at DESC, b.id DESC LIMIT 1`

	b, err := scanBatch(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest batch: %w", err)
	}
	return b, nil
}

// List lista los lotes del fabricante con búsqueda por código, nombre o marca del producto.
func (r *BatchRepo) List(ctx context.Context, f repository.BatchFilter) ([]*entity.BatchWithProduct, int, error) {
	where := ` WHERE p.manufacturer_id = $1`
	args := []any{f.ManufacturerID}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where += ` AND (b.batch_code ILIKE $2 OR p.name ILIKE $2 OR p.brand ILIKE $2)`
	}
	from := ` FROM batches b JOIN products p ON p.id = b.product_id`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}

	query := `SELECT ` + batchColumns + `, p.name, p.brand, p.manufacturer_id` + from + where +
		fmt.Sprintf(` ORDER BY b.created_at DESC, b.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.BatchWithProduct
	for rows.Next() {
		bw, err := scanBatchWithProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, bw)
	}
	return list, total, rows.Err()
}

// ListByProduct devuelve los lotes del producto, más recientes primero.
func (r *BatchRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	if !validID(productID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+batchColumns+` FROM batches b WHERE b.product_id = $1 ORDER BY b.created_at DESC, b.id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list batches by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListPendingLab cola del laboratorio: lotes lab_required sin ningún informe.
func (r *BatchRepo) ListPendingLab(ctx context.Context, f repository.PendingLabFilter) ([]*entity.BatchWithProduct, int, error) {
	from := ` FROM batches b JOIN products p ON p.id = b.product_id`
	where := ` WHERE b.validation_status = $1
		AND NOT EXISTS (SELECT 1 FROM lab_reports l WHERE l.batch_id = b.id)`
	args := []any{string(entity.ValidationLabRequired)}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where += ` AND (b.batch_code ILIKE $2 OR b.manufacturing_location ILIKE $2 OR p.name ILIKE $2)`
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count pending lab batches: %w", err)
	}

	query := `SELECT ` + batchColumns + `, p.name, p.brand, p.manufacturer_id` + from + where +
		fmt.Sprintf(` ORDER BY b.created_at DESC, b.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending lab batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.BatchWithProduct
	for rows.Next() {
		bw, err := scanBatchWithProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, bw)
	}
	return list, total, rows.Err()
}

// Update reescribe los campos editables del lote. No toca validation_status.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	if !validID(b.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE batches SET batch_code = $2, manufacture_date = $3, expiry_date = $4, material_info = $5,
			material_source = $6, manufacturing_location = $7, base_carbon_footprint = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		b.ID, b.BatchCode, b.ManufactureDate, b.ExpiryDate, b.MaterialInfo,
		b.MaterialSource, b.ManufacturingLocation, b.BaseCarbonFootprint, b.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update batch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateValidationStatus cambia solo el nivel de validación (re-evaluación).
func (r *BatchRepo) UpdateValidationStatus(ctx context.Context, id string, status entity.ValidationStatus) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE batches SET validation_status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BumpLedgerVersion versiona el historial de tramos del lote. La caché de orígenes
// descarta toda entrada calculada con otra versión.
func (r *BatchRepo) BumpLedgerVersion(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `UPDATE batches SET ledger_version = ledger_version + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bump ledger version: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el lote; tramos, puntajes e informes caen por ON DELETE CASCADE.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) getOne(ctx context.Context, id, query string) (*entity.Batch, error) {
	if !validID(id) {
		return nil, nil
	}
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func batchDest(b *entity.Batch, status *string) []any {
	return []any{
		&b.ID, &b.ProductID, &b.BatchCode, &b.ManufactureDate, &b.ExpiryDate, &b.MaterialInfo,
		&b.MaterialSource, &b.ManufacturingLocation, &b.BaseCarbonFootprint, status,
		&b.LedgerVersion, &b.CreatedAt, &b.UpdatedAt,
	}
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var (
		b      entity.Batch
		status string
	)
	if err := row.Scan(batchDest(&b, &status)...); err != nil {
		return nil, err
	}
	b.ValidationStatus = entity.ValidationStatus(status)
	return &b, nil
}

func scanBatchWithProduct(row pgx.Row) (*entity.BatchWithProduct, error) {
	var (
		bw     entity.BatchWithProduct
		status string
	)
	dest := append(batchDest(&bw.Batch, &status), &bw.ProductName, &bw.ProductBrand, &bw.ManufacturerID)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	bw.ValidationStatus = entity.ValidationStatus(status)
	return &bw, nil
}
