package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

var _ repository.TransportRepository = (*TransportRepo)(nil)

// TransportRepo tramos de transporte sobre PostgreSQL.
// uq_transport_route garantiza una sola ruta (sin distinguir mayúsculas) por lote.
type TransportRepo struct {
	q Querier
}

// NewTransportRepository construye el adaptador de tramos.
func NewTransportRepository(q Querier) *TransportRepo {
	return &TransportRepo{q: q}
}

const transportColumns = `t.id, t.batch_id, t.transporter_id, t.origin, t.destination, t.distance_km,
	t.fuel_type, t.vehicle_type, t.transport_emission, t.notes, t.created_at, t.updated_at`

func (r *TransportRepo) Create(ctx context.Context, t *entity.Transport) error {
	query := `
		INSERT INTO transports (id, batch_id, transporter_id, origin, destination, distance_km,
			fuel_type, vehicle_type, transport_emission, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.BatchID, t.TransporterID, t.Origin, t.Destination, t.DistanceKm,
		t.FuelType, t.VehicleType, t.TransportEmission, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert transport: %w", err)
	}
	return nil
}

func (r *TransportRepo) GetByID(ctx context.Context, id string) (*entity.Transport, error) {
	if !validID(id) {
		return nil, nil
	}
	t, err := scanTransport(r.q.QueryRow(ctx, `SELECT `+transportColumns+` FROM transports t WHERE t.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transport: %w", err)
	}
	return t, nil
}

// ListByBatch devuelve todos los tramos del lote en orden cronológico.
func (r *TransportRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Transport, error) {
	if !validID(batchID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+transportColumns+` FROM transports t WHERE t.batch_id = $1 ORDER BY t.created_at, t.id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transports: %w", err)
	}
	return collectTransports(rows)
}

func (r *TransportRepo) ListByBatchPaged(ctx context.Context, batchID string, limit, offset int) ([]*entity.Transport, int, error) {
	if !validID(batchID) {
		return nil, 0, nil
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transports WHERE batch_id = $1`, batchID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transports: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+transportColumns+` FROM transports t WHERE t.batch_id = $1
		 ORDER BY t.created_at, t.id LIMIT $2 OFFSET $3`,
		batchID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list transports: %w", err)
	}
	list, err := collectTransports(rows)
	return list, total, err
}

// ListByTransporter lista los tramos del transportador, más recientes primero.
// La búsqueda cubre origen, destino y código de lote.
func (r *TransportRepo) ListByTransporter(ctx context.Context, f repository.TransportFilter) ([]*entity.TransportWithBatch, int, error) {
	from := ` FROM transports t JOIN batches b ON b.id = t.batch_id`
	where := ` WHERE t.transporter_id = $1`
	args := []any{f.TransporterID}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where += ` AND (t.origin ILIKE $2 OR t.destination ILIKE $2 OR b.batch_code ILIKE $2)`
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transports: %w", err)
	}

	query := `SELECT ` + transportColumns + `, b.batch_code` + from + where +
		fmt.Sprintf(` ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transports: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransportWithBatch
	for rows.Next() {
		var tw entity.TransportWithBatch
		if err := rows.Scan(append(transportDest(&tw.Transport), &tw.BatchCode)...); err != nil {
			return nil, 0, fmt.Errorf("scan transport: %w", err)
		}
		list = append(list, &tw)
	}
	return list, total, rows.Err()
}

func (r *TransportRepo) Update(ctx context.Context, t *entity.Transport) error {
	if !validID(t.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE transports SET origin = $2, destination = $3, distance_km = $4, fuel_type = $5,
			vehicle_type = $6, transport_emission = $7, notes = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, t.Origin, t.Destination, t.DistanceKm, t.FuelType,
		t.VehicleType, t.TransportEmission, t.Notes, t.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update transport: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransportRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM transports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transport: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func transportDest(t *entity.Transport) []any {
	return []any{
		&t.ID, &t.BatchID, &t.TransporterID, &t.Origin, &t.Destination, &t.DistanceKm,
		&t.FuelType, &t.VehicleType, &t.TransportEmission, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	}
}

func scanTransport(row pgx.Row) (*entity.Transport, error) {
	var t entity.Transport
	if err := row.Scan(transportDest(&t)...); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTransports(rows pgx.Rows) ([]*entity.Transport, error) {
	defer rows.Close()
	var list []*entity.Transport
	for rows.Next() {
		t, err := scanTransport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transport: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
