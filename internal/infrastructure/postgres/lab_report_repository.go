package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ecotrace-api/internal/domain"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
	"github.com/jhoicas/ecotrace-api/internal/domain/repository"
)

var _ repository.LabReportRepository = (*LabReportRepo)(nil)

// LabReportRepo informes de laboratorio sobre PostgreSQL.
type LabReportRepo struct {
	q Querier
}

// NewLabReportRepository construye el adaptador de informes.
func NewLabReportRepository(q Querier) *LabReportRepo {
	return &LabReportRepo{q: q}
}

const labReportColumns = `l.id, l.batch_id, l.lab_id, l.test_summary, l.certifications, l.eco_rating,
	l.lab_score, l.verified, l.created_at, l.updated_at`

func (r *LabReportRepo) Create(ctx context.Context, l *entity.LabReport) error {
	query := `
		INSERT INTO lab_reports (id, batch_id, lab_id, test_summary, certifications, eco_rating,
			lab_score, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.BatchID, l.LabID, l.TestSummary, l.Certifications, l.EcoRating,
		l.LabScore, l.Verified, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert lab report: %w", err)
	}
	return nil
}

func (r *LabReportRepo) GetByID(ctx context.Context, id string) (*entity.LabReport, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+labReportColumns+` FROM lab_reports l WHERE l.id = $1`, id)
}

func (r *LabReportRepo) GetByBatchAndLab(ctx context.Context, batchID, labID string) (*entity.LabReport, error) {
	if !validID(batchID) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+labReportColumns+` FROM lab_reports l WHERE l.batch_id = $1 AND l.lab_id = $2`, batchID, labID)
}

// ListByLab lista los informes del laboratorio. La búsqueda cubre resumen, certificaciones,
// id del informe y código de lote; Verified filtra por estado de verificación.
func (r *LabReportRepo) ListByLab(ctx context.Context, f repository.LabReportFilter) ([]*entity.LabReport, int, error) {
	from := ` FROM lab_reports l JOIN batches b ON b.id = l.batch_id`
	where := ` WHERE l.lab_id = $1`
	args := []any{f.LabID}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		where += fmt.Sprintf(` AND (l.test_summary ILIKE $%d OR l.certifications ILIKE $%d OR l.id::text ILIKE $%d OR b.batch_code ILIKE $%d)`, n, n, n, n)
	}
	if f.Verified != nil {
		args = append(args, *f.Verified)
		where += fmt.Sprintf(` AND l.verified = $%d`, len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lab reports: %w", err)
	}

	query := `SELECT ` + labReportColumns + from + where +
		fmt.Sprintf(` ORDER BY l.created_at DESC, l.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lab reports: %w", err)
	}
	list, err := collectLabReports(rows)
	return list, total, err
}

func (r *LabReportRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.LabReport, error) {
	if !validID(batchID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+labReportColumns+` FROM lab_reports l WHERE l.batch_id = $1 ORDER BY l.created_at DESC, l.id DESC`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lab reports: %w", err)
	}
	return collectLabReports(rows)
}

// StatsByLab totales del laboratorio y productos distintos cubiertos por sus informes.
func (r *LabReportRepo) StatsByLab(ctx context.Context, labID string) (*entity.LabReportStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE l.verified),
			COUNT(*) FILTER (WHERE NOT l.verified),
			COUNT(DISTINCT b.product_id)
		FROM lab_reports l JOIN batches b ON b.id = l.batch_id
		WHERE l.lab_id = $1`
	var s entity.LabReportStats
	if err := r.q.QueryRow(ctx, query, labID).Scan(&s.Total, &s.Verified, &s.Pending, &s.UniqueProducts); err != nil {
		return nil, fmt.Errorf("lab report stats: %w", err)
	}
	return &s, nil
}

func (r *LabReportRepo) Update(ctx context.Context, l *entity.LabReport) error {
	if !validID(l.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE lab_reports SET test_summary = $2, certifications = $3, eco_rating = $4,
			lab_score = $5, verified = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		l.ID, l.TestSummary, l.Certifications, l.EcoRating, l.LabScore, l.Verified, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lab report: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LabReportRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM lab_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lab report: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LabReportRepo) getOne(ctx context.Context, query string, args ...any) (*entity.LabReport, error) {
	l, err := scanLabReport(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lab report: %w", err)
	}
	return l, nil
}

func scanLabReport(row pgx.Row) (*entity.LabReport, error) {
	var l entity.LabReport
	err := row.Scan(&l.ID, &l.BatchID, &l.LabID, &l.TestSummary, &l.Certifications, &l.EcoRating,
		&l.LabScore, &l.Verified, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLabReports(rows pgx.Rows) ([]*entity.LabReport, error) {
	defer rows.Close()
	var list []*entity.LabReport
	for rows.Next() {
		l, err := scanLabReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lab report: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
