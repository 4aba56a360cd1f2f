package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ecotrace-api/internal/domain"
)

// Códigos SQLSTATE usados por los repositorios.
const (
	codeUniqueViolation   = "23505"
	codeInvalidTextRepr   = "22P02"
	codeForeignKeyViolate = "23503"
)

// constraintErrors traduce violaciones de unicidad a errores de dominio por nombre de constraint.
var constraintErrors = map[string]error{
	"uq_product_batch_code":   domain.ErrConflict,
	"uq_transport_route":      domain.ErrDuplicateRoute,
	"uq_lab_report_batch_lab": domain.ErrConflict,
	"uq_products_name":        domain.ErrConflict,
}

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeUniqueViolation
}

// validID evita enviar a la DB ids que no son UUID: un 22P02 abortaría la transacción.
// Los repositorios tratan un id inválido como inexistente.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// likePattern arma el patrón ILIKE '%term%' escapando comodines.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + r.Replace(term) + "%"
}

// mapWriteError convierte violaciones de constraints conocidas en errores de dominio.
// Devuelve nil si err no es una de ellas.
func mapWriteError(err error) error {
	code, constraint := pgCode(err)
	switch code {
	case codeUniqueViolation:
		if mapped, ok := constraintErrors[constraint]; ok {
			return mapped
		}
		return domain.ErrConflict
	case codeForeignKeyViolate:
		return domain.ErrNotFound
	case codeInvalidTextRepr:
		return domain.ErrInvalidInput
	}
	return nil
}
