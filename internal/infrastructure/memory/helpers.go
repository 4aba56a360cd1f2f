package memory

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// newerFirst orden created_at DESC; empates por orden de inserción.
func newerFirst(st *state, idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return st.order[idA] > st.order[idB]
}

// olderFirst orden created_at ASC; empates por orden de inserción.
func olderFirst(st *state, idA string, a time.Time, idB string, b time.Time) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return st.order[idA] < st.order[idB]
}

// fold normaliza mayúsculas para comparar como lower() de PostgreSQL, incluidos acentos ("ÁREA" ~ "área").
// Un Caser no se comparte entre goroutines.
func fold(s string) string {
	return cases.Fold().String(s)
}

// matches búsqueda tipo ILIKE '%term%' sobre varios campos.
func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = fold(term)
	for _, f := range fields {
		if strings.Contains(fold(f), term) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
