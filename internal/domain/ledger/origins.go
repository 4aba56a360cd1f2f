// Package ledger deriva, a partir del historial de tramos de un lote, el balance de
// unidades por ubicación y los orígenes válidos para el siguiente envío.
// Todo se recalcula desde los tramos; no hay balances persistidos.
package ledger

import (
	"slices"
	"sort"
	"strings"

	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

// Balances devuelve, por ubicación, llegadas menos salidas sobre los tramos dados.
// Las ubicaciones se comparan tal cual (sensible a mayúsculas).
func Balances(movements []*entity.Transport) map[string]int {
	balances := make(map[string]int)
	for _, m := range movements {
		balances[m.Destination]++
		balances[m.Origin]--
	}
	return balances
}

// AvailableOrigins calcula los orígenes válidos para el próximo tramo:
// la ubicación de fabricación siempre, más toda ubicación distinta con balance > 0.
// El origen de fabricación va primero; el resto en orden ascendente.
func AvailableOrigins(source string, movements []*entity.Transport) entity.AvailableOrigins {
	balances := Balances(movements)

	extra := make([]string, 0, len(balances))
	for loc, bal := range balances {
		if loc != source && bal > 0 {
			extra = append(extra, loc)
		}
	}
	sort.Strings(extra)

	return entity.AvailableOrigins{
		ManufacturedAt: source,
		Origins:        append([]string{source}, extra...),
	}
}

// IsAvailable indica si origin pertenece exactamente (sensible a mayúsculas) a los orígenes.
func IsAvailable(origins entity.AvailableOrigins, origin string) bool {
	return slices.Contains(origins.Origins, origin)
}

// RouteExists indica si ya hay un tramo con el mismo par origen/destino, sin distinguir
// mayúsculas. excludeID omite un tramo (el que se está editando); vacío no omite ninguno.
func RouteExists(movements []*entity.Transport, origin, destination, excludeID string) bool {
	for _, m := range movements {
		if excludeID != "" && m.ID == excludeID {
			continue
		}
		if strings.EqualFold(m.Origin, origin) && strings.EqualFold(m.Destination, destination) {
			return true
		}
	}
	return false
}
