// Package provenance contiene las reglas de revisión de lotes: la clasificación del
// cambio de composición y la decisión del nivel de validación.
package provenance

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ChangeType magnitud del cambio de composición entre dos lotes consecutivos.
type ChangeType string

// Magnitudes de cambio.
const (
	ChangeNone  ChangeType = "no_change"
	ChangeMinor ChangeType = "minor"
	ChangeMajor ChangeType = "major"
)

// minorChangeRatio umbral (exclusivo) de la razón de longitudes para un cambio menor.
const minorChangeRatio = 0.15

// ClassifyChange compara dos descripciones de materiales por longitud.
// Iguales tras recortar espacios → no_change. Si no, ratio = |len(old)-len(new)| / max(len(old),1):
// ratio < 0.15 → minor, en otro caso → major. El denominador usa solo la descripción anterior.
func ClassifyChange(oldInfo, newInfo string) ChangeType {
	if strings.TrimSpace(oldInfo) == strings.TrimSpace(newInfo) {
		return ChangeNone
	}

	oldLen := utf8.RuneCountInString(oldInfo)
	newLen := utf8.RuneCountInString(newInfo)

	diff := oldLen - newLen
	if diff < 0 {
		diff = -diff
	}
	ratio := float64(diff) / float64(max(oldLen, 1))

	if ratio < minorChangeRatio {
		return ChangeMinor
	}
	return ChangeMajor
}

// ChangeAnalysis resumen legible de un cambio de composición.
type ChangeAnalysis struct {
	ChangeType      ChangeType
	ImpactLevel     string // low | medium | high
	RequiresLabTest bool
	Description     string
}

// AnalyzeChange clasifica el cambio y lo traduce a nivel de impacto.
func AnalyzeChange(oldInfo, newInfo string) ChangeAnalysis {
	change := ClassifyChange(oldInfo, newInfo)

	impact := "medium"
	switch change {
	case ChangeNone:
		impact = "low"
	case ChangeMajor:
		impact = "high"
	}

	return ChangeAnalysis{
		ChangeType:      change,
		ImpactLevel:     impact,
		RequiresLabTest: change == ChangeMajor,
		Description:     fmt.Sprintf("Material composition %s.", change),
	}
}
