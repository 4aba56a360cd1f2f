package provenance

import "github.com/jhoicas/ecotrace-api/internal/domain/entity"

// ScoreAction qué hacer con el puntaje del lote nuevo.
type ScoreAction string

// Acciones de puntaje.
const (
	ScoreReusePrior ScoreAction = "reuse_prior" // copiar el puntaje final del lote anterior
	ScoreGenerate   ScoreAction = "generate"    // pedir un puntaje nuevo al proveedor
)

// Decision resultado de la clasificación de un lote nuevo. Es de un solo paso:
// el lote recibe su estado al crearse y no avanza por eventos externos.
type Decision struct {
	Status      entity.ValidationStatus
	ScoreAction ScoreAction
	Change      ChangeType // vacío si no hay lote anterior
	HasPrior    bool
}

// Decide asigna el nivel de validación a partir del lote anterior del mismo producto.
// Sin lote anterior no hay línea base: siempre lab_required.
func Decide(prior *entity.Batch, materialInfo string) Decision {
	if prior == nil {
		return Decision{Status: entity.ValidationLabRequired, ScoreAction: ScoreGenerate}
	}

	change := ClassifyChange(prior.MaterialInfo, materialInfo)
	d := Decision{Change: change, HasPrior: true, ScoreAction: ScoreGenerate}
	switch change {
	case ChangeNone:
		d.Status = entity.ValidationAutoVerified
		d.ScoreAction = ScoreReusePrior
	case ChangeMinor:
		d.Status = entity.ValidationAIReview
	default:
		d.Status = entity.ValidationLabRequired
	}
	return d
}
