package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// ScoreRequest datos del lote disponibles para el proveedor de puntajes.
// Un proveedor puede ignorarlos (el sustituto aleatorio lo hace).
type ScoreRequest struct {
	BatchCode    string
	ProductName  string
	MaterialInfo string
}

// ScoreResult puntaje de sostenibilidad con sus componentes.
type ScoreResult struct {
	EnvironmentScore decimal.Decimal
	EthicsScore      decimal.Decimal
	SafetyScore      decimal.Decimal
	CostScore        decimal.Decimal
	FinalScore       decimal.Decimal
	Reasoning        string
}

// ScoreProvider define el puerto de salida hacia el motor de puntajes de sostenibilidad.
// Se invoca por lote; no se asume idempotente entre llamadas.
type ScoreProvider interface {
	GenerateScore(ctx context.Context, req ScoreRequest) (*ScoreResult, error)
}
