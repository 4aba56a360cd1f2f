// Package emission estima las emisiones de un tramo de transporte.
package emission

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultFactor factor (kg CO2 por km) para tipos de combustible desconocidos.
var DefaultFactor = decimal.RequireFromString("2.5")

// defaultFactors kg CO2 por km según combustible.
var defaultFactors = map[string]decimal.Decimal{
	"diesel":      decimal.RequireFromString("2.68"),
	"petrol":      decimal.RequireFromString("2.31"),
	"electric":    decimal.RequireFromString("0.5"),
	"lpg":         decimal.RequireFromString("1.75"),
	"natural_gas": decimal.RequireFromString("2.15"),
}

// Estimator calcula la emisión de un tramo. Debe ser determinista.
type Estimator interface {
	Estimate(distanceKm decimal.Decimal, fuelType string) decimal.Decimal
}

// FactorTable estimador por tabla de factores: distancia × factor, redondeado a 2 decimales.
type FactorTable struct {
	factors  map[string]decimal.Decimal
	fallback decimal.Decimal
}

// NewFactorTable construye la tabla con los factores por defecto.
func NewFactorTable() *FactorTable {
	return &FactorTable{factors: defaultFactors, fallback: DefaultFactor}
}

// Factor devuelve el factor del combustible (sin distinguir mayúsculas) o el de respaldo.
func (t *FactorTable) Factor(fuelType string) decimal.Decimal {
	if f, ok := t.factors[strings.ToLower(strings.TrimSpace(fuelType))]; ok {
		return f
	}
	return t.fallback
}

// Estimate implementa Estimator.
func (t *FactorTable) Estimate(distanceKm decimal.Decimal, fuelType string) decimal.Decimal {
	return distanceKm.Mul(t.Factor(fuelType)).Round(2)
}
