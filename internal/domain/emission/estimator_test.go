package emission_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ecotrace-api/internal/domain/emission"
)

func TestFactorTable_Estimate(t *testing.T) {
	est := emission.NewFactorTable()

	tests := []struct {
		distance string
		fuel     string
		want     string
	}{
		{"100", "diesel", "268"},
		{"100", "DIESEL", "268"},
		{"12.5", "petrol", "28.88"}, // 28.875 → 28.88
		{"40", "electric", "20"},
		{"10", "lpg", "17.5"},
		{"10", "natural_gas", "21.5"},
		{"10", "hidrógeno", "25"}, // factor por defecto
		{"10", "", "25"},
	}
	for _, tt := range tests {
		got := est.Estimate(decimal.RequireFromString(tt.distance), tt.fuel)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
			"%s km con %q: esperado %s, obtenido %s", tt.distance, tt.fuel, tt.want, got)
	}
}

func TestFactorTable_Determinista(t *testing.T) {
	est := emission.NewFactorTable()
	d := decimal.RequireFromString("321.45")
	assert.True(t, est.Estimate(d, "diesel").Equal(est.Estimate(d, "diesel")))
}
