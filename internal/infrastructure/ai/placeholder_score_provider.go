package ai

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecotrace-api/internal/application/ports"
)

var _ ports.ScoreProvider = (*PlaceholderScoreProvider)(nil)

const placeholderReasoning = "Puntaje provisional generado sin modelo de IA."

// PlaceholderScoreProvider genera puntajes aleatorios dentro de rangos plausibles.
// Se usa cuando no hay ANTHROPIC_API_KEY; con semilla fija es reproducible.
type PlaceholderScoreProvider struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPlaceholderScoreProvider seed 0 usa el reloj como semilla.
func NewPlaceholderScoreProvider(seed int64) *PlaceholderScoreProvider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PlaceholderScoreProvider{rnd: rand.New(rand.NewSource(seed))}
}

// GenerateScore ignora los datos del lote.
func (p *PlaceholderScoreProvider) GenerateScore(_ context.Context, _ ports.ScoreRequest) (*ports.ScoreResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return &ports.ScoreResult{
		EnvironmentScore: p.between(60, 95),
		EthicsScore:      p.between(65, 90),
		SafetyScore:      p.between(70, 95),
		CostScore:        p.between(55, 85),
		FinalScore:       p.between(65, 90),
		Reasoning:        placeholderReasoning,
	}, nil
}

// between valor uniforme en [lo, hi] con dos decimales.
func (p *PlaceholderScoreProvider) between(lo, hi float64) decimal.Decimal {
	v := lo + p.rnd.Float64()*(hi-lo)
	return decimal.NewFromFloat(v).Round(2)
}
