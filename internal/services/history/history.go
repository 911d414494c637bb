// Package history synthesizes hourly price series around the current quote.
package history

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultBasePrice anchor used when the current price cannot be looked up.
	DefaultBasePrice = 100.0

	noiseAmplitude = 0.02
	driftAmplitude = 0.03
	momentumFactor = 0.3
	pointsPerDay   = 24
	minPriceShare  = 0.01
)

// PriceLookup returns the current price record of a symbol.
type PriceLookup func(ctx context.Context, symbol string) (domain.PriceRecord, error)

// Generator produces synthetic hourly history. Output is illustrative, not market data.
type Generator struct {
	lookup PriceLookup
	rnd    func() float64
	now    func() time.Time
	l      *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandom replaces the uniform [0,1) source.
func WithRandom(rnd func() float64) Option {
	return func(g *Generator) {
		g.rnd = rnd
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a generator anchored to prices returned by lookup.
func NewGenerator(l *zap.Logger, lookup PriceLookup, opts ...Option) *Generator {
	g := &Generator{
		lookup: lookup,
		rnd:    rand.Float64,
		now:    time.Now,
		l:      l,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns days*24 hourly points ending now, oldest first.
// Lookup failures are logged and the series falls back to DefaultBasePrice.
func (g *Generator) Generate(ctx context.Context, symbol string, days int) []domain.HistoryPoint {
	if days <= 0 {
		return []domain.HistoryPoint{}
	}

	base := g.basePrice(ctx, symbol)
	n := days * pointsPerDay
	end := g.now().UTC()
	drift := g.uniform(-driftAmplitude, driftAmplitude)
	floor := base * minPriceShare

	points := make([]domain.HistoryPoint, 0, n)
	prevDeviation := 0.0
	for i := 0; i < n; i++ {
		trend := 0.0
		if n > 1 {
			trend = drift * float64(i) / float64(n-1)
		}
		momentum := 0.0
		if i > 0 {
			momentum = momentumFactor * prevDeviation
		}

		deviation := g.uniform(-noiseAmplitude, noiseAmplitude) + trend + momentum
		price := base * (1 + deviation)
		if price < floor {
			price = floor
		}
		prevDeviation = deviation

		ts := end.Add(-time.Duration(n-1-i) * time.Hour)
		points = append(points, domain.NewHistoryPoint(ts, price))
	}

	return points
}

func (g *Generator) basePrice(ctx context.Context, symbol string) float64 {
	if g.lookup == nil {
		return DefaultBasePrice
	}

	record, err := g.lookup(ctx, symbol)
	if err != nil {
		g.l.Warn("failed to get current price for history, using default base",
			zap.String("symbol", symbol), zap.Error(err))
		return DefaultBasePrice
	}
	if record.Price <= 0 {
		return DefaultBasePrice
	}

	return record.Price
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rnd()
}
