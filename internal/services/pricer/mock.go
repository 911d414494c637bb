package pricer

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
)

// Jitter bounds applied on every MockPricer call.
const (
	MockPriceJitter      = 0.02
	MockChangeJitter     = 0.5
	MockMarketCapMinMult = 0.95
	MockMarketCapMaxMult = 1.05
	MockVolumeMinShare   = 0.02
	MockVolumeMaxShare   = 0.08
)

type baseline struct {
	id     string
	name   string
	price  float64
	change float64
	supply float64
}

var mockBaselines = map[string]baseline{
	"BTC":  {id: "1", name: "Bitcoin", price: 67000, change: 1.2, supply: 19_700_000},
	"ETH":  {id: "1027", name: "Ethereum", price: 3500, change: 0.8, supply: 120_000_000},
	"XRP":  {id: "52", name: "XRP", price: 0.52, change: -0.4, supply: 55_000_000_000},
	"BNB":  {id: "1839", name: "BNB", price: 580, change: 0.3, supply: 146_000_000},
	"SOL":  {id: "5426", name: "Solana", price: 150, change: 2.1, supply: 465_000_000},
	"DOGE": {id: "74", name: "Dogecoin", price: 0.15, change: -1.1, supply: 145_000_000_000},
	"TRX":  {id: "1958", name: "TRON", price: 0.12, change: 0.2, supply: 87_000_000_000},
	"ADA":  {id: "2010", name: "Cardano", price: 0.45, change: -0.7, supply: 35_000_000_000},
	"HYPE": {id: "32196", name: "Hyperliquid", price: 25, change: 3.4, supply: 334_000_000},
	"LINK": {id: "1975", name: "Chainlink", price: 14, change: 1.5, supply: 608_000_000},
	"XLM":  {id: "512", name: "Stellar", price: 0.1, change: -0.2, supply: 29_000_000_000},
	"BCH":  {id: "1831", name: "Bitcoin Cash", price: 380, change: 0.6, supply: 19_700_000},
	"HBAR": {id: "4642", name: "Hedera", price: 0.07, change: -0.9, supply: 35_000_000_000},
	"AVAX": {id: "5805", name: "Avalanche", price: 28, change: 1.8, supply: 393_000_000},
	"LTC":  {id: "2", name: "Litecoin", price: 72, change: -0.5, supply: 74_000_000},
}

// MockPricer generates plausible, non-reproducible quotes without any network access.
type MockPricer struct {
	symbols []string
	rnd     func() float64
	now     func() time.Time
}

// MockOption configures a MockPricer.
type MockOption func(*MockPricer)

// WithRandom replaces the uniform [0,1) source, useful for deterministic tests.
func WithRandom(rnd func() float64) MockOption {
	return func(p *MockPricer) {
		p.rnd = rnd
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) MockOption {
	return func(p *MockPricer) {
		p.now = now
	}
}

// NewMockPricer creates a mock pricer for the given symbols. Symbols without a baseline are skipped.
func NewMockPricer(symbols []string, opts ...MockOption) *MockPricer {
	p := &MockPricer{
		symbols: symbols,
		rnd:     rand.Float64,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetPrices implements Pricer. Every call re-randomizes all values.
func (p *MockPricer) GetPrices(_ context.Context) ([]domain.PriceRecord, error) {
	now := p.now().UTC()

	records := make([]domain.PriceRecord, 0, len(p.symbols))
	for _, symbol := range p.symbols {
		base, ok := mockBaselines[symbol]
		if !ok {
			continue
		}

		price := base.price * (1 + p.uniform(-MockPriceJitter, MockPriceJitter))
		marketCap := price * base.supply * p.uniform(MockMarketCapMinMult, MockMarketCapMaxMult)

		records = append(records, domain.PriceRecord{
			ID:               base.id,
			Symbol:           symbol,
			Name:             base.name,
			Price:            price,
			PercentChange24h: base.change + p.uniform(-MockChangeJitter, MockChangeJitter),
			MarketCap:        marketCap,
			Volume24h:        marketCap * p.uniform(MockVolumeMinShare, MockVolumeMaxShare),
			LastUpdated:      now,
		})
	}

	return records, nil
}

func (p *MockPricer) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*p.rnd()
}
