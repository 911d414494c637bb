package pricer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
)

func constRandom(v float64) func() float64 {
	return func() float64 { return v }
}

func TestMockPricer_Shape(t *testing.T) {
	p := NewMockPricer(domain.TargetSymbols)

	records, err := p.GetPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, records, len(domain.TargetSymbols))

	for i, r := range records {
		base := mockBaselines[r.Symbol]

		assert.Equal(t, domain.TargetSymbols[i], r.Symbol)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.ID)
		assert.Greater(t, r.Price, 0.0)
		assert.GreaterOrEqual(t, r.Price, base.price*(1-MockPriceJitter))
		assert.LessOrEqual(t, r.Price, base.price*(1+MockPriceJitter))
		assert.GreaterOrEqual(t, r.PercentChange24h, base.change-MockChangeJitter)
		assert.LessOrEqual(t, r.PercentChange24h, base.change+MockChangeJitter)
		assert.GreaterOrEqual(t, r.MarketCap, 0.0)
		assert.GreaterOrEqual(t, r.Volume24h, 0.0)
		assert.Equal(t, time.UTC, r.LastUpdated.Location())
	}
}

func TestMockPricer_Bounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	low := NewMockPricer([]string{"BTC"}, WithRandom(constRandom(0)), WithClock(func() time.Time { return now }))
	records, err := low.GetPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	btc := mockBaselines["BTC"]
	lowPrice := btc.price * (1 - MockPriceJitter)
	assert.InDelta(t, lowPrice, records[0].Price, 1e-6)
	assert.InDelta(t, btc.change-MockChangeJitter, records[0].PercentChange24h, 1e-9)
	assert.InDelta(t, lowPrice*btc.supply*MockMarketCapMinMult, records[0].MarketCap, 1)
	assert.InDelta(t, records[0].MarketCap*MockVolumeMinShare, records[0].Volume24h, 1)
	assert.Equal(t, now, records[0].LastUpdated)

	mid := NewMockPricer([]string{"BTC"}, WithRandom(constRandom(0.5)))
	records, err = mid.GetPrices(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, btc.price, records[0].Price, 1e-6)
	assert.InDelta(t, btc.change, records[0].PercentChange24h, 1e-9)
}

func TestMockPricer_RerandomizesEveryCall(t *testing.T) {
	values := []float64{0.1, 0.9}
	call := 0
	rnd := func() float64 {
		v := values[(call/4)%2]
		call++
		return v
	}

	p := NewMockPricer([]string{"ETH"}, WithRandom(rnd))
	first, err := p.GetPrices(context.Background())
	require.NoError(t, err)
	second, err := p.GetPrices(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first[0].Price, second[0].Price)
}

func TestMockPricer_SkipsUnknownSymbols(t *testing.T) {
	p := NewMockPricer([]string{"BTC", "UNKNOWN"})

	records, err := p.GetPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BTC", records[0].Symbol)
}
