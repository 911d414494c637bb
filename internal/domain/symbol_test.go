package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTargetSymbols(t *testing.T) {
	assert.Len(t, TargetSymbols, 15)

	seen := make(map[string]bool)
	for _, s := range TargetSymbols {
		assert.False(t, seen[s], "duplicate symbol %s", s)
		seen[s] = true
		assert.Equal(t, NormalizeSymbol(s), s)
	}
}

func TestIsSupportedSymbol(t *testing.T) {
	assert.True(t, IsSupportedSymbol("BTC"))
	assert.True(t, IsSupportedSymbol(NormalizeSymbol(" hype ")))
	assert.False(t, IsSupportedSymbol("btc"))
	assert.False(t, IsSupportedSymbol("SHIB"))
	assert.False(t, IsSupportedSymbol(""))
}

func TestNewHistoryPoint(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 678_900_000, time.UTC)

	p := NewHistoryPoint(ts, 42.5)

	assert.Equal(t, ts.UnixMilli(), p.Timestamp)
	assert.Equal(t, "2026-01-02T03:04:05.678Z", p.Date)
	assert.Equal(t, 42.5, p.Price)
}
