package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(zap.NewNop(), filepath.Join(t.TempDir(), "advisor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestStore_RecentRecommendations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	target := 3900.5
	for i := 0; i < 6; i++ {
		var pt *float64
		if i%2 == 0 {
			pt = &target
		}
		rec := domain.NewRecommendation("ETH", domain.ActionSell, domain.ConfidenceLow, "r", pt,
			base.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, s.SaveRecommendation(ctx, rec))
	}

	recs, err := s.RecentRecommendations(ctx, 4)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	for i := 1; i < len(recs); i++ {
		assert.True(t, recs[i-1].CreatedAt.After(recs[i].CreatedAt))
	}
	assert.True(t, recs[0].CreatedAt.Equal(base.Add(5*time.Millisecond)))
	assert.Nil(t, recs[0].PriceTarget)
	require.NotNil(t, recs[1].PriceTarget)
	assert.Equal(t, target, *recs[1].PriceTarget)
	assert.Equal(t, domain.ActionSell, recs[0].Action)
	assert.Equal(t, domain.ConfidenceLow, recs[0].Confidence)
}

func TestStore_StatusChecks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := domain.NewStatusCheck("a")
	second := domain.NewStatusCheck("b")
	second.Timestamp = first.Timestamp.Add(time.Second)
	require.NoError(t, s.SaveStatusCheck(ctx, first))
	require.NoError(t, s.SaveStatusCheck(ctx, second))

	checks, err := s.StatusChecks(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, "b", checks[0].ClientName)
	assert.Equal(t, "a", checks[1].ClientName)
}

func TestStore_ClosedIsStoreError(t *testing.T) {
	s, err := New(zap.NewNop(), filepath.Join(t.TempDir(), "advisor.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	_, err = s.RecentRecommendations(context.Background(), 10)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
