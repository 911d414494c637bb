package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"go.uber.org/zap"
)

type mockPricer struct {
	records []domain.PriceRecord
	err     error
	calls   int
}

func (m *mockPricer) GetPrices(_ context.Context) ([]domain.PriceRecord, error) {
	m.calls++
	return m.records, m.err
}

type mockRecommender struct {
	mu      sync.Mutex
	symbols []string
	delay   func(symbol string) time.Duration
}

func (m *mockRecommender) Recommend(_ context.Context, price domain.PriceRecord) domain.Recommendation {
	if m.delay != nil {
		time.Sleep(m.delay(price.Symbol))
	}
	m.mu.Lock()
	m.symbols = append(m.symbols, price.Symbol)
	m.mu.Unlock()
	return domain.NewRecommendation(price.Symbol, domain.ActionBuy, domain.ConfidenceHigh, "ok", nil, time.Now())
}

func (m *mockRecommender) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.symbols)
}

type mockHistory struct {
	calls int
}

func (m *mockHistory) Generate(_ context.Context, symbol string, days int) []domain.HistoryPoint {
	m.calls++
	return make([]domain.HistoryPoint, days*24)
}

type mockStore struct {
	mu      sync.Mutex
	recs    []domain.Recommendation
	checks  []domain.StatusCheck
	saveErr error
	readErr error
}

func (m *mockStore) SaveRecommendation(_ context.Context, rec domain.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *mockStore) RecentRecommendations(_ context.Context, limit int) ([]domain.Recommendation, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if len(m.recs) < limit {
		limit = len(m.recs)
	}
	return m.recs[:limit], nil
}

func (m *mockStore) SaveStatusCheck(_ context.Context, check domain.StatusCheck) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.checks = append(m.checks, check)
	return nil
}

func (m *mockStore) StatusChecks(_ context.Context, limit int) ([]domain.StatusCheck, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.checks, nil
}

func snapshot(symbols ...string) []domain.PriceRecord {
	records := make([]domain.PriceRecord, 0, len(symbols))
	for i, s := range symbols {
		records = append(records, domain.PriceRecord{Symbol: s, Name: s, Price: float64(i + 1), PercentChange24h: 0.5})
	}
	return records
}

func TestCryptoService_Recommend(t *testing.T) {
	p := &mockPricer{records: snapshot("BTC", "ETH")}
	adv := &mockRecommender{}
	store := &mockStore{}
	svc := NewCryptoService(zap.NewNop(), p, adv, &mockHistory{}, store, 1)

	rec, err := svc.Recommend(context.Background(), "eth")
	require.NoError(t, err)

	assert.Equal(t, "ETH", rec.Symbol)
	require.Len(t, store.recs, 1)
	assert.Equal(t, rec.ID, store.recs[0].ID)
}

func TestCryptoService_RecommendUnsupportedSymbol(t *testing.T) {
	p := &mockPricer{records: snapshot("BTC")}
	adv := &mockRecommender{}
	svc := NewCryptoService(zap.NewNop(), p, adv, &mockHistory{}, &mockStore{}, 1)

	_, err := svc.Recommend(context.Background(), "FAKECOIN")

	assert.True(t, errors.Is(err, domain.ErrUnsupportedSymbol))
	assert.Zero(t, p.calls)
	assert.Zero(t, adv.calls())
}

func TestCryptoService_RecommendErrors(t *testing.T) {
	t.Run("supported symbol missing upstream", func(t *testing.T) {
		svc := NewCryptoService(zap.NewNop(), &mockPricer{records: snapshot("BTC")}, &mockRecommender{},
			&mockHistory{}, &mockStore{}, 1)

		_, err := svc.Recommend(context.Background(), "SOL")
		assert.True(t, errors.Is(err, domain.ErrPriceNotFound))
	})

	t.Run("price source down", func(t *testing.T) {
		adv := &mockRecommender{}
		svc := NewCryptoService(zap.NewNop(), &mockPricer{err: domain.ErrPriceSourceUnavailable}, adv,
			&mockHistory{}, &mockStore{}, 1)

		_, err := svc.Recommend(context.Background(), "BTC")
		assert.True(t, errors.Is(err, domain.ErrPriceSourceUnavailable))
		assert.Zero(t, adv.calls())
	})

	t.Run("store down", func(t *testing.T) {
		store := &mockStore{saveErr: errors.Wrap(domain.ErrStoreUnavailable, "insert")}
		svc := NewCryptoService(zap.NewNop(), &mockPricer{records: snapshot("BTC")}, &mockRecommender{},
			&mockHistory{}, store, 1)

		_, err := svc.Recommend(context.Background(), "BTC")
		assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	})
}

func TestCryptoService_Analyze(t *testing.T) {
	symbols := []string{"BTC", "ETH", "XRP", "BNB", "SOL"}

	for _, workers := range []int{1, 3} {
		p := &mockPricer{records: snapshot(symbols...)}
		adv := &mockRecommender{delay: func(symbol string) time.Duration {
			// later symbols finish first when run concurrently
			if symbol == "BTC" {
				return 20 * time.Millisecond
			}
			return 0
		}}
		store := &mockStore{}
		svc := NewCryptoService(zap.NewNop(), p, adv, &mockHistory{}, store, workers)

		analysis, err := svc.Analyze(context.Background())
		require.NoError(t, err)
		require.Len(t, analysis, len(symbols))

		for i, a := range analysis {
			assert.Equal(t, symbols[i], a.Symbol)
			assert.Equal(t, symbols[i], a.Recommendation.Symbol)
			assert.Equal(t, float64(i+1), a.CurrentPrice)
			assert.Equal(t, 0.5, a.PriceChange24h)
		}
		assert.Len(t, store.recs, len(symbols))
	}
}

func TestCryptoService_AnalyzeErrors(t *testing.T) {
	t.Run("price source down", func(t *testing.T) {
		svc := NewCryptoService(zap.NewNop(), &mockPricer{err: domain.ErrPriceSourceUnavailable},
			&mockRecommender{}, &mockHistory{}, &mockStore{}, 1)

		analysis, err := svc.Analyze(context.Background())
		assert.Nil(t, analysis)
		assert.True(t, errors.Is(err, domain.ErrPriceSourceUnavailable))
	})

	t.Run("store down", func(t *testing.T) {
		svc := NewCryptoService(zap.NewNop(), &mockPricer{records: snapshot("BTC", "ETH")},
			&mockRecommender{}, &mockHistory{}, &mockStore{saveErr: domain.ErrStoreUnavailable}, 2)

		analysis, err := svc.Analyze(context.Background())
		assert.Nil(t, analysis)
		assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	})
}

func TestCryptoService_History(t *testing.T) {
	p := &mockPricer{}
	h := &mockHistory{}
	svc := NewCryptoService(zap.NewNop(), p, &mockRecommender{}, h, &mockStore{}, 1)

	points, err := svc.History(context.Background(), "btc", 7)
	require.NoError(t, err)
	assert.Len(t, points, 168)

	_, err = svc.History(context.Background(), "NOPE", 7)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedSymbol))
	assert.Equal(t, 1, h.calls)
	assert.Zero(t, p.calls)
}

func TestCryptoService_StatusChecks(t *testing.T) {
	store := &mockStore{}
	svc := NewCryptoService(zap.NewNop(), &mockPricer{}, &mockRecommender{}, &mockHistory{}, store, 1)

	check, err := svc.CreateStatusCheck(context.Background(), "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "dashboard", check.ClientName)
	assert.NotEmpty(t, check.ID)

	checks, err := svc.StatusChecks(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, check.ID, checks[0].ID)
}
