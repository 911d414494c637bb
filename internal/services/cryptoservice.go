package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"github.com/vadiminshakov/cryptoadvisor/internal/services/pricer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryDays  = 7
	MaxHistoryDays      = 365
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

// Recommender produces a recommendation for one price snapshot and never fails.
type Recommender interface {
	Recommend(ctx context.Context, price domain.PriceRecord) domain.Recommendation
}

// HistoryGenerator builds a synthetic hourly series for a symbol.
type HistoryGenerator interface {
	Generate(ctx context.Context, symbol string, days int) []domain.HistoryPoint
}

type recommendationStore interface {
	SaveRecommendation(ctx context.Context, rec domain.Recommendation) error
	RecentRecommendations(ctx context.Context, limit int) ([]domain.Recommendation, error)
	SaveStatusCheck(ctx context.Context, check domain.StatusCheck) error
	StatusChecks(ctx context.Context, limit int) ([]domain.StatusCheck, error)
}

// CryptoService ties the price source, the advisor and the store together for one request.
type CryptoService struct {
	pricer  pricer.Pricer
	advisor Recommender
	history HistoryGenerator
	store   recommendationStore
	workers int
	l       *zap.Logger
}

// NewCryptoService creates a new CryptoService. workers bounds concurrent model calls during analysis.
func NewCryptoService(l *zap.Logger, p pricer.Pricer, advisor Recommender, history HistoryGenerator,
	store recommendationStore, workers int) *CryptoService {
	if workers <= 0 {
		workers = 1
	}
	return &CryptoService{
		pricer:  p,
		advisor: advisor,
		history: history,
		store:   store,
		workers: workers,
		l:       l,
	}
}

// Prices returns the current snapshot for all target symbols.
func (s *CryptoService) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	records, err := s.pricer.GetPrices(ctx)
	if err != nil {
		s.l.Error("failed to get prices", zap.String("operation", "prices"), zap.Error(err))
		return nil, err
	}
	return records, nil
}

// Recommend validates the symbol, asks the advisor and persists the result.
// An unsupported symbol is rejected before the price source or the model is touched.
func (s *CryptoService) Recommend(ctx context.Context, symbol string) (domain.Recommendation, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if !domain.IsSupportedSymbol(symbol) {
		return domain.Recommendation{}, errors.Wrapf(domain.ErrUnsupportedSymbol, "symbol %s", symbol)
	}

	price, err := pricer.GetPrice(ctx, s.pricer, symbol)
	if err != nil {
		s.l.Error("failed to get price", zap.String("operation", "recommend"),
			zap.String("symbol", symbol), zap.Error(err))
		return domain.Recommendation{}, err
	}

	rec := s.advisor.Recommend(ctx, price)
	if err := s.save(ctx, "recommend", rec); err != nil {
		return domain.Recommendation{}, err
	}

	return rec, nil
}

// Analyze produces and persists a recommendation for every symbol in the current snapshot.
// Results keep snapshot order regardless of the worker count.
func (s *CryptoService) Analyze(ctx context.Context) ([]domain.MarketAnalysis, error) {
	prices, err := s.pricer.GetPrices(ctx)
	if err != nil {
		s.l.Error("failed to get prices", zap.String("operation", "analysis"), zap.Error(err))
		return nil, err
	}

	results := make([]domain.MarketAnalysis, len(prices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, price := range prices {
		g.Go(func() error {
			rec := s.advisor.Recommend(gctx, price)
			if err := s.save(gctx, "analysis", rec); err != nil {
				return err
			}
			results[i] = domain.NewMarketAnalysis(price, rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// History returns days*24 synthetic hourly points for a supported symbol.
func (s *CryptoService) History(ctx context.Context, symbol string, days int) ([]domain.HistoryPoint, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if !domain.IsSupportedSymbol(symbol) {
		return nil, errors.Wrapf(domain.ErrUnsupportedSymbol, "symbol %s", symbol)
	}

	return s.history.Generate(ctx, symbol, days), nil
}

// RecommendationHistory returns up to limit stored recommendations, newest first.
func (s *CryptoService) RecommendationHistory(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	recs, err := s.store.RecentRecommendations(ctx, limit)
	if err != nil {
		s.l.Error("failed to read recommendations", zap.String("operation", "recommendation_history"), zap.Error(err))
		return nil, err
	}
	return recs, nil
}

// CreateStatusCheck records a liveness ping from clientName.
func (s *CryptoService) CreateStatusCheck(ctx context.Context, clientName string) (domain.StatusCheck, error) {
	check := domain.NewStatusCheck(clientName)
	if err := s.store.SaveStatusCheck(ctx, check); err != nil {
		s.l.Error("failed to save status check", zap.String("operation", "status"), zap.Error(err))
		return domain.StatusCheck{}, err
	}
	return check, nil
}

// StatusChecks lists recorded status checks, newest first.
func (s *CryptoService) StatusChecks(ctx context.Context, limit int) ([]domain.StatusCheck, error) {
	checks, err := s.store.StatusChecks(ctx, limit)
	if err != nil {
		s.l.Error("failed to read status checks", zap.String("operation", "status"), zap.Error(err))
		return nil, err
	}
	return checks, nil
}

func (s *CryptoService) save(ctx context.Context, operation string, rec domain.Recommendation) error {
	if err := s.store.SaveRecommendation(ctx, rec); err != nil {
		s.l.Error("failed to save recommendation", zap.String("operation", operation),
			zap.String("symbol", rec.Symbol), zap.Error(err))
		return err
	}
	return nil
}
