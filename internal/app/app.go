// Package app wires configuration into the process-scoped clients, stores and services.
package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/config"
	"github.com/vadiminshakov/cryptoadvisor/internal/clients"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"github.com/vadiminshakov/cryptoadvisor/internal/scheduler"
	"github.com/vadiminshakov/cryptoadvisor/internal/services"
	"github.com/vadiminshakov/cryptoadvisor/internal/services/advisor"
	"github.com/vadiminshakov/cryptoadvisor/internal/services/history"
	"github.com/vadiminshakov/cryptoadvisor/internal/services/pricer"
	"github.com/vadiminshakov/cryptoadvisor/internal/storage"
	"github.com/vadiminshakov/cryptoadvisor/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App holds everything constructed once at startup.
type App struct {
	Config  config.Config
	Service *services.CryptoService
	Store   storage.Store
	l       *zap.Logger
}

// NewPricer returns the price source selected by cfg.PriceSource.
func NewPricer(cfg config.Config) pricer.Pricer {
	if cfg.PriceSource == config.PriceSourceMock {
		return pricer.NewMockPricer(domain.TargetSymbols)
	}
	return pricer.NewCoinMarketCapPricer(cfg.CMC.URL, cfg.CMC.APIKey, domain.TargetSymbols, cfg.CMC.Timeout)
}

// NewHistoryGenerator returns a generator anchored to prices from p.
func NewHistoryGenerator(l *zap.Logger, p pricer.Pricer) *history.Generator {
	return history.NewGenerator(l, func(ctx context.Context, symbol string) (domain.PriceRecord, error) {
		return pricer.GetPrice(ctx, p, symbol)
	})
}

// New connects the store and builds the service graph.
func New(ctx context.Context, cfg config.Config, l *zap.Logger) (*App, error) {
	store, err := storage.Open(ctx, l, cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open storage")
	}

	if cfg.LLM.APIKey == "" {
		l.Warn("LLM API key is not set, every recommendation will be the fallback")
	}
	llm := clients.NewOpenAICompatibleClient(cfg.LLM.APIURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
	l.Info("advisor configured",
		zap.String("model", llm.Model()),
		zap.String("price_source", cfg.PriceSource),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("cors_any_origin", cfg.AllowsAnyOrigin()))

	p := NewPricer(cfg)
	svc := services.NewCryptoService(
		l,
		p,
		advisor.NewAdvisor(l, llm),
		NewHistoryGenerator(l, p),
		store,
		cfg.AnalysisWorkers,
	)

	return &App{
		Config:  cfg,
		Service: svc,
		Store:   store,
		l:       l,
	}, nil
}

// Run serves HTTP and, when configured, the analysis scheduler until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	server := web.NewServer(a.l, a.Config.HTTPAddr, a.Service, a.Config.CORSOrigins)

	var sched *scheduler.Scheduler
	if a.Config.AnalysisSchedule != "" {
		var err error
		sched, err = scheduler.New(a.l, a.Config.AnalysisSchedule, a.Service)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	if sched != nil {
		g.Go(func() error {
			sched.Start(gctx)
			return nil
		})
	}

	return g.Wait()
}

// Close releases the store.
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}
