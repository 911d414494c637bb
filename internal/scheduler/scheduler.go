// Package scheduler runs the multi-symbol analysis on a cron schedule.
package scheduler

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"go.uber.org/zap"
)

type analyzer interface {
	Analyze(ctx context.Context) ([]domain.MarketAnalysis, error)
}

// Scheduler triggers Analyze periodically so recommendation history grows without client traffic.
type Scheduler struct {
	cron     *cron.Cron
	analyzer analyzer
	l        *zap.Logger

	mu     sync.Mutex
	runCtx context.Context
}

// New registers the analysis job. expr accepts standard 5-field expressions and descriptors like "@every 6h".
func New(l *zap.Logger, expr string, a analyzer) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		analyzer: a,
		l:        l,
		runCtx:   context.Background(),
	}

	if _, err := s.cron.AddFunc(expr, s.RunNow); err != nil {
		return nil, errors.Wrapf(err, "invalid analysis schedule %q", expr)
	}

	return s, nil
}

// Start runs the cron loop until ctx is cancelled. Jobs run under ctx, so cancelling it
// also aborts an analysis pass in flight.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.l.Info("analysis scheduler started")

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.l.Info("analysis scheduler stopped")
}

// RunNow executes one analysis pass immediately.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()

	analysis, err := s.analyzer.Analyze(ctx)
	if err != nil {
		s.l.Error("scheduled analysis failed", zap.String("operation", "scheduled_analysis"), zap.Error(err))
		return
	}

	counts := map[domain.Action]int{}
	for _, a := range analysis {
		counts[a.Recommendation.Action]++
	}
	s.l.Info("scheduled analysis completed",
		zap.Int("symbols", len(analysis)),
		zap.Int("buy", counts[domain.ActionBuy]),
		zap.Int("hold", counts[domain.ActionHold]),
		zap.Int("sell", counts[domain.ActionSell]))
}
