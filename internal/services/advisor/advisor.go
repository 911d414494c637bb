// Package advisor turns a price snapshot into a BUY/HOLD/SELL recommendation using an LLM.
package advisor

import (
	"context"
	"time"

	"github.com/vadiminshakov/cryptoadvisor/internal/clients"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"github.com/vadiminshakov/cryptoadvisor/internal/services/promptbuilder"
	"go.uber.org/zap"
)

// Advisor runs the prompt, invoke, parse pipeline for one symbol at a time.
// Every call opens an independent chat, nothing is shared between symbols.
type Advisor struct {
	llm clients.LLMClient
	l   *zap.Logger
	now func() time.Time
}

// NewAdvisor creates a new Advisor.
func NewAdvisor(l *zap.Logger, llm clients.LLMClient) *Advisor {
	return &Advisor{
		llm: llm,
		l:   l,
		now: time.Now,
	}
}

// Recommend never fails: model errors are logged and converted into the fallback recommendation.
func (a *Advisor) Recommend(ctx context.Context, price domain.PriceRecord) domain.Recommendation {
	l := a.l.With(zap.String("symbol", price.Symbol))

	prompt := promptbuilder.BuildUserPrompt(price)
	l.Debug("recommendation pipeline", zap.String("stage", "prompt_built"), zap.Int("prompt_len", len(prompt)))

	reply, err := a.llm.Chat(ctx, promptbuilder.SystemPrompt, prompt)
	if err != nil {
		l.Error("failed to get recommendation from LLM", zap.String("stage", "invocation_failed"), zap.Error(err))
		return domain.NewFallbackRecommendation(price.Symbol, a.now())
	}
	l.Debug("recommendation pipeline", zap.String("stage", "model_invoked"), zap.Int("reply_len", len(reply)))

	fields := domain.ParseReply(reply)
	rec := fields.Resolve(price.Symbol, a.now())

	stage := "parsed"
	if !fields.Complete() {
		stage = "parse_defaulted"
	}
	l.Debug("recommendation pipeline",
		zap.String("stage", stage),
		zap.String("recommendation", string(rec.Action)),
		zap.String("confidence", string(rec.Confidence)))

	return rec
}
