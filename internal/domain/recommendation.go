package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action investment verdict.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionHold Action = "HOLD"
	ActionSell Action = "SELL"
)

// Confidence how sure the analyst is about the verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

const (
	// DefaultReasoning used when the model reply carries no REASONING line.
	DefaultReasoning = "Analysis pending"
	// FallbackReasoning used when the model could not be reached or answered unusably.
	FallbackReasoning = "Unable to generate analysis due to technical error. Please try again later."
)

// ParseAction maps free text onto an Action.
func ParseAction(s string) (Action, bool) {
	switch Action(normalizeEnum(s)) {
	case ActionBuy:
		return ActionBuy, true
	case ActionHold:
		return ActionHold, true
	case ActionSell:
		return ActionSell, true
	}
	return "", false
}

// ParseConfidence maps free text onto a Confidence.
func ParseConfidence(s string) (Confidence, bool) {
	switch Confidence(normalizeEnum(s)) {
	case ConfidenceHigh:
		return ConfidenceHigh, true
	case ConfidenceMedium:
		return ConfidenceMedium, true
	case ConfidenceLow:
		return ConfidenceLow, true
	}
	return "", false
}

// normalizeEnum tolerates the decorations models like to add, e.g. "[BUY]" or "**buy**".
func normalizeEnum(s string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(s), "[]*`'\". "))
}

// Recommendation AI verdict for one symbol at one point in time.
type Recommendation struct {
	ID          string     `json:"id" bson:"id"`
	Symbol      string     `json:"symbol" bson:"symbol"`
	Action      Action     `json:"recommendation" bson:"recommendation"`
	Confidence  Confidence `json:"confidence" bson:"confidence"`
	Reasoning   string     `json:"reasoning" bson:"reasoning"`
	PriceTarget *float64   `json:"price_target" bson:"price_target"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// NewRecommendation creates a recommendation with a fresh id.
func NewRecommendation(symbol string, action Action, confidence Confidence, reasoning string, priceTarget *float64, createdAt time.Time) Recommendation {
	return Recommendation{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		Action:      action,
		Confidence:  confidence,
		Reasoning:   reasoning,
		PriceTarget: priceTarget,
		CreatedAt:   createdAt.UTC(),
	}
}

// NewFallbackRecommendation safe verdict returned when the model pipeline fails.
func NewFallbackRecommendation(symbol string, createdAt time.Time) Recommendation {
	return NewRecommendation(symbol, ActionHold, ConfidenceLow, FallbackReasoning, nil, createdAt)
}

// MarketAnalysis price snapshot with the recommendation produced for it.
type MarketAnalysis struct {
	Symbol         string         `json:"symbol"`
	CurrentPrice   float64        `json:"current_price"`
	PriceChange24h float64        `json:"price_change_24h"`
	Recommendation Recommendation `json:"recommendation"`
}

// NewMarketAnalysis combines a price record and its recommendation.
func NewMarketAnalysis(price PriceRecord, rec Recommendation) MarketAnalysis {
	return MarketAnalysis{
		Symbol:         price.Symbol,
		CurrentPrice:   price.Price,
		PriceChange24h: price.PercentChange24h,
		Recommendation: rec,
	}
}
