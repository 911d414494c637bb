package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Line labels of the reply format the analysis prompt asks the model for.
// Changing them breaks parsing of model replies.
const (
	LabelRecommendation = "RECOMMENDATION:"
	LabelConfidence     = "CONFIDENCE:"
	LabelReasoning      = "REASONING:"
	LabelPriceTarget    = "PRICE_TARGET:"
)

// ReplyFields values extracted from a model reply. Nil means the line was absent.
// Recommendation and Confidence hold the raw text, validation happens in Resolve.
type ReplyFields struct {
	Recommendation *string
	Confidence     *string
	Reasoning      *string
	PriceTarget    *float64
}

// ParseReply extracts label-prefixed lines from a model reply.
// Only text on the same line as a label is captured; later duplicates win.
func ParseReply(reply string) ReplyFields {
	var fields ReplyFields

	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		switch {
		case strings.HasPrefix(line, LabelRecommendation):
			v := valueAfterColon(line)
			fields.Recommendation = &v
		case strings.HasPrefix(line, LabelConfidence):
			v := valueAfterColon(line)
			fields.Confidence = &v
		case strings.HasPrefix(line, LabelReasoning):
			v := valueAfterColon(line)
			fields.Reasoning = &v
		case strings.HasPrefix(line, LabelPriceTarget):
			fields.PriceTarget = parsePriceTarget(valueAfterColon(line))
		}
	}

	return fields
}

func valueAfterColon(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}

// parsePriceTarget returns nil for NONE and for anything that is not a number.
func parsePriceTarget(raw string) *float64 {
	if strings.EqualFold(raw, "NONE") {
		return nil
	}

	cleaned := strings.NewReplacer("$", "", ",", "").Replace(raw)
	target, err := decimal.NewFromString(strings.TrimSpace(cleaned))
	if err != nil {
		return nil
	}

	v := target.InexactFloat64()
	return &v
}

// Resolve turns parsed fields into a Recommendation, applying defaults
// (HOLD, MEDIUM, "Analysis pending", no target) for absent or unusable values.
func (f ReplyFields) Resolve(symbol string, now time.Time) Recommendation {
	action := ActionHold
	if f.Recommendation != nil {
		if a, ok := ParseAction(*f.Recommendation); ok {
			action = a
		}
	}

	confidence := ConfidenceMedium
	if f.Confidence != nil {
		if c, ok := ParseConfidence(*f.Confidence); ok {
			confidence = c
		}
	}

	reasoning := DefaultReasoning
	if f.Reasoning != nil && *f.Reasoning != "" {
		reasoning = *f.Reasoning
	}

	var target *float64
	if f.PriceTarget != nil && *f.PriceTarget > 0 {
		v := *f.PriceTarget
		target = &v
	}

	return NewRecommendation(symbol, action, confidence, reasoning, target, now)
}

// Complete reports whether the reply carried the action, confidence and reasoning lines.
func (f ReplyFields) Complete() bool {
	return f.Recommendation != nil && f.Confidence != nil && f.Reasoning != nil
}
