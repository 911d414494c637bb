// Package promptbuilder renders the analysis prompt sent to the LLM for a single cryptocurrency.
// The reply format it requests is parsed by domain.ParseReply, the two must change together.
package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
)

// BuildUserPrompt constructs the analysis prompt for one price record.
// Output depends only on the record, equal records produce equal prompts.
func BuildUserPrompt(price domain.PriceRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("As a crypto investment analyst, analyze %s (%s) and provide a recommendation.\n\n",
		price.Name, price.Symbol))

	sb.WriteString("Current Data:\n")
	sb.WriteString(fmt.Sprintf("- Price: $%s\n", decimal.NewFromFloat(price.Price).StringFixed(4)))
	sb.WriteString(fmt.Sprintf("- 24h Change: %s%%\n", decimal.NewFromFloat(price.PercentChange24h).StringFixed(2)))
	sb.WriteString(fmt.Sprintf("- Market Cap: $%s\n", thousands(price.MarketCap)))
	sb.WriteString(fmt.Sprintf("- 24h Volume: $%s\n\n", thousands(price.Volume24h)))

	sb.WriteString("Please provide:\n")
	sb.WriteString("1. Recommendation (BUY/HOLD/SELL)\n")
	sb.WriteString("2. Confidence level (HIGH/MEDIUM/LOW)\n")
	sb.WriteString("3. Brief reasoning (2-3 sentences)\n")
	sb.WriteString("4. Price target for next 7 days (optional)\n\n")

	sb.WriteString("Format your response as:\n")
	sb.WriteString(domain.LabelRecommendation + " [BUY/HOLD/SELL]\n")
	sb.WriteString(domain.LabelConfidence + " [HIGH/MEDIUM/LOW]\n")
	sb.WriteString(domain.LabelReasoning + " [Your analysis]\n")
	sb.WriteString(domain.LabelPriceTarget + " [Dollar amount or NONE]\n\n")

	sb.WriteString("Consider market trends, technical indicators, and risk factors. Always include risk disclaimers.\n")

	return sb.String()
}

// thousands formats v as a rounded integer with comma separators.
func thousands(v float64) string {
	return humanize.Comma(decimal.NewFromFloat(v).Round(0).IntPart())
}
