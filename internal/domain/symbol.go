// Package domain defines core data structures used throughout the crypto advisor.
package domain

import "strings"

// TargetSymbols ordered list of tickers the advisor recognizes.
var TargetSymbols = []string{
	"BTC", "ETH", "XRP", "BNB", "SOL",
	"DOGE", "TRX", "ADA", "HYPE", "LINK",
	"XLM", "BCH", "HBAR", "AVAX", "LTC",
}

// NormalizeSymbol upper-cases and trims a ticker received from a client.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// IsSupportedSymbol reports whether the already normalized symbol is in the allow-list.
func IsSupportedSymbol(symbol string) bool {
	for _, s := range TargetSymbols {
		if s == symbol {
			return true
		}
	}
	return false
}
