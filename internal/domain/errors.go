package domain

import "github.com/pkg/errors"

var (
	// ErrUnsupportedSymbol symbol is outside of TargetSymbols.
	ErrUnsupportedSymbol = errors.New("cryptocurrency not supported")
	// ErrPriceNotFound the price source returned no record for a supported symbol.
	ErrPriceNotFound = errors.New("price data not found")
	// ErrPriceSourceUnavailable the upstream quote API failed or is not configured.
	ErrPriceSourceUnavailable = errors.New("price source unavailable")
	// ErrStoreUnavailable the persistence backend failed.
	ErrStoreUnavailable = errors.New("store unavailable")
)
