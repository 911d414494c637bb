// Package pricer provides the interchangeable price sources of the advisor.
package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
)

// Pricer returns one record per target symbol available upstream, in target-symbol order.
type Pricer interface {
	GetPrices(ctx context.Context) ([]domain.PriceRecord, error)
}

// FindPrice picks the record for symbol out of a snapshot.
func FindPrice(records []domain.PriceRecord, symbol string) (domain.PriceRecord, error) {
	for _, r := range records {
		if r.Symbol == symbol {
			return r, nil
		}
	}
	return domain.PriceRecord{}, errors.Wrapf(domain.ErrPriceNotFound, "symbol %s", symbol)
}

// GetPrice fetches a full snapshot and returns the record for symbol.
func GetPrice(ctx context.Context, p Pricer, symbol string) (domain.PriceRecord, error) {
	records, err := p.GetPrices(ctx)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	return FindPrice(records, symbol)
}
