package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
)

const (
	// DefaultCoinMarketCapURL public pro API root.
	DefaultCoinMarketCapURL = "https://pro-api.coinmarketcap.com/v1"

	quotesLatestPath = "/cryptocurrency/quotes/latest"
	defaultTimeout   = 30 * time.Second
)

// CoinMarketCapPricer fetches live quotes for all target symbols in one batched request.
type CoinMarketCapPricer struct {
	baseURL    string
	apiKey     string
	symbols    []string
	httpClient *http.Client
}

// NewCoinMarketCapPricer creates a live pricer. An empty baseURL uses DefaultCoinMarketCapURL.
func NewCoinMarketCapPricer(baseURL, apiKey string, symbols []string, timeout time.Duration) *CoinMarketCapPricer {
	if baseURL == "" {
		baseURL = DefaultCoinMarketCapURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CoinMarketCapPricer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		symbols:    symbols,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type quotesResponse struct {
	Data map[string]quoteEntry `json:"data"`
}

type quoteEntry struct {
	ID     json.Number         `json:"id"`
	Symbol string              `json:"symbol"`
	Name   string              `json:"name"`
	Quote  map[string]usdQuote `json:"quote"`
}

// usdQuote nullable upstream numbers, nil is treated as zero.
type usdQuote struct {
	Price            *float64 `json:"price"`
	PercentChange24h *float64 `json:"percent_change_24h"`
	MarketCap        *float64 `json:"market_cap"`
	Volume24h        *float64 `json:"volume_24h"`
	LastUpdated      string   `json:"last_updated"`
}

// GetPrices implements Pricer.
func (p *CoinMarketCapPricer) GetPrices(ctx context.Context) ([]domain.PriceRecord, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(domain.ErrPriceSourceUnavailable, "CoinMarketCap API key not configured")
	}

	query := url.Values{}
	query.Set("symbol", strings.Join(p.symbols, ","))
	query.Set("convert", "USD")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+quotesLatestPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accepts", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(domain.ErrPriceSourceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(domain.ErrPriceSourceUnavailable, "failed to read response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Wrap(domain.ErrPriceSourceUnavailable,
			fmt.Sprintf("CoinMarketCap API returned status %d", resp.StatusCode))
	}

	var quotes quotesResponse
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, errors.Wrap(domain.ErrPriceSourceUnavailable, "failed to unmarshal quotes: "+err.Error())
	}

	records := make([]domain.PriceRecord, 0, len(p.symbols))
	for _, symbol := range p.symbols {
		entry, ok := quotes.Data[symbol]
		if !ok {
			continue
		}
		records = append(records, entry.toRecord(symbol))
	}

	return records, nil
}

func (e quoteEntry) toRecord(requested string) domain.PriceRecord {
	usd := e.Quote["USD"]

	symbol := e.Symbol
	if symbol == "" {
		symbol = requested
	}

	return domain.PriceRecord{
		ID:               e.ID.String(),
		Symbol:           symbol,
		Name:             e.Name,
		Price:            orZero(usd.Price),
		PercentChange24h: orZero(usd.PercentChange24h),
		MarketCap:        orZero(usd.MarketCap),
		Volume24h:        orZero(usd.Volume24h),
		LastUpdated:      parseUpdated(usd.LastUpdated),
	}
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// parseUpdated normalizes upstream timestamps to UTC, unknown formats map to now.
func parseUpdated(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t.UTC()
}
