package domain

import "time"

// PriceRecord current market snapshot for a single cryptocurrency.
type PriceRecord struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	PercentChange24h float64   `json:"percent_change_24h"`
	MarketCap        float64   `json:"market_cap"`
	Volume24h        float64   `json:"volume_24h"`
	LastUpdated      time.Time `json:"last_updated"`
}

// HistoryPoint single synthetic price observation.
type HistoryPoint struct {
	// Timestamp milliseconds since epoch.
	Timestamp int64   `json:"timestamp"`
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
}

// historyDateLayout ISO-8601 in UTC with millisecond precision.
const historyDateLayout = "2006-01-02T15:04:05.000Z"

// NewHistoryPoint derives the date string from the timestamp so both always agree.
func NewHistoryPoint(ts time.Time, price float64) HistoryPoint {
	ms := ts.UnixMilli()
	return HistoryPoint{
		Timestamp: ms,
		Date:      time.UnixMilli(ms).UTC().Format(historyDateLayout),
		Price:     price,
	}
}
