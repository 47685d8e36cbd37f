package collector

import (
	"time"

	"StockSentry/internal/model"
)

// Interval is the bar granularity understood by the data sources.
type Interval string

const (
	Interval1Min   Interval = "1Min"
	Interval5Min   Interval = "5Min"
	Interval15Min  Interval = "15Min"
	Interval30Min  Interval = "30Min"
	Interval1Hour  Interval = "1Hour"
	Interval1Day   Interval = "1Day"
	Interval1Week  Interval = "1Week"
	Interval1Month Interval = "1Month"
)

// Fetcher defines the interface for fetching per-symbol market data.
// Implementations return bars ordered ascending by time, at most limit of
// them, covering up to lookback before now. An empty slice is a valid
// result for symbols without data.
type Fetcher interface {
	FetchBars(symbol string, lookback time.Duration, interval Interval, limit int) ([]model.Bar, error)
	Name() string
}
