package model

import "time"

// Bar represents a single OHLCV candlestick.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes extracts the closing prices from a bar series.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates formats the bar timestamps as YYYY-MM-DD axis labels.
func Dates(bars []Bar) []string {
	dates := make([]string, len(bars))
	for i, b := range bars {
		dates[i] = b.Time.Format("2006-01-02")
	}
	return dates
}
