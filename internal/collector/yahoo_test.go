package collector

import (
	"testing"
	"time"
)

func TestYahooInterval(t *testing.T) {
	cases := map[Interval]string{
		Interval1Day:   "1d",
		Interval1Week:  "1wk",
		Interval1Month: "1mo",
		Interval1Hour:  "1h",
	}
	for in, want := range cases {
		if got := yahooInterval(in); got != want {
			t.Errorf("yahooInterval(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestYahooRange(t *testing.T) {
	cases := []struct {
		lookback time.Duration
		want     string
	}{
		{20 * 24 * time.Hour, "1mo"},
		{90 * 24 * time.Hour, "3mo"},
		{300 * 24 * time.Hour, "1y"},
		{500 * 24 * time.Hour, "2y"},
	}
	for _, tc := range cases {
		if got := yahooRange(tc.lookback); got != tc.want {
			t.Errorf("yahooRange(%v) = %q, want %q", tc.lookback, got, tc.want)
		}
	}
}

func TestMockFetcher(t *testing.T) {
	m := &MockFetcher{Price: 100}
	bars, err := m.FetchBars("TSLA", 0, Interval1Day, 30)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 30 {
		t.Fatalf("got %d bars, want 30", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Time.Before(bars[i].Time) {
			t.Fatal("bars must be ordered ascending by time")
		}
	}
}
