package chart

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Render failure modes. Both produce zero bytes.
var (
	ErrEmptyInput     = errors.New("chart: empty price series")
	ErrLengthMismatch = errors.New("chart: series length mismatch")
)

// Lookback is the number of most-recent points shown on a chart,
// independent of the evaluation window.
const Lookback = 90

const (
	chartWidth  = 1200
	chartHeight = 600
)

var (
	colorBackground = drawing.ColorFromHex("0b0c17")
	colorBull       = drawing.ColorFromHex("00d084")
	colorBear       = drawing.ColorFromHex("ff4d4f")
	colorFast       = drawing.ColorFromHex("0064ff")
	colorSlow       = drawing.ColorFromHex("ff6400")
	colorAxis       = drawing.ColorFromHex("a0a0a0")
)

// run is a maximal same-trend index range [start, end). Adjacent runs share
// the boundary index so a trend flip draws without a visual gap.
type run struct {
	start, end int
	bull       bool
}

func splitRuns(fast, slow []float64) []run {
	var runs []run
	cur := run{start: 0, bull: fast[0] > slow[0]}
	for i := 1; i < len(fast); i++ {
		bull := fast[i] > slow[i]
		if bull != cur.bull {
			cur.end = i
			runs = append(runs, cur)
			cur = run{start: i - 1, bull: bull}
		}
	}
	cur.end = len(fast)
	return append(runs, cur)
}

// Render draws the price line segmented into bull/bear colored runs plus
// both EMA overlays, and encodes the result as PNG. Only the most recent
// Lookback points are shown.
func Render(symbol string, closes, fast, slow []float64, dates []string) ([]byte, error) {
	if len(closes) == 0 {
		return nil, ErrEmptyInput
	}
	if len(fast) != len(closes) || len(slow) != len(closes) || len(dates) != len(closes) {
		return nil, fmt.Errorf("%w: closes=%d fast=%d slow=%d dates=%d",
			ErrLengthMismatch, len(closes), len(fast), len(slow), len(dates))
	}

	if start := len(closes) - Lookback; start > 0 {
		closes, fast, slow, dates = closes[start:], fast[start:], slow[start:], dates[start:]
	}
	if len(closes) == 1 {
		// A single point has no drawable range; duplicate it.
		closes = []float64{closes[0], closes[0]}
		fast = []float64{fast[0], fast[0]}
		slow = []float64{slow[0], slow[0]}
		dates = []string{dates[0], dates[0]}
	}
	n := len(closes)

	// A completely flat chart has a zero y-delta, which the renderer
	// rejects; pad the range around the constant value.
	lo, hi := closes[0], closes[0]
	for _, s := range [][]float64{closes, fast, slow} {
		for _, v := range s {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	var yRange gochart.Range
	if lo == hi {
		yRange = &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	var series []gochart.Series
	for _, r := range splitRuns(fast, slow) {
		color := colorBull
		if !r.bull {
			color = colorBear
		}
		series = append(series, gochart.ContinuousSeries{
			XValues: xs[r.start:r.end],
			YValues: closes[r.start:r.end],
			Style:   gochart.Style{StrokeColor: color, StrokeWidth: 2},
		})
	}
	series = append(series,
		gochart.ContinuousSeries{
			Name:    "EMA12",
			XValues: xs,
			YValues: fast,
			Style:   gochart.Style{StrokeColor: colorFast, StrokeWidth: 1},
		},
		gochart.ContinuousSeries{
			Name:    "EMA26",
			XValues: xs,
			YValues: slow,
			Style:   gochart.Style{StrokeColor: colorSlow, StrokeWidth: 1},
		},
	)

	step := n / 10
	if step < 1 {
		step = 1
	}
	var ticks []gochart.Tick
	for i := 0; i < n-1; i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: dates[i]})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n - 1), Label: dates[n-1]})

	graph := gochart.Chart{
		Title:      fmt.Sprintf("%s | $%.2f", strings.ToUpper(symbol), closes[n-1]),
		TitleStyle: gochart.Style{FontColor: drawing.ColorWhite, FontSize: 14},
		Width:      chartWidth,
		Height:     chartHeight,
		Background: gochart.Style{FillColor: colorBackground},
		Canvas:     gochart.Style{FillColor: colorBackground},
		XAxis: gochart.XAxis{
			Ticks:     ticks,
			Style:     gochart.Style{FontColor: colorAxis, TextRotationDegrees: 45},
			TickStyle: gochart.Style{FontColor: colorAxis},
		},
		YAxis: gochart.YAxis{
			Style:     gochart.Style{FontColor: colorAxis},
			TickStyle: gochart.Style{FontColor: colorAxis},
			Range:     yRange,
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
