package chart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"StockSentry/internal/strategy"
)

func testSeries(n int) (closes, fast, slow []float64, dates []string) {
	closes = make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 10*float64(i%7) - float64(i%3)
	}
	_, fast, slow = strategy.Evaluate(closes)
	dates = make([]string, n)
	for i := range dates {
		dates[i] = fmt.Sprintf("2026-01-%02d", i%28+1)
	}
	return closes, fast, slow, dates
}

func TestRender_ProducesPNG(t *testing.T) {
	closes, fast, slow, dates := testSeries(120)
	png, err := Render("tsla", closes, fast, slow, dates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("expected non-empty image bytes")
	}
	// PNG magic header
	if png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Error("output is not a PNG")
	}
}

func TestRender_LengthMismatch(t *testing.T) {
	closes, fast, slow, dates := testSeries(5)
	png, err := Render("tsla", closes, fast, slow, dates[:4])
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if len(png) != 0 {
		t.Error("expected zero bytes on length mismatch")
	}
}

func TestRender_EmptyInput(t *testing.T) {
	png, err := Render("tsla", nil, nil, nil, nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if len(png) != 0 {
		t.Error("expected zero bytes on empty input")
	}
}

func TestRender_SinglePoint(t *testing.T) {
	png, err := Render("tsla", []float64{100}, []float64{100}, []float64{100}, []string{"2026-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(png) == 0 {
		t.Error("expected non-empty image bytes")
	}
}

func TestSplitRuns_SharesBoundaryPoint(t *testing.T) {
	fast := []float64{1, 3, 3, 1}
	slow := []float64{2, 2, 2, 2}
	runs := splitRuns(fast, slow)

	want := []run{
		{start: 0, end: 1, bull: false},
		{start: 0, end: 3, bull: true},
		{start: 2, end: 4, bull: false},
	}
	if len(runs) != len(want) {
		t.Fatalf("expected %d runs, got %d: %+v", len(want), len(runs), runs)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("runs[%d] = %+v, want %+v", i, runs[i], want[i])
		}
	}
	// Each flip must duplicate the boundary index into the next run.
	for i := 1; i < len(runs); i++ {
		if runs[i].start != runs[i-1].end-1 {
			t.Errorf("run %d does not share a boundary point with run %d", i, i-1)
		}
	}
}

func TestSplitRuns_SingleTrend(t *testing.T) {
	fast := []float64{3, 3, 3}
	slow := []float64{2, 2, 2}
	runs := splitRuns(fast, slow)
	if len(runs) != 1 || runs[0] != (run{start: 0, end: 3, bull: true}) {
		t.Errorf("unexpected runs: %+v", runs)
	}
}

func TestPool_RenderRoundTrip(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	closes, fast, slow, dates := testSeries(60)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			png, err := p.Render(context.Background(), Request{
				Symbol: "aapl",
				Closes: closes,
				Fast:   fast,
				Slow:   slow,
				Dates:  dates,
			})
			if err == nil && len(png) == 0 {
				err = errors.New("empty png")
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("render %d: %v", i, err)
		}
	}
}

func TestPool_RenderPropagatesError(t *testing.T) {
	p := NewPool(1)
	defer p.Close()

	_, err := p.Render(context.Background(), Request{Symbol: "x"})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput through the pool, got %v", err)
	}
}

func TestPool_RenderCancelled(t *testing.T) {
	// No workers: submission can never be accepted, so cancellation must
	// release the caller.
	p := &Pool{jobs: make(chan renderJob)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Render(ctx, Request{Symbol: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
