// Package scanner drives the concurrent watchlist scan: bounded fan-out
// over a shared symbol backlog, unordered fan-in into one consuming loop
// that batches hits for delivery.
package scanner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"StockSentry/internal/chart"
	"StockSentry/internal/collector"
	"StockSentry/internal/model"
	"StockSentry/internal/strategy"
)

// SymbolLister provides the tracked-symbol set. It is consulted exactly
// once per scan.
type SymbolLister interface {
	List() ([]string, error)
}

// Sink receives completed batches and the empty-scan notice.
type Sink interface {
	FlushBatch(ctx context.Context, batch *model.Batch) error
	NotifyNoSignals(ctx context.Context) error
}

// Engine defaults.
const (
	DefaultConcurrency = 8
	DefaultLookback    = 300 * 24 * time.Hour
	DefaultMaxBars     = 365
)

// Engine runs the scan pipeline. The same instance serves both the cron
// schedule and the on-demand chat trigger.
type Engine struct {
	Fetcher     collector.Fetcher
	Symbols     SymbolLister
	Charts      *chart.Pool
	Sink        Sink
	Concurrency int

	Lookback time.Duration
	Interval collector.Interval
	MaxBars  int
}

// NewEngine builds an engine with defaults applied.
func NewEngine(fetcher collector.Fetcher, symbols SymbolLister, charts *chart.Pool, sink Sink, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		Fetcher:     fetcher,
		Symbols:     symbols,
		Charts:      charts,
		Sink:        sink,
		Concurrency: concurrency,
		Lookback:    DefaultLookback,
		Interval:    collector.Interval1Day,
		MaxBars:     DefaultMaxBars,
	}
}

// Scan runs one full scan over the current watchlist and returns its
// summary. Failing to obtain the watchlist is the only fatal error; every
// per-symbol failure is recovered locally and counted. Hits are delivered
// to the sink in completion order, in batches of at most model.BatchSize;
// a scan with zero hits produces a single no-signals notice instead.
func (e *Engine) Scan(ctx context.Context) (model.ScanSummary, error) {
	symbols, err := e.Symbols.List()
	if err != nil {
		return model.ScanSummary{}, fmt.Errorf("list symbols: %w", err)
	}
	summary := model.ScanSummary{Submitted: len(symbols)}

	jobs := make(chan string)
	results := make(chan model.ScanResult)

	var wg sync.WaitGroup
	wg.Add(e.Concurrency)
	for i := 0; i < e.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- e.scanSymbol(ctx, symbol)
			}
		}()
	}

	go func() {
		for _, symbol := range symbols {
			jobs <- symbol
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single consumer: owns the batch accumulator and the counters, so
	// neither needs a lock.
	batch := &model.Batch{}
	for res := range results {
		switch res.Kind {
		case model.ResultFailed:
			summary.Failures++
			log.Printf("[WARN] scan %s: %v", res.Symbol, res.Err)
		case model.ResultHit:
			summary.Hits++
			log.Printf("[INFO] %s - %s", res.Symbol, res.Signal)
			batch.Add(model.Hit{Symbol: res.Symbol, Signal: res.Signal, PNG: res.PNG})
			if batch.Full() {
				if err := e.Sink.FlushBatch(ctx, batch); err != nil {
					log.Printf("[ERROR] flush batch: %v", err)
				}
				batch = &model.Batch{}
			}
		}
	}

	if !batch.Empty() {
		if err := e.Sink.FlushBatch(ctx, batch); err != nil {
			return summary, fmt.Errorf("flush final batch: %w", err)
		}
	} else if summary.Hits == 0 {
		if err := e.Sink.NotifyNoSignals(ctx); err != nil {
			return summary, fmt.Errorf("notify no signals: %w", err)
		}
	}
	return summary, nil
}

// scanSymbol is one independent symbol task: fetch, evaluate, and render
// when actionable. Every failure is converted to a Failed result here, at
// the task boundary.
func (e *Engine) scanSymbol(ctx context.Context, symbol string) model.ScanResult {
	bars, err := e.Fetcher.FetchBars(symbol, e.Lookback, e.Interval, e.MaxBars)
	if err != nil {
		return model.ScanResult{Symbol: symbol, Kind: model.ResultFailed, Err: fmt.Errorf("fetch: %w", err)}
	}
	if len(bars) == 0 {
		return model.ScanResult{Symbol: symbol, Kind: model.ResultSkipped}
	}

	closes := model.Closes(bars)
	sig, fast, slow := strategy.Evaluate(closes)
	if !sig.Actionable() {
		return model.ScanResult{Symbol: symbol, Kind: model.ResultSkipped, Signal: sig}
	}

	png, err := e.Charts.Render(ctx, chart.Request{
		Symbol: symbol,
		Closes: closes,
		Fast:   fast,
		Slow:   slow,
		Dates:  model.Dates(bars),
	})
	if err != nil {
		return model.ScanResult{Symbol: symbol, Kind: model.ResultFailed, Signal: sig, Err: fmt.Errorf("render: %w", err)}
	}
	return model.ScanResult{Symbol: symbol, Kind: model.ResultHit, Signal: sig, PNG: png}
}
