package model

// Signal classifies the EMA crossover state of a symbol.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalBullish Signal = "BULLISH"
	SignalBearish Signal = "BEARISH"
	SignalNone    Signal = "NONE"
)

// Actionable reports whether the signal warrants a chart and delivery.
func (s Signal) Actionable() bool {
	return s == SignalBuy || s == SignalSell
}

// ResultKind tags the outcome of one scanned symbol.
type ResultKind int

const (
	ResultSkipped ResultKind = iota
	ResultHit
	ResultFailed
)

// ScanResult is the single outcome emitted for one submitted symbol.
type ScanResult struct {
	Symbol string
	Kind   ResultKind
	Signal Signal
	PNG    []byte // non-empty iff Kind == ResultHit
	Err    error  // non-nil iff Kind == ResultFailed
}

// Hit is one actionable symbol together with its rendered chart.
type Hit struct {
	Symbol string
	Signal Signal
	PNG    []byte
}

// BatchSize is the delivery surface's hard per-message attachment cap.
const BatchSize = 10

// Batch groups hits for one delivery. A batch is flushed as a unit and
// never reused afterwards.
type Batch struct {
	Hits []Hit
}

func (b *Batch) Add(h Hit)   { b.Hits = append(b.Hits, h) }
func (b *Batch) Full() bool  { return len(b.Hits) >= BatchSize }
func (b *Batch) Empty() bool { return len(b.Hits) == 0 }

// ScanSummary reports the final counts of one completed scan.
type ScanSummary struct {
	Submitted int
	Hits      int
	Failures  int
}
