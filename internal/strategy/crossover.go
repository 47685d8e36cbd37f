package strategy

import (
	"StockSentry/internal/calculator"
	"StockSentry/internal/model"
)

// EMA periods for the crossover pair.
const (
	FastPeriod = 12
	SlowPeriod = 26
)

// Evaluate computes the fast and slow EMA series over the closing prices
// and classifies the crossover state at the most recent point. Both
// returned series have one value per input close.
func Evaluate(closes []float64) (model.Signal, []float64, []float64) {
	fast, _ := calculator.EMASeries(closes, FastPeriod)
	slow, _ := calculator.EMASeries(closes, SlowPeriod)
	return classify(fast, slow), fast, slow
}

// classify compares the final two points of each series. A cross this
// step yields Buy/Sell; otherwise the current dominance decides the zone.
func classify(fast, slow []float64) model.Signal {
	if len(fast) < 2 || len(slow) < 2 {
		return model.SignalNone
	}
	c := len(fast) - 1
	p := len(fast) - 2

	prevFast, prevSlow := fast[p], slow[p]
	curFast, curSlow := fast[c], slow[c]

	switch {
	case prevFast <= prevSlow && curFast > curSlow:
		return model.SignalBuy
	case prevFast >= prevSlow && curFast < curSlow:
		return model.SignalSell
	case curFast > curSlow:
		return model.SignalBullish
	default:
		return model.SignalBearish
	}
}
