package domain

import "time"

// Quote is one symbol's market data point.
type Quote struct {
	Price      float64 `json:"price"`
	Change24h  float64 `json:"change_24h"` // percent
	Volume24h  float64 `json:"volume_24h"`
	Volatility float64 `json:"volatility"` // fraction in [0, 1]
}

// MarketSnapshot is the market state handed to bots on each trade tick.
type MarketSnapshot struct {
	Quotes    map[string]Quote `json:"quotes"`
	Timestamp time.Time        `json:"timestamp"`
}

// Volatility returns the highest per-symbol volatility in the snapshot,
// used to dampen trade success probability.
func (s MarketSnapshot) Volatility() float64 {
	max := 0.0
	for _, q := range s.Quotes {
		if q.Volatility > max {
			max = q.Volatility
		}
	}
	return max
}

// Symbols returns the symbols present in the snapshot.
func (s MarketSnapshot) Symbols() []string {
	out := make([]string, 0, len(s.Quotes))
	for sym := range s.Quotes {
		out = append(out, sym)
	}
	return out
}

// StepQuote advances a quote one random-walk step: price moves within
// ±maxStep, the 24h change is redrawn within ±maxChange, and volatility
// tracks the magnitude of that change.
func StepQuote(r Rand, prev Quote, maxStep, maxChange float64) Quote {
	change := UniformIn(r, -maxChange, maxChange)
	return Quote{
		Price:      prev.Price * (1 + UniformIn(r, -maxStep, maxStep)),
		Change24h:  change * 100,
		Volume24h:  UniformIn(r, 1_000_000, 5_000_000),
		Volatility: abs64(change),
	}
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
