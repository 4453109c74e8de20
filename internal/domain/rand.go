package domain

import "math/rand/v2"

// Rand is the random source used by the trading and reward logic.
// The simulation is driven entirely by it, so tests can inject a scripted
// sequence and assert exact outcomes.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n). Panics if n <= 0.
	IntN(n int) int
}

type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }
func (systemRand) IntN(n int) int   { return rand.IntN(n) }

// SystemRand returns the default source backed by math/rand/v2.
func SystemRand() Rand { return systemRand{} }

// UniformIn returns a value drawn uniformly from [lo, hi).
func UniformIn(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
