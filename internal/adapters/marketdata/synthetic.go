package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/blacksultan/sultand/internal/domain"
)

const (
	maxPriceStep  = 0.05 // ±5% price move per refresh
	maxChangeStep = 0.08 // ±8% redrawn 24h change
)

// Synthetic generates random-walk market snapshots from fixed base prices.
// It is both the offline provider and the fallback behind the CoinGecko
// client; it never fails.
type Synthetic struct {
	mu   sync.Mutex
	last map[string]domain.Quote
	rand domain.Rand
}

// NewSynthetic seeds the walk with base prices per symbol.
func NewSynthetic(basePrices map[string]float64, r domain.Rand) *Synthetic {
	last := make(map[string]domain.Quote, len(basePrices))
	for sym, price := range basePrices {
		last[sym] = domain.Quote{Price: price}
	}
	return &Synthetic{last: last, rand: r}
}

// GetCurrentPrices advances every symbol one random-walk step.
func (s *Synthetic) GetCurrentPrices(_ context.Context) domain.MarketSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes := make(map[string]domain.Quote, len(s.last))
	for sym, prev := range s.last {
		next := domain.StepQuote(s.rand, prev, maxPriceStep, maxChangeStep)
		s.last[sym] = next
		quotes[sym] = next
	}
	return domain.MarketSnapshot{Quotes: quotes, Timestamp: time.Now().UTC()}
}
