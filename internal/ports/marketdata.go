package ports

import (
	"context"

	"github.com/blacksultan/sultand/internal/domain"
)

// MarketDataProvider supplies current prices for the simulated portfolio's
// symbols. Implementations own their caching and rate limiting and must
// return a last-known or synthetic snapshot on upstream failure instead of
// propagating an error into the scheduler.
type MarketDataProvider interface {
	GetCurrentPrices(ctx context.Context) domain.MarketSnapshot
}
