package ports

import (
	"context"
	"time"

	"github.com/blacksultan/sultand/internal/domain"
)

// DailySummary aggregates one day of simulated trading, written at the
// daily boundary.
type DailySummary struct {
	Day            string
	PortfolioValue float64
	DailyProfit    float64
	Trades         int
}

// TradeStorage records executed trades for the dashboard's history view.
// It is an activity log, not a recovery source: all engine state stays
// volatile and is reseeded on restart.
type TradeStorage interface {
	SaveTrade(ctx context.Context, trade domain.TradeResult) error
	GetRecentTrades(ctx context.Context, limit int) ([]domain.TradeResult, error)
	SaveDailySummary(ctx context.Context, summary DailySummary) error
	GetDailySummaries(ctx context.Context, since time.Time) ([]DailySummary, error)
	Close() error
}
