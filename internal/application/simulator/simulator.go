// Package simulator drives the background activity of the dashboard engine:
// jittered trade ticks, cron-scheduled metrics samples and daily resets, and
// periodic price refreshes. Every worker is cancellable through the run
// context so the whole engine stops deterministically in tests.
package simulator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/blacksultan/sultand/internal/application/bots"
	"github.com/blacksultan/sultand/internal/application/ledger"
	"github.com/blacksultan/sultand/internal/bus"
	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/metrics"
	"github.com/blacksultan/sultand/internal/ports"
)

const dayLayout = "2006-01-02"

// Config holds the tick cadences. Cron specs use the seconds field.
type Config struct {
	TradeTickMin     time.Duration // lower bound of the jittered trade tick
	TradeTickMax     time.Duration // upper bound of the jittered trade tick
	TradeProbability float64       // per-bot chance to attempt a trade each tick
	MetricsSpec      string        // cron spec for the metrics sample
	DailyCheckSpec   string        // cron spec for the daily-boundary check
	PriceInterval    time.Duration // cadence of price_update events
}

// DefaultConfig mirrors the dashboard's historical cadences: trades every
// 5-15s, metrics every 3s, boundary check twice a minute, prices every 30s.
func DefaultConfig() Config {
	return Config{
		TradeTickMin:     5 * time.Second,
		TradeTickMax:     15 * time.Second,
		TradeProbability: 0.3,
		MetricsSpec:      "*/3 * * * * *",
		DailyCheckSpec:   "*/30 * * * * *",
		PriceInterval:    30 * time.Second,
	}
}

// Simulator owns the background workers. It mutates shared state only
// through the ledger and registry method sets and broadcasts results on the
// bus.
type Simulator struct {
	ledger   *ledger.Ledger
	registry *bots.Registry
	market   ports.MarketDataProvider
	store    ports.TradeStorage // nil disables trade persistence
	bus      *bus.Bus
	rand     domain.Rand
	cfg      Config

	mu           sync.Mutex
	lastMarket   domain.MarketSnapshot
	lastResetDay string
}

// New creates the simulator. The daily-reset stamp starts at today so a
// freshly started process does not immediately reset.
func New(
	led *ledger.Ledger,
	registry *bots.Registry,
	market ports.MarketDataProvider,
	store ports.TradeStorage,
	b *bus.Bus,
	r domain.Rand,
	cfg Config,
) *Simulator {
	return &Simulator{
		ledger:       led,
		registry:     registry,
		market:       market,
		store:        store,
		bus:          b,
		rand:         r,
		cfg:          cfg,
		lastResetDay: time.Now().Format(dayLayout),
	}
}

// Run starts all periodic workers and blocks until the context is cancelled.
// A failed tick body is logged and the loop continues; nothing in here halts
// the scheduler.
func (s *Simulator) Run(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(s.cfg.MetricsSpec, func() { s.MetricsTick() }); err != nil {
		return err
	}
	if _, err := c.AddFunc(s.cfg.DailyCheckSpec, func() { s.CheckDailyReset(ctx, time.Now()) }); err != nil {
		return err
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	go s.priceLoop(ctx)

	slog.Info("simulator started",
		"trade_tick", s.cfg.TradeTickMin.String()+"-"+s.cfg.TradeTickMax.String(),
		"metrics_spec", s.cfg.MetricsSpec,
		"price_interval", s.cfg.PriceInterval,
	)

	timer := time.NewTimer(s.nextTradeDelay())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("simulator stopped")
			return nil
		case <-timer.C:
			s.TradeTick(ctx)
			timer.Reset(s.nextTradeDelay())
		}
	}
}

func (s *Simulator) nextTradeDelay() time.Duration {
	spread := s.cfg.TradeTickMax - s.cfg.TradeTickMin
	if spread <= 0 {
		return s.cfg.TradeTickMin
	}
	return s.cfg.TradeTickMin + time.Duration(s.rand.Float64()*float64(spread))
}

// TradeTick runs one round of trade attempts: every bot gets a chance with
// the configured per-tick probability, executed trades are persisted
// best-effort and broadcast, and a dashboard update follows.
func (s *Simulator) TradeTick(ctx context.Context) {
	snapshot := s.market.GetCurrentPrices(ctx)
	s.setLastMarket(snapshot)

	for _, id := range s.registry.IDs() {
		if s.rand.Float64() >= s.cfg.TradeProbability {
			continue
		}
		result, err := s.registry.ExecuteTrade(id, snapshot)
		if err != nil {
			slog.Warn("trade attempt failed", "bot", id, "err", err)
			continue
		}
		if result == nil {
			continue
		}

		metrics.IncTrade(result.Success)
		if s.store != nil {
			if err := s.store.SaveTrade(ctx, *result); err != nil {
				slog.Warn("trade persistence failed", "trade", result.TradeID, "err", err)
			}
		}
		s.bus.Publish(domain.Event{
			Type:      domain.EventTradeExecuted,
			Timestamp: result.Timestamp,
			Payload:   *result,
		})
		slog.Debug("trade executed",
			"bot", result.BotID,
			"symbol", result.Symbol,
			"profit", result.Profit,
			"balance", result.NewBalance,
		)
	}

	s.publishDashboard(snapshot)
}

// MetricsTick samples synthetic system load plus real trade aggregates and
// broadcasts them. It never mutates the ledger.
func (s *Simulator) MetricsTick() {
	activeBots, _, profitToday := s.registry.Totals()
	view := s.ledger.Snapshot()

	s.bus.Publish(domain.Event{
		Type:      domain.EventMetrics,
		Timestamp: time.Now().UTC(),
		Payload: domain.SystemMetrics{
			CPUUsage:     domain.UniformIn(s.rand, 15, 45),
			MemoryUsage:  domain.UniformIn(s.rand, 60, 85),
			NetworkUsage: domain.UniformIn(s.rand, 20, 70),
			ActiveBots:   activeBots,
			TotalTrades:  view.TotalTrades,
			TotalProfit:  profitToday,
		},
	})
	s.publishDashboard(s.LastMarket())
}

// CheckDailyReset fires the daily boundary once per local calendar day.
// Re-checks within the same day, including repeated cron fires around the
// boundary minute, are no-ops.
func (s *Simulator) CheckDailyReset(ctx context.Context, now time.Time) bool {
	day := now.Format(dayLayout)

	s.mu.Lock()
	if s.lastResetDay == day {
		s.mu.Unlock()
		return false
	}
	s.lastResetDay = day
	s.mu.Unlock()

	// Capture the closing figures before the reset wipes them.
	view := s.ledger.Snapshot()
	if s.store != nil {
		summary := ports.DailySummary{
			Day:            day,
			PortfolioValue: view.PortfolioValue,
			DailyProfit:    view.DailyProfit,
			Trades:         view.TotalTrades,
		}
		if err := s.store.SaveDailySummary(ctx, summary); err != nil {
			slog.Warn("daily summary persistence failed", "day", day, "err", err)
		}
	}

	s.ledger.ResetDaily()
	s.registry.ResetDailyStats()
	slog.Info("daily limits reset", "day", day)
	s.publishDashboard(s.LastMarket())
	return true
}

func (s *Simulator) priceLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PriceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := s.market.GetCurrentPrices(ctx)
			s.setLastMarket(snapshot)
			s.bus.Publish(domain.Event{
				Type:      domain.EventPriceUpdate,
				Timestamp: snapshot.Timestamp,
				Payload:   snapshot,
			})
		}
	}
}

func (s *Simulator) publishDashboard(market domain.MarketSnapshot) {
	view := s.ledger.Snapshot()
	metrics.SetPortfolioValue(view.PortfolioValue)
	metrics.SetUserXP(view.XP)
	s.bus.Publish(domain.Event{
		Type:      domain.EventDashboardUpdate,
		Timestamp: time.Now().UTC(),
		Payload:   domain.DashboardUpdate{Ledger: view, Market: market},
	})
}

// LastMarket returns the most recent market snapshot seen by any worker.
func (s *Simulator) LastMarket() domain.MarketSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMarket
}

func (s *Simulator) setLastMarket(snapshot domain.MarketSnapshot) {
	s.mu.Lock()
	s.lastMarket = snapshot
	s.mu.Unlock()
}
