package bots

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blacksultan/sultand/internal/application/ledger"
	"github.com/blacksultan/sultand/internal/domain"
)

// Config holds the trade-shaping knobs. The numbers are simulation texture,
// not a contract, so everything is injected from configuration.
type Config struct {
	SizeFraction      float64 // fraction of balance risked per trade
	SizeCap           float64 // absolute ceiling on trade size
	VolatilityPenalty float64 // how hard volatility dampens success probability
	GainMin, GainMax  float64 // winning trade returns, fraction of trade size
	LossMin, LossMax  float64 // losing trade costs, fraction of trade size
	XPPerWin          int
	XPPerToggle       int
}

// DefaultConfig mirrors the dashboard's historical behavior: 1% of balance
// capped at $100, 2-8% gains, 1-5% losses.
func DefaultConfig() Config {
	return Config{
		SizeFraction:      0.01,
		SizeCap:           100,
		VolatilityPenalty: 0.3,
		GainMin:           0.02,
		GainMax:           0.08,
		LossMin:           0.01,
		LossMax:           0.05,
		XPPerWin:          10,
		XPPerToggle:       25,
	}
}

// Spec describes one bot to create at startup.
type Spec struct {
	ID             string
	Name           string
	Strategy       domain.Strategy
	InitialBalance float64
	SuccessRate    float64
}

// Registry owns the set of trading bots. All bot mutation is serialized
// through its mutex; shared profit/XP effects go through the ledger, which
// has its own lock (always acquired after the registry's, never before).
type Registry struct {
	mu             sync.Mutex
	bots           map[string]*domain.Bot
	order          []string
	tradingEnabled bool

	ledger *ledger.Ledger
	rand   domain.Rand
	cfg    Config
}

// New creates the registry with every configured bot active.
func New(specs []Spec, led *ledger.Ledger, r domain.Rand, cfg Config) *Registry {
	reg := &Registry{
		bots:           make(map[string]*domain.Bot, len(specs)),
		tradingEnabled: true,
		ledger:         led,
		rand:           r,
		cfg:            cfg,
	}
	for _, spec := range specs {
		reg.bots[spec.ID] = &domain.Bot{
			ID:          spec.ID,
			Name:        spec.Name,
			Strategy:    spec.Strategy,
			Balance:     spec.InitialBalance,
			Active:      true,
			SuccessRate: spec.SuccessRate,
		}
		reg.order = append(reg.order, spec.ID)
	}
	return reg
}

// ExecuteTrade runs one trade attempt for the given bot against the market
// snapshot. It returns (nil, nil) when the bot is inactive, trading is
// globally disabled, or the strategy produces no signal this tick.
func (reg *Registry) ExecuteTrade(botID string, snapshot domain.MarketSnapshot) (*domain.TradeResult, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	bot, ok := reg.bots[botID]
	if !ok {
		return nil, fmt.Errorf("bots.ExecuteTrade: bot %q: %w", botID, domain.ErrNotFound)
	}
	if !bot.Active || !reg.tradingEnabled {
		return nil, nil
	}

	signal := domain.DecideSignal(reg.rand, bot.Strategy, snapshot)
	if signal == nil {
		return nil, nil
	}

	amount := bot.Balance * reg.cfg.SizeFraction
	if amount > reg.cfg.SizeCap {
		amount = reg.cfg.SizeCap
	}

	successProb := bot.SuccessRate * (1 - snapshot.Volatility()*reg.cfg.VolatilityPenalty)
	success := reg.rand.Float64() < successProb

	var profit float64
	if success {
		profit = amount * domain.UniformIn(reg.rand, reg.cfg.GainMin, reg.cfg.GainMax)
	} else {
		profit = -amount * domain.UniformIn(reg.rand, reg.cfg.LossMin, reg.cfg.LossMax)
	}

	now := time.Now().UTC()
	bot.Balance += profit
	bot.ProfitToday += profit
	bot.TradesToday++
	bot.TotalTrades++
	bot.LastTradeTime = &now

	reg.ledger.RecordTrade(profit, success)
	if success {
		reg.ledger.AddXP(reg.cfg.XPPerWin)
	}

	return &domain.TradeResult{
		TradeID:    uuid.New().String(),
		BotID:      bot.ID,
		BotName:    bot.Name,
		Symbol:     signal.Symbol,
		Action:     signal.Action,
		Timestamp:  now,
		Amount:     amount,
		Profit:     profit,
		Success:    success,
		NewBalance: bot.Balance,
	}, nil
}

// Toggle flips a bot's active flag and returns the new state. Balance and
// trade counters are untouched; the operator earns a small XP grant.
func (reg *Registry) Toggle(botID string) (bool, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	bot, ok := reg.bots[botID]
	if !ok {
		return false, fmt.Errorf("bots.Toggle: bot %q: %w", botID, domain.ErrNotFound)
	}
	bot.Active = !bot.Active
	reg.ledger.AddXP(reg.cfg.XPPerToggle)
	return bot.Active, nil
}

// SetTradingEnabled flips the global kill switch for all trade execution.
func (reg *Registry) SetTradingEnabled(enabled bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.tradingEnabled = enabled
}

// TradingEnabled reports the global kill switch state.
func (reg *Registry) TradingEnabled() bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.tradingEnabled
}

// ResetDailyStats zeroes every bot's daily counters. Called only by the
// daily-boundary trigger.
func (reg *Registry) ResetDailyStats() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, bot := range reg.bots {
		bot.TradesToday = 0
		bot.ProfitToday = 0
	}
}

// IDs returns the bot IDs in configuration order.
func (reg *Registry) IDs() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]string, len(reg.order))
	copy(out, reg.order)
	return out
}

// Statuses returns a read-only view of every bot in configuration order.
func (reg *Registry) Statuses() []domain.BotStatus {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]domain.BotStatus, 0, len(reg.order))
	for _, id := range reg.order {
		bot := reg.bots[id]
		var lastTrade *time.Time
		if bot.LastTradeTime != nil {
			t := *bot.LastTradeTime
			lastTrade = &t
		}
		out = append(out, domain.BotStatus{
			ID:          bot.ID,
			Name:        bot.Name,
			Strategy:    bot.Strategy,
			Balance:     bot.Balance,
			Active:      bot.Active,
			TradesToday: bot.TradesToday,
			ProfitToday: bot.ProfitToday,
			TotalTrades: bot.TotalTrades,
			SuccessRate: bot.SuccessRate,
			LastTrade:   lastTrade,
		})
	}
	return out
}

// Totals aggregates the figures the metrics tick broadcasts.
func (reg *Registry) Totals() (activeBots, tradesToday int, profitToday float64) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, bot := range reg.bots {
		if bot.Active {
			activeBots++
		}
		tradesToday += bot.TradesToday
		profitToday += bot.ProfitToday
	}
	return
}
