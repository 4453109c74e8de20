package domain

import (
	"fmt"
	"sort"
	"time"
)

// Strategy identifies a bot's trading behavior. The set is closed: adding a
// strategy means extending the enum and DecideSignal, not runtime registration.
type Strategy string

const (
	StrategyAlpha       Strategy = "alpha"
	StrategyArbitrage   Strategy = "arbitrage"
	StrategyTrend       Strategy = "trend"
	StrategyRisk        Strategy = "risk"
	StrategyMarketMaker Strategy = "market_maker"
)

// ParseStrategy validates a strategy name from config.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAlpha, StrategyArbitrage, StrategyTrend, StrategyRisk, StrategyMarketMaker:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, s)
}

// Signal is a strategy's decision to trade this tick.
type Signal struct {
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
}

// strategyParams holds each variant's trade-trigger probability and the
// confidence attached to its signals.
type strategyParams struct {
	triggerProb float64
	confidence  float64
}

var strategyTable = map[Strategy]strategyParams{
	StrategyAlpha:       {triggerProb: 0.30, confidence: 0.85},
	StrategyArbitrage:   {triggerProb: 0.20, confidence: 0.92},
	StrategyTrend:       {triggerProb: 0.40, confidence: 0.75},
	StrategyRisk:        {triggerProb: 0.10, confidence: 0.95},
	StrategyMarketMaker: {triggerProb: 0.25, confidence: 0.80},
}

// DecideSignal evaluates a strategy against the market snapshot and returns
// nil when the strategy sits this tick out. Dispatch is a closed tagged-variant
// switch; each variant trades with its own probability and confidence.
func DecideSignal(r Rand, strategy Strategy, snapshot MarketSnapshot) *Signal {
	params, ok := strategyTable[strategy]
	if !ok {
		return nil
	}
	if r.Float64() >= params.triggerProb {
		return nil
	}

	syms := snapshot.Symbols()
	sort.Strings(syms)
	if len(syms) == 0 {
		return nil
	}

	sig := &Signal{Confidence: params.confidence}
	switch strategy {
	case StrategyAlpha:
		sig.Symbol = syms[r.IntN(len(syms))]
		sig.Action = pickDirection(r, 0.5)
	case StrategyArbitrage:
		sig.Symbol = syms[r.IntN(len(syms))]
		sig.Action = "arbitrage"
	case StrategyTrend:
		sig.Symbol = syms[r.IntN(len(syms))]
		sig.Action = pickDirection(r, 0.4)
	case StrategyRisk:
		sig.Symbol = syms[0]
		sig.Action = "hedge"
	case StrategyMarketMaker:
		sig.Symbol = syms[r.IntN(len(syms))]
		sig.Action = "market_make"
	}
	return sig
}

func pickDirection(r Rand, sellBelow float64) string {
	if r.Float64() > sellBelow {
		return "buy"
	}
	return "sell"
}

// Bot is one autonomous simulated trading actor. All mutation goes through
// the registry that owns it.
type Bot struct {
	ID            string
	Name          string
	Strategy      Strategy
	Balance       float64
	Active        bool
	TradesToday   int
	ProfitToday   float64
	TotalTrades   int
	SuccessRate   float64 // probability in [0, 1] before volatility damping
	LastTradeTime *time.Time
}

// BotStatus is the read-only view served to the dashboard.
type BotStatus struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Strategy    Strategy   `json:"strategy"`
	Balance     float64    `json:"balance"`
	Active      bool       `json:"is_active"`
	TradesToday int        `json:"trades_today"`
	ProfitToday float64    `json:"profit_today"`
	TotalTrades int        `json:"total_trades"`
	SuccessRate float64    `json:"success_rate"`
	LastTrade   *time.Time `json:"last_trade,omitempty"`
}

// TradeResult is the outcome of one executed trade.
type TradeResult struct {
	TradeID    string    `json:"trade_id"`
	BotID      string    `json:"bot_id"`
	BotName    string    `json:"bot_name"`
	Symbol     string    `json:"symbol"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	Amount     float64   `json:"amount"`
	Profit     float64   `json:"profit"` // signed: negative on a losing trade
	Success    bool      `json:"successful"`
	NewBalance float64   `json:"new_balance"`
}
