// Package metrics exposes the engine's Prometheus collectors:
//   - sultand_trades_total{result}        – simulated trades by result (win|loss)
//   - sultand_portfolio_value_usd         – current portfolio value (gauge)
//   - sultand_user_xp                     – current XP total (gauge)
//   - sultand_rewards_redeemed_total{op}  – spin/scratch/daily_bonus redemptions
//   - sultand_withdrawals_total           – successful payout-backed withdrawals
//   - sultand_events_published_total{type} – events fanned out on the bus
//   - sultand_events_dropped_total{type}  – events dropped for slow subscribers
//
// Registered in init() and served by the gateway at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	trades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sultand_trades_total",
			Help: "Simulated trades by result",
		},
		[]string{"result"}, // win|loss
	)

	portfolioValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sultand_portfolio_value_usd",
			Help: "Current portfolio value in USD",
		},
	)

	userXP = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sultand_user_xp",
			Help: "Current experience points",
		},
	)

	rewards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sultand_rewards_redeemed_total",
			Help: "Gamification rewards redeemed by operation",
		},
		[]string{"op"}, // spin|scratch|daily_bonus
	)

	withdrawals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sultand_withdrawals_total",
			Help: "Successful payout-backed withdrawals",
		},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sultand_events_published_total",
			Help: "Events published on the broadcast bus",
		},
		[]string{"type"},
	)

	eventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sultand_events_dropped_total",
			Help: "Events dropped because a subscriber queue was full",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		trades,
		portfolioValue,
		userXP,
		rewards,
		withdrawals,
		eventsPublished,
		eventsDropped,
	)
}

// IncTrade counts one executed trade.
func IncTrade(success bool) {
	result := "loss"
	if success {
		result = "win"
	}
	trades.WithLabelValues(result).Inc()
}

// SetPortfolioValue updates the portfolio gauge.
func SetPortfolioValue(v float64) { portfolioValue.Set(v) }

// SetUserXP updates the XP gauge.
func SetUserXP(xp int) { userXP.Set(float64(xp)) }

// IncReward counts one redeemed reward by operation name.
func IncReward(op string) { rewards.WithLabelValues(op).Inc() }

// IncWithdrawal counts one completed withdrawal.
func IncWithdrawal() { withdrawals.Inc() }

// IncEventPublished counts one bus publish by event type.
func IncEventPublished(eventType string) { eventsPublished.WithLabelValues(eventType).Inc() }

// IncEventDropped counts one per-subscriber drop by event type.
func IncEventDropped(eventType string) { eventsDropped.WithLabelValues(eventType).Inc() }

// Handler serves the Prometheus text exposition format.
func Handler() http.Handler { return promhttp.Handler() }
