package domain

import "time"

// EventType tags the events broadcast to dashboard subscribers.
type EventType string

const (
	EventTradeExecuted   EventType = "trade_executed"
	EventDashboardUpdate EventType = "dashboard_update"
	EventMetrics         EventType = "metrics"
	EventPriceUpdate     EventType = "price_update"
)

// Event is a transient state-change notification. Delivery is best-effort:
// live subscribers only, no backlog, no retry.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"data"`
}

// DashboardUpdate is the payload of EventDashboardUpdate.
type DashboardUpdate struct {
	Ledger LedgerView     `json:"ledger"`
	Market MarketSnapshot `json:"market"`
}

// SystemMetrics is the payload of EventMetrics. The load figures are
// synthetic; the trade counters are real.
type SystemMetrics struct {
	CPUUsage     float64 `json:"cpu_usage"`
	MemoryUsage  float64 `json:"memory_usage"`
	NetworkUsage float64 `json:"network_usage"`
	ActiveBots   int     `json:"active_bots"`
	TotalTrades  int     `json:"total_trades"`
	TotalProfit  float64 `json:"total_profit"`
}
