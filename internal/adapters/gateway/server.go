// Package gateway is the HTTP and websocket surface of the dashboard. It
// translates requests into core calls and relays the event stream; it holds
// no state of its own.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/blacksultan/sultand/internal/application/bots"
	"github.com/blacksultan/sultand/internal/application/ledger"
	"github.com/blacksultan/sultand/internal/application/rewards"
	"github.com/blacksultan/sultand/internal/bus"
	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/metrics"
	"github.com/blacksultan/sultand/internal/ports"
)

const defaultHistoryLimit = 24

// Server wires the core components behind HTTP handlers.
type Server struct {
	ledger   *ledger.Ledger
	registry *bots.Registry
	rewards  *rewards.Engine
	bus      *bus.Bus
	payout   ports.PayoutProvider
	store    ports.TradeStorage // nil disables /api/trading/history
	market   func() domain.MarketSnapshot

	upgrader   websocket.Upgrader
	corsOrigin string
}

// New creates the gateway server. market supplies the latest snapshot for
// the dashboard query.
func New(
	led *ledger.Ledger,
	registry *bots.Registry,
	rewardEngine *rewards.Engine,
	b *bus.Bus,
	payoutProvider ports.PayoutProvider,
	store ports.TradeStorage,
	market func() domain.MarketSnapshot,
	corsOrigin string,
) *Server {
	return &Server{
		ledger:     led,
		registry:   registry,
		rewards:    rewardEngine,
		bus:        b,
		payout:     payoutProvider,
		store:      store,
		market:     market,
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		corsOrigin: corsOrigin,
	}
}

// Routes returns the full handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))
	mux.Handle("GET /api/dashboard", http.HandlerFunc(s.handleDashboard))
	mux.Handle("GET /api/bots", http.HandlerFunc(s.handleBots))
	mux.Handle("POST /api/bot/{id}/toggle", http.HandlerFunc(s.handleToggle))
	mux.Handle("POST /api/trading/enabled", http.HandlerFunc(s.handleTradingEnabled))
	mux.Handle("GET /api/trading/history", http.HandlerFunc(s.handleHistory))
	mux.Handle("POST /api/gamification/spin-wheel", http.HandlerFunc(s.handleSpin))
	mux.Handle("POST /api/gamification/scratch-card", http.HandlerFunc(s.handleScratch))
	mux.Handle("POST /api/gamification/daily-bonus", http.HandlerFunc(s.handleDailyBonus))
	mux.Handle("GET /api/gamification/status", http.HandlerFunc(s.handleRewardStatus))
	mux.Handle("POST /api/wallet/withdraw/paypal", http.HandlerFunc(s.handleWithdraw))
	mux.Handle("GET /ws", http.HandlerFunc(s.handleEventStream))
	mux.Handle("GET /metrics", metrics.Handler())
	return s.withCORS(mux)
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	view := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"portfolio_value":         view.PortfolioValue,
		"daily_profit":            view.DailyProfit,
		"daily_profit_percentage": view.DailyProfitPct(),
		"user_level":              view.Level,
		"user_xp":                 view.XP,
		"streak_days":             view.StreakDays,
		"market_data":             s.market(),
	})
}

func (s *Server) handleBots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Statuses())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	botID := r.PathValue("id")
	active, err := s.registry.Toggle(botID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"bot_id":    botID,
		"is_active": active,
	})
}

func (s *Server) handleTradingEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, fmt.Errorf("gateway: enabled flag required: %w", domain.ErrInvalidArgument))
		return
	}
	s.registry.SetTradingEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "trading_enabled": *req.Enabled})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []domain.TradeResult{})
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, fmt.Errorf("gateway: bad limit %q: %w", v, domain.ErrInvalidArgument))
			return
		}
		limit = n
	}
	trades, err := s.store.GetRecentTrades(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if trades == nil {
		trades = []domain.TradeResult{}
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleSpin(w http.ResponseWriter, _ *http.Request) {
	outcome, err := s.rewards.SpinWheel()
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeReward(w, outcome)
}

func (s *Server) handleScratch(w http.ResponseWriter, _ *http.Request) {
	outcome, err := s.rewards.ScratchCard()
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeReward(w, outcome)
}

func (s *Server) handleDailyBonus(w http.ResponseWriter, _ *http.Request) {
	outcome, err := s.rewards.ClaimDailyBonus()
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeReward(w, outcome)
}

func (s *Server) writeReward(w http.ResponseWriter, outcome domain.RewardOutcome) {
	view := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"reward":              outcome,
		"new_portfolio_value": view.PortfolioValue,
		"new_xp":              view.XP,
		"new_level":           view.Level,
	})
}

func (s *Server) handleRewardStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.rewards.Status())
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string  `json:"email"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("gateway: invalid payload: %w", domain.ErrInvalidArgument))
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") || req.Amount <= 0 {
		writeError(w, fmt.Errorf("gateway: email and positive amount required: %w", domain.ErrInvalidArgument))
		return
	}

	// Solvency pre-check, then the payout receipt, then the debit. The debit
	// re-checks atomically; a successful receipt always precedes it.
	if err := s.ledger.CanWithdraw(req.Amount); err != nil {
		writeError(w, err)
		return
	}
	receipt, err := s.payout.CreatePayout(r.Context(), req.Email, req.Amount, "USD")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.ledger.Withdraw(req.Amount); err != nil {
		// Receipt issued but balance drained by a concurrent debit.
		slog.Error("withdrawal debit failed after payout", "batch_id", receipt.BatchID, "err", err)
		writeError(w, err)
		return
	}
	s.ledger.AddXP(100)
	metrics.IncWithdrawal()

	view := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"payout_id":           receipt.BatchID,
		"amount":              receipt.Amount,
		"recipient":           receipt.Recipient,
		"transaction_fee":     receipt.TransactionFee,
		"net_amount":          receipt.NetAmount,
		"processing_time":     receipt.ProcessingTime,
		"new_portfolio_value": view.PortfolioValue,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable), errors.Is(err, domain.ErrExhausted),
		errors.Is(err, domain.ErrAlreadyClaimed):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}
