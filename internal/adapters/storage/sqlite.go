// Package storage persists the trading activity log in SQLite (pure Go, no
// CGo). The engine's state itself is volatile; this is history for the
// dashboard, never a recovery source.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id          TEXT PRIMARY KEY,
    bot_id      TEXT NOT NULL,
    bot_name    TEXT NOT NULL,
    symbol      TEXT NOT NULL,
    action      TEXT NOT NULL,
    executed_at DATETIME NOT NULL,
    amount      REAL NOT NULL,
    profit      REAL NOT NULL,
    success     INTEGER NOT NULL,
    new_balance REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_summaries (
    day             TEXT PRIMARY KEY,
    portfolio_value REAL NOT NULL,
    daily_profit    REAL NOT NULL,
    trades          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_at ON trades(executed_at DESC);
`

// tradeRetention bounds the activity log; older rows are pruned at startup.
const tradeRetention = 14 * 24 * time.Hour

// SQLite implements ports.TradeStorage.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path, applies the schema and
// prunes old rows.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLite: apply schema: %w", err)
	}

	s := &SQLite{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveTrade inserts one executed trade.
func (s *SQLite) SaveTrade(ctx context.Context, trade domain.TradeResult) error {
	success := 0
	if trade.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
			(id, bot_id, bot_name, symbol, action, executed_at, amount, profit, success, new_balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.TradeID, trade.BotID, trade.BotName, trade.Symbol, trade.Action,
		trade.Timestamp.UTC().Format(time.RFC3339Nano),
		trade.Amount, trade.Profit, success, trade.NewBalance,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveTrade: insert %s: %w", trade.TradeID, err)
	}
	return nil
}

// GetRecentTrades returns the newest trades first.
func (s *SQLite) GetRecentTrades(ctx context.Context, limit int) ([]domain.TradeResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bot_id, bot_name, symbol, action, executed_at, amount, profit, success, new_balance
		FROM trades
		ORDER BY executed_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRecentTrades: query: %w", err)
	}
	defer rows.Close()

	var trades []domain.TradeResult
	for rows.Next() {
		var t domain.TradeResult
		var executedAt string
		var success int
		if err := rows.Scan(
			&t.TradeID, &t.BotID, &t.BotName, &t.Symbol, &t.Action,
			&executedAt, &t.Amount, &t.Profit, &success, &t.NewBalance,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRecentTrades: scan row: %w", err)
		}
		t.Timestamp, _ = time.Parse(time.RFC3339Nano, executedAt)
		t.Success = success == 1
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SaveDailySummary upserts the closing figures for a day.
func (s *SQLite) SaveDailySummary(ctx context.Context, summary ports.DailySummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_summaries (day, portfolio_value, daily_profit, trades)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			portfolio_value = excluded.portfolio_value,
			daily_profit    = excluded.daily_profit,
			trades          = excluded.trades`,
		summary.Day, summary.PortfolioValue, summary.DailyProfit, summary.Trades,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveDailySummary: upsert %s: %w", summary.Day, err)
	}
	return nil
}

// GetDailySummaries returns summaries for days on or after since, oldest
// first.
func (s *SQLite) GetDailySummaries(ctx context.Context, since time.Time) ([]ports.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, portfolio_value, daily_profit, trades
		FROM daily_summaries
		WHERE day >= ?
		ORDER BY day ASC`, since.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("storage.GetDailySummaries: query: %w", err)
	}
	defer rows.Close()

	var summaries []ports.DailySummary
	for rows.Next() {
		var d ports.DailySummary
		if err := rows.Scan(&d.Day, &d.PortfolioValue, &d.DailyProfit, &d.Trades); err != nil {
			return nil, fmt.Errorf("storage.GetDailySummaries: scan row: %w", err)
		}
		summaries = append(summaries, d)
	}
	return summaries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-tradeRetention).Format(time.RFC3339Nano)
	s.db.ExecContext(ctx, `DELETE FROM trades WHERE executed_at < ?`, cutoff)
}
