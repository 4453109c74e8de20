package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "synthetic", cfg.Market.Source)
	assert.InDelta(t, 125848.07, cfg.Ledger.PortfolioValue, 0.001)
	assert.Equal(t, 3, cfg.Ledger.ScratchCards)
	assert.Len(t, cfg.Bots, 5)
	assert.Equal(t, "alpha_trader", cfg.Bots[0].ID)
	assert.InDelta(t, 0.87, cfg.Bots[0].SuccessRate, 0.001)
	assert.InDelta(t, 0.01, cfg.Trading.SizeFraction, 0.0001)
	assert.InDelta(t, 100.0, cfg.Trading.SizeCap, 0.001)
	assert.Equal(t, 50, cfg.Rewards.BonusMin)
	assert.Equal(t, 200, cfg.Rewards.BonusMax)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Equal(t, 5*time.Second, cfg.TradeTickMin())
	assert.Equal(t, 15*time.Second, cfg.TradeTickMax())
	assert.Equal(t, 30*time.Second, cfg.PriceInterval())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":9999"
ledger:
  portfolio_value: 500.5
  scratch_cards_per_day: 5
bots:
  - id: solo
    name: Solo
    strategy: trend
    initial_balance: 1000
    success_rate: 0.6
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	assert.InDelta(t, 500.5, cfg.Ledger.PortfolioValue, 0.001)
	assert.Equal(t, 5, cfg.Ledger.ScratchCards)
	require.Len(t, cfg.Bots, 1)
	assert.Equal(t, "solo", cfg.Bots[0].ID)
	assert.InDelta(t, 0.6, cfg.Bots[0].SuccessRate, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched sections still get defaults.
	assert.Equal(t, "synthetic", cfg.Market.Source)
	assert.InDelta(t, 0.3, cfg.Simulation.TradeProbability, 0.001)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: a: map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LISTEN_ADDR", ":7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
simulation:
  trade_probability: 7.5
bots:
  - id: b1
    name: One
    strategy: alpha
    initial_balance: 100
    success_rate: 2.0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, cfg.Simulation.TradeProbability, 0.001)
	assert.InDelta(t, 0.87, cfg.Bots[0].SuccessRate, 0.001)
}
