package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full daemon configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Market     MarketConfig     `yaml:"market"`
	Simulation SimulationConfig `yaml:"simulation"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Bots       []BotConfig      `yaml:"bots"`
	Trading    TradingConfig    `yaml:"trading"`
	Rewards    RewardsConfig    `yaml:"rewards"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig controls the gateway listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	CORSOrigin string `yaml:"cors_origin"`
}

// MarketConfig selects the price source.
type MarketConfig struct {
	Source     string             `yaml:"source"`   // synthetic | coingecko
	BaseURL    string             `yaml:"base_url"` // override for coingecko, mainly tests
	BasePrices map[string]float64 `yaml:"base_prices"`
}

// SimulationConfig controls the background tick cadences.
type SimulationConfig struct {
	TradeTickMinSeconds  int     `yaml:"trade_tick_min_seconds"`
	TradeTickMaxSeconds  int     `yaml:"trade_tick_max_seconds"`
	TradeProbability     float64 `yaml:"trade_probability"`
	MetricsSpec          string  `yaml:"metrics_spec"`     // cron spec with seconds
	DailyCheckSpec       string  `yaml:"daily_check_spec"` // cron spec with seconds
	PriceIntervalSeconds int     `yaml:"price_interval_seconds"`
}

// LedgerConfig seeds the shared ledger at startup.
type LedgerConfig struct {
	PortfolioValue   float64 `yaml:"portfolio_value"`
	DailyProfit      float64 `yaml:"daily_profit"`
	XP               int     `yaml:"xp"`
	StreakDays       int     `yaml:"streak_days"`
	TotalTrades      int     `yaml:"total_trades"`
	SuccessfulTrades int     `yaml:"successful_trades"`
	ScratchCards     int     `yaml:"scratch_cards_per_day"`
}

// BotConfig describes one trading bot.
type BotConfig struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Strategy       string  `yaml:"strategy"`
	InitialBalance float64 `yaml:"initial_balance"`
	SuccessRate    float64 `yaml:"success_rate"`
}

// TradingConfig shapes trade sizing and outcomes.
type TradingConfig struct {
	SizeFraction      float64 `yaml:"size_fraction"`
	SizeCap           float64 `yaml:"size_cap"`
	VolatilityPenalty float64 `yaml:"volatility_penalty"`
	GainMin           float64 `yaml:"gain_min"`
	GainMax           float64 `yaml:"gain_max"`
	LossMin           float64 `yaml:"loss_min"`
	LossMax           float64 `yaml:"loss_max"`
}

// RewardsConfig tunes the gamification grants that ride on top of the
// built-in wheel table.
type RewardsConfig struct {
	ScratchXP int `yaml:"scratch_xp"`
	BonusMin  int `yaml:"bonus_min"`
	BonusMax  int `yaml:"bonus_max"`
	BonusXP   int `yaml:"bonus_xp"`
}

// StorageConfig controls the trade-history database.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite path, ":memory:", or empty to disable
}

// LogConfig controls log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML file and the optional .env overlay. A missing config
// file is not an error: defaults cover everything.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

// TradeTickMin returns the lower trade-tick bound as a duration.
func (c *Config) TradeTickMin() time.Duration {
	return time.Duration(c.Simulation.TradeTickMinSeconds) * time.Second
}

// TradeTickMax returns the upper trade-tick bound as a duration.
func (c *Config) TradeTickMax() time.Duration {
	return time.Duration(c.Simulation.TradeTickMaxSeconds) * time.Second
}

// PriceInterval returns the price refresh cadence as a duration.
func (c *Config) PriceInterval() time.Duration {
	return time.Duration(c.Simulation.PriceIntervalSeconds) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = "*"
	}
	if cfg.Market.Source == "" {
		cfg.Market.Source = "synthetic"
	}
	if len(cfg.Market.BasePrices) == 0 {
		cfg.Market.BasePrices = map[string]float64{"BTC": 67000, "ETH": 2650, "BNB": 580}
	}
	if cfg.Simulation.TradeTickMinSeconds <= 0 {
		cfg.Simulation.TradeTickMinSeconds = 5
	}
	if cfg.Simulation.TradeTickMaxSeconds < cfg.Simulation.TradeTickMinSeconds {
		cfg.Simulation.TradeTickMaxSeconds = 15
	}
	if cfg.Simulation.TradeProbability <= 0 || cfg.Simulation.TradeProbability > 1 {
		cfg.Simulation.TradeProbability = 0.3
	}
	if cfg.Simulation.MetricsSpec == "" {
		cfg.Simulation.MetricsSpec = "*/3 * * * * *"
	}
	if cfg.Simulation.DailyCheckSpec == "" {
		cfg.Simulation.DailyCheckSpec = "*/30 * * * * *"
	}
	if cfg.Simulation.PriceIntervalSeconds <= 0 {
		cfg.Simulation.PriceIntervalSeconds = 30
	}
	if cfg.Ledger.PortfolioValue <= 0 {
		cfg.Ledger.PortfolioValue = 125848.07
	}
	if cfg.Ledger.XP < 0 {
		cfg.Ledger.XP = 0
	}
	if cfg.Ledger.ScratchCards <= 0 {
		cfg.Ledger.ScratchCards = 3
	}
	if len(cfg.Bots) == 0 {
		cfg.Bots = []BotConfig{
			{ID: "alpha_trader", Name: "Alpha Trader", Strategy: "alpha", InitialBalance: 5000},
			{ID: "arbitrage_hunter", Name: "Arbitrage Hunter", Strategy: "arbitrage", InitialBalance: 3000},
			{ID: "trend_follower", Name: "Trend Follower", Strategy: "trend", InitialBalance: 4000},
			{ID: "risk_manager", Name: "Risk Manager", Strategy: "risk", InitialBalance: 2000},
			{ID: "market_maker", Name: "Market Maker", Strategy: "market_maker", InitialBalance: 3500},
		}
	}
	for i := range cfg.Bots {
		if cfg.Bots[i].SuccessRate <= 0 || cfg.Bots[i].SuccessRate > 1 {
			cfg.Bots[i].SuccessRate = 0.87
		}
	}
	if cfg.Trading.SizeFraction <= 0 {
		cfg.Trading.SizeFraction = 0.01
	}
	if cfg.Trading.SizeCap <= 0 {
		cfg.Trading.SizeCap = 100
	}
	if cfg.Trading.VolatilityPenalty <= 0 {
		cfg.Trading.VolatilityPenalty = 0.3
	}
	if cfg.Trading.GainMin <= 0 {
		cfg.Trading.GainMin = 0.02
	}
	if cfg.Trading.GainMax <= cfg.Trading.GainMin {
		cfg.Trading.GainMax = 0.08
	}
	if cfg.Trading.LossMin <= 0 {
		cfg.Trading.LossMin = 0.01
	}
	if cfg.Trading.LossMax <= cfg.Trading.LossMin {
		cfg.Trading.LossMax = 0.05
	}
	if cfg.Rewards.ScratchXP <= 0 {
		cfg.Rewards.ScratchXP = 50
	}
	if cfg.Rewards.BonusMin <= 0 {
		cfg.Rewards.BonusMin = 50
	}
	if cfg.Rewards.BonusMax <= cfg.Rewards.BonusMin {
		cfg.Rewards.BonusMax = 200
	}
	if cfg.Rewards.BonusXP <= 0 {
		cfg.Rewards.BonusXP = 100
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
