package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blacksultan/sultand/config"
	"github.com/blacksultan/sultand/internal/adapters/gateway"
	"github.com/blacksultan/sultand/internal/adapters/marketdata"
	"github.com/blacksultan/sultand/internal/adapters/notify"
	"github.com/blacksultan/sultand/internal/adapters/payout"
	"github.com/blacksultan/sultand/internal/adapters/storage"
	"github.com/blacksultan/sultand/internal/application/bots"
	"github.com/blacksultan/sultand/internal/application/ledger"
	"github.com/blacksultan/sultand/internal/application/rewards"
	"github.com/blacksultan/sultand/internal/application/simulator"
	"github.com/blacksultan/sultand/internal/bus"
	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one trade tick, print the bot table, and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("sultand starting",
		"config", *configPath,
		"market_source", cfg.Market.Source,
		"listen", cfg.Server.ListenAddr,
		"once", *once,
	)

	rand := domain.SystemRand()

	led := ledger.New(ledger.Seed{
		PortfolioValue:   cfg.Ledger.PortfolioValue,
		DailyProfit:      cfg.Ledger.DailyProfit,
		XP:               cfg.Ledger.XP,
		StreakDays:       cfg.Ledger.StreakDays,
		TotalTrades:      cfg.Ledger.TotalTrades,
		SuccessfulTrades: cfg.Ledger.SuccessfulTrades,
		SpinAvailable:    true,
		ScratchCards:     cfg.Ledger.ScratchCards,
	}, cfg.Ledger.ScratchCards)

	specs := make([]bots.Spec, 0, len(cfg.Bots))
	for _, b := range cfg.Bots {
		strategy, err := domain.ParseStrategy(b.Strategy)
		if err != nil {
			slog.Error("invalid bot config", "bot", b.ID, "err", err)
			os.Exit(1)
		}
		specs = append(specs, bots.Spec{
			ID:             b.ID,
			Name:           b.Name,
			Strategy:       strategy,
			InitialBalance: b.InitialBalance,
			SuccessRate:    b.SuccessRate,
		})
	}

	botCfg := bots.DefaultConfig()
	botCfg.SizeFraction = cfg.Trading.SizeFraction
	botCfg.SizeCap = cfg.Trading.SizeCap
	botCfg.VolatilityPenalty = cfg.Trading.VolatilityPenalty
	botCfg.GainMin = cfg.Trading.GainMin
	botCfg.GainMax = cfg.Trading.GainMax
	botCfg.LossMin = cfg.Trading.LossMin
	botCfg.LossMax = cfg.Trading.LossMax
	registry := bots.New(specs, led, rand, botCfg)

	rewardCfg := rewards.DefaultConfig()
	rewardCfg.ScratchXP = cfg.Rewards.ScratchXP
	rewardCfg.BonusMin = cfg.Rewards.BonusMin
	rewardCfg.BonusMax = cfg.Rewards.BonusMax
	rewardCfg.BonusXP = cfg.Rewards.BonusXP
	rewardEngine := rewards.New(led, rand, rewardCfg)

	synthetic := marketdata.NewSynthetic(cfg.Market.BasePrices, rand)
	var market ports.MarketDataProvider = synthetic
	if cfg.Market.Source == "coingecko" {
		market = marketdata.NewCoinGecko(cfg.Market.BaseURL, synthetic)
	}

	var store ports.TradeStorage
	if cfg.Storage.DSN != "" {
		sqlStore, err := storage.NewSQLite(cfg.Storage.DSN)
		if err != nil {
			slog.Warn("failed to open trade storage, history disabled", "err", err, "dsn", cfg.Storage.DSN)
		} else {
			store = sqlStore
			defer sqlStore.Close()
		}
	}

	eventBus := bus.New()

	simCfg := simulator.DefaultConfig()
	simCfg.TradeTickMin = cfg.TradeTickMin()
	simCfg.TradeTickMax = cfg.TradeTickMax()
	simCfg.TradeProbability = cfg.Simulation.TradeProbability
	simCfg.MetricsSpec = cfg.Simulation.MetricsSpec
	simCfg.DailyCheckSpec = cfg.Simulation.DailyCheckSpec
	simCfg.PriceInterval = cfg.PriceInterval()
	sim := simulator.New(led, registry, market, store, eventBus, rand, simCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		sim.TradeTick(ctx)
		notify.NewConsole().PrintStatus(led.Snapshot(), registry.Statuses())
		return
	}

	srv := gateway.New(led, registry, rewardEngine, eventBus, payout.NewPayPal(), store,
		sim.LastMarket, cfg.Server.CORSOrigin)
	httpServer := &http.Server{Addr: cfg.Server.ListenAddr, Handler: srv.Routes()}

	go func() {
		slog.Info("gateway listening", "addr", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("gateway exited", "err", err)
			cancel()
		}
	}()

	if err := sim.Run(ctx); err != nil {
		slog.Error("simulator exited with error", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("gateway shutdown", "err", err)
	}

	slog.Info("sultand stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
