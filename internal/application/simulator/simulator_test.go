package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacksultan/sultand/internal/application/bots"
	"github.com/blacksultan/sultand/internal/application/ledger"
	"github.com/blacksultan/sultand/internal/bus"
	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/ports"
)

type scriptRand struct {
	floats []float64
	fi     int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *scriptRand) IntN(n int) int { return 0 }

// fixedMarket serves one unchanging snapshot.
type fixedMarket struct {
	snapshot domain.MarketSnapshot
}

func (m *fixedMarket) GetCurrentPrices(ctx context.Context) domain.MarketSnapshot {
	return m.snapshot
}

// recordingStore captures persisted trades and summaries in memory.
type recordingStore struct {
	trades    []domain.TradeResult
	summaries []ports.DailySummary
}

func (s *recordingStore) SaveTrade(ctx context.Context, trade domain.TradeResult) error {
	s.trades = append(s.trades, trade)
	return nil
}

func (s *recordingStore) GetRecentTrades(ctx context.Context, limit int) ([]domain.TradeResult, error) {
	return s.trades, nil
}

func (s *recordingStore) SaveDailySummary(ctx context.Context, summary ports.DailySummary) error {
	s.summaries = append(s.summaries, summary)
	return nil
}

func (s *recordingStore) GetDailySummaries(ctx context.Context, since time.Time) ([]ports.DailySummary, error) {
	return s.summaries, nil
}

func (s *recordingStore) Close() error { return nil }

func testFixture(simRand, botRand domain.Rand) (*Simulator, *ledger.Ledger, *bus.Bus, *recordingStore) {
	led := ledger.New(ledger.Seed{PortfolioValue: 10000, SpinAvailable: true, ScratchCards: 3}, 3)
	registry := bots.New([]bots.Spec{{
		ID:             "risk_manager",
		Name:           "Risk Manager",
		Strategy:       domain.StrategyRisk,
		InitialBalance: 2000,
		SuccessRate:    0.87,
	}}, led, botRand, bots.DefaultConfig())

	market := &fixedMarket{snapshot: domain.MarketSnapshot{
		Quotes:    map[string]domain.Quote{"BTC": {Price: 67000, Volatility: 0}},
		Timestamp: time.Now().UTC(),
	}}
	store := &recordingStore{}
	b := bus.New()

	cfg := DefaultConfig()
	cfg.TradeProbability = 1.0
	sim := New(led, registry, market, store, b, simRand, cfg)
	return sim, led, b, store
}

func TestTradeTick_BroadcastsExactlyOneTrade(t *testing.T) {
	// Bot draws: trigger 0.05 (trade), success 0.0 (win), gain 0.5 (5% of $20).
	sim, led, b, store := testFixture(
		&scriptRand{floats: []float64{0.0}},
		&scriptRand{floats: []float64{0.05, 0.0, 0.5}},
	)
	sub := b.Subscribe(8)
	defer b.Unsubscribe(sub)

	sim.TradeTick(context.Background())

	got := <-sub.C()
	require.Equal(t, domain.EventTradeExecuted, got.Type)
	trade, ok := got.Payload.(domain.TradeResult)
	require.True(t, ok)
	assert.Equal(t, "risk_manager", trade.BotID)
	assert.True(t, trade.Success)
	assert.InDelta(t, 1.0, trade.Profit, 0.001)
	assert.InDelta(t, 2001.0, trade.NewBalance, 0.001)

	got = <-sub.C()
	require.Equal(t, domain.EventDashboardUpdate, got.Type)
	update, ok := got.Payload.(domain.DashboardUpdate)
	require.True(t, ok)
	assert.InDelta(t, 10001.0, update.Ledger.PortfolioValue, 0.001)
	assert.Equal(t, 1, update.Ledger.TotalTrades)
	assert.Contains(t, update.Market.Quotes, "BTC")

	// Nothing else was published.
	select {
	case e := <-sub.C():
		t.Fatalf("unexpected extra event %v", e.Type)
	default:
	}

	require.Len(t, store.trades, 1)
	assert.Equal(t, trade.TradeID, store.trades[0].TradeID)
	assert.Equal(t, 10, led.Snapshot().XP)
}

func TestTradeTick_NoSignalPublishesOnlyDashboard(t *testing.T) {
	// The bot's trigger draw of 0.5 exceeds the risk strategy's 0.10.
	sim, _, b, store := testFixture(
		&scriptRand{floats: []float64{0.0}},
		&scriptRand{floats: []float64{0.5}},
	)
	sub := b.Subscribe(8)
	defer b.Unsubscribe(sub)

	sim.TradeTick(context.Background())

	got := <-sub.C()
	assert.Equal(t, domain.EventDashboardUpdate, got.Type)
	assert.Empty(t, store.trades)
}

func TestTradeTick_ProbabilityGateSkipsBot(t *testing.T) {
	cfgRand := &scriptRand{floats: []float64{0.9}} // above the gate
	sim, led, b, _ := testFixture(cfgRand, &scriptRand{})
	sim.cfg.TradeProbability = 0.3
	sub := b.Subscribe(8)
	defer b.Unsubscribe(sub)

	sim.TradeTick(context.Background())

	got := <-sub.C()
	assert.Equal(t, domain.EventDashboardUpdate, got.Type)
	assert.Equal(t, 0, led.Snapshot().TotalTrades)
}

func TestMetricsTick(t *testing.T) {
	sim, _, b, _ := testFixture(&scriptRand{floats: []float64{0.5}}, &scriptRand{})
	sub := b.Subscribe(8)
	defer b.Unsubscribe(sub)

	sim.MetricsTick()

	got := <-sub.C()
	require.Equal(t, domain.EventMetrics, got.Type)
	m, ok := got.Payload.(domain.SystemMetrics)
	require.True(t, ok)
	assert.GreaterOrEqual(t, m.CPUUsage, 15.0)
	assert.LessOrEqual(t, m.CPUUsage, 45.0)
	assert.GreaterOrEqual(t, m.MemoryUsage, 60.0)
	assert.LessOrEqual(t, m.MemoryUsage, 85.0)
	assert.Equal(t, 1, m.ActiveBots)

	got = <-sub.C()
	assert.Equal(t, domain.EventDashboardUpdate, got.Type)
}

func TestCheckDailyReset_FiresOncePerDay(t *testing.T) {
	sim, led, _, store := testFixture(&scriptRand{}, &scriptRand{})
	ctx := context.Background()

	require.NoError(t, led.AddProfit(500))
	_, err := led.RedeemSpin(time.Now(), domain.WheelEntry{Kind: domain.RewardCash, Amount: 50})
	require.NoError(t, err)

	// Same day: no-op.
	assert.False(t, sim.CheckDailyReset(ctx, time.Now()))
	assert.False(t, led.Snapshot().SpinAvailable)

	tomorrow := time.Now().AddDate(0, 0, 1)
	assert.True(t, sim.CheckDailyReset(ctx, tomorrow))

	v := led.Snapshot()
	assert.True(t, v.SpinAvailable)
	assert.Equal(t, 3, v.ScratchCardsRemaining)
	assert.InDelta(t, 0.0, v.DailyProfit, 0.001)

	// The closing figures were captured before the wipe.
	require.Len(t, store.summaries, 1)
	assert.Equal(t, tomorrow.Format("2006-01-02"), store.summaries[0].Day)
	assert.InDelta(t, 550.0, store.summaries[0].DailyProfit, 0.001)

	// Repeat fires within the new day are no-ops.
	assert.False(t, sim.CheckDailyReset(ctx, tomorrow))
	require.Len(t, store.summaries, 1)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	sim, _, _, _ := testFixture(&scriptRand{floats: []float64{0.5}}, &scriptRand{})
	sim.cfg.TradeTickMin = time.Hour
	sim.cfg.TradeTickMax = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("simulator did not stop after cancel")
	}
}

func TestLastMarket_UpdatedByTradeTick(t *testing.T) {
	sim, _, _, _ := testFixture(&scriptRand{floats: []float64{0.9}}, &scriptRand{})
	assert.Empty(t, sim.LastMarket().Quotes)

	sim.TradeTick(context.Background())
	assert.Contains(t, sim.LastMarket().Quotes, "BTC")
}
