package rewards

import (
	"time"

	"github.com/blacksultan/sultand/internal/application/ledger"
	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/metrics"
)

// Config carries the reward tables. Probabilities and amounts are
// configuration, not invariants; defaults mirror the dashboard's historical
// tables.
type Config struct {
	Wheel          []domain.WheelEntry
	ScratchAmounts []float64
	ScratchXP      int
	BonusMin       int
	BonusMax       int
	BonusXP        int
}

// DefaultConfig returns the historical reward tables: a weighted wheel
// summing to 1.0, a fixed discrete scratch set, and a 50-200 bonus range.
func DefaultConfig() Config {
	return Config{
		Wheel: []domain.WheelEntry{
			{Kind: domain.RewardCash, Amount: 50, Probability: 0.30},
			{Kind: domain.RewardCash, Amount: 100, Probability: 0.20},
			{Kind: domain.RewardCash, Amount: 250, Probability: 0.10},
			{Kind: domain.RewardXP, Amount: 200, Probability: 0.25},
			{Kind: domain.RewardMultiplier, Amount: 1.5, Probability: 0.10},
			{Kind: domain.RewardFreeSpin, Amount: 1, Probability: 0.05},
		},
		ScratchAmounts: []float64{25, 50, 75, 100, 150, 200},
		ScratchXP:      50,
		BonusMin:       50,
		BonusMax:       200,
		BonusXP:        100,
	}
}

// Status is the gamification summary served to the dashboard.
type Status struct {
	Level             int  `json:"user_level"`
	XP                int  `json:"user_xp"`
	XPToNextLevel     int  `json:"xp_to_next_level"`
	StreakDays        int  `json:"streak_days"`
	SpinAvailable     bool `json:"spin_wheel_available"`
	ScratchCards      int  `json:"scratch_cards_available"`
	DailyBonusClaimed bool `json:"daily_bonus_claimed"`
	TotalTrades       int  `json:"total_trades"`
	SuccessfulTrades  int  `json:"successful_trades"`
}

// Engine implements the gamification operations over the shared ledger.
// The quota check and the payout are one atomic unit inside the ledger, so
// concurrent duplicate calls cannot both succeed.
type Engine struct {
	ledger *ledger.Ledger
	rand   domain.Rand
	cfg    Config
}

// New creates the reward engine.
func New(led *ledger.Ledger, r domain.Rand, cfg Config) *Engine {
	return &Engine{ledger: led, rand: r, cfg: cfg}
}

// SpinWheel draws one entry from the weighted table and redeems it. Fails
// with ErrUnavailable while the once-per-day quota is spent; the daily
// boundary restores it.
func (e *Engine) SpinWheel() (domain.RewardOutcome, error) {
	entry := domain.PickWheelEntry(e.rand, e.cfg.Wheel)
	outcome, err := e.ledger.RedeemSpin(time.Now().UTC(), entry)
	if err != nil {
		return domain.RewardOutcome{}, err
	}
	metrics.IncReward("spin")
	return outcome, nil
}

// ScratchCard consumes one card for a cash reward from the fixed set plus a
// fixed XP grant. Fails with ErrExhausted when no cards remain.
func (e *Engine) ScratchCard() (domain.RewardOutcome, error) {
	cash := e.cfg.ScratchAmounts[e.rand.IntN(len(e.cfg.ScratchAmounts))]
	outcome, err := e.ledger.RedeemScratch(cash, e.cfg.ScratchXP)
	if err != nil {
		return domain.RewardOutcome{}, err
	}
	metrics.IncReward("scratch")
	return outcome, nil
}

// ClaimDailyBonus grants a bounded uniform cash amount plus a fixed XP grant,
// once per day. Fails with ErrAlreadyClaimed until the daily boundary.
func (e *Engine) ClaimDailyBonus() (domain.RewardOutcome, error) {
	cash := float64(e.cfg.BonusMin + e.rand.IntN(e.cfg.BonusMax-e.cfg.BonusMin+1))
	outcome, err := e.ledger.RedeemBonus(cash, e.cfg.BonusXP)
	if err != nil {
		return domain.RewardOutcome{}, err
	}
	metrics.IncReward("daily_bonus")
	return outcome, nil
}

// Status reports reward availability from a consistent ledger snapshot.
func (e *Engine) Status() Status {
	view := e.ledger.Snapshot()
	return Status{
		Level:             view.Level,
		XP:                view.XP,
		XPToNextLevel:     view.XPToNextLevel(),
		StreakDays:        view.StreakDays,
		SpinAvailable:     view.SpinAvailable,
		ScratchCards:      view.ScratchCardsRemaining,
		DailyBonusClaimed: view.DailyBonusClaimed,
		TotalTrades:       view.TotalTrades,
		SuccessfulTrades:  view.SuccessfulTrades,
	}
}
