package ledger

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/blacksultan/sultand/internal/domain"
)

// Seed holds the process-start values of the shared ledger. State is
// volatile: a restart reinitializes everything from the seed.
type Seed struct {
	PortfolioValue    float64
	DailyProfit       float64
	XP                int
	StreakDays        int
	TotalTrades       int
	SuccessfulTrades  int
	SpinAvailable     bool
	ScratchCards      int
	DailyBonusClaimed bool
}

// Ledger is the single source of truth for portfolio value, XP, and the
// reward-resource counters. It is a process-lifetime singleton shared by the
// bot registry, the reward engine, and the gateway; every mutation happens
// under one mutex so readers never observe a torn state (XP bumped but level
// stale, quota consumed but payout missing).
type Ledger struct {
	mu sync.Mutex

	portfolioValue   float64
	dailyProfit      float64
	xp               int
	streakDays       int
	totalTrades      int
	successfulTrades int

	spinAvailable     bool
	lastSpinTime      *time.Time
	scratchRemaining  int
	dailyBonusClaimed bool

	scratchPerDay int
}

// New creates the ledger from its seed values. scratchPerDay is the quota
// restored at every daily boundary.
func New(seed Seed, scratchPerDay int) *Ledger {
	return &Ledger{
		portfolioValue:    seed.PortfolioValue,
		dailyProfit:       seed.DailyProfit,
		xp:                seed.XP,
		streakDays:        seed.StreakDays,
		totalTrades:       seed.TotalTrades,
		successfulTrades:  seed.SuccessfulTrades,
		spinAvailable:     seed.SpinAvailable,
		scratchRemaining:  seed.ScratchCards,
		dailyBonusClaimed: seed.DailyBonusClaimed,
		scratchPerDay:     scratchPerDay,
	}
}

// AddProfit atomically adds the signed amount to both the portfolio value
// and the daily profit. The ledger enforces no lower bound; solvency checks
// happen on the command path before a debit.
func (l *Ledger) AddProfit(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("ledger.AddProfit: amount %v: %w", amount, domain.ErrInvalidArgument)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.portfolioValue += amount
	l.dailyProfit += amount
	return nil
}

// AddXP adds XP and reports whether the derived level increased this call.
func (l *Ledger) AddXP(amount int) (leveledUp bool, err error) {
	if amount < 0 {
		return false, fmt.Errorf("ledger.AddXP: negative amount %d: %w", amount, domain.ErrInvalidArgument)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addXPLocked(amount), nil
}

func (l *Ledger) addXPLocked(amount int) bool {
	before := domain.LevelForXP(l.xp)
	l.xp += amount
	return domain.LevelForXP(l.xp) > before
}

// RecordTrade applies one trade's signed profit and updates the global trade
// counters in the same critical section.
func (l *Ledger) RecordTrade(profit float64, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.portfolioValue += profit
	l.dailyProfit += profit
	l.totalTrades++
	if success {
		l.successfulTrades++
	}
}

// Snapshot returns a consistent point-in-time view of every field.
func (l *Ledger) Snapshot() domain.LedgerView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

func (l *Ledger) viewLocked() domain.LedgerView {
	var lastSpin *time.Time
	if l.lastSpinTime != nil {
		t := *l.lastSpinTime
		lastSpin = &t
	}
	return domain.LedgerView{
		PortfolioValue:        l.portfolioValue,
		DailyProfit:           l.dailyProfit,
		XP:                    l.xp,
		Level:                 domain.LevelForXP(l.xp),
		StreakDays:            l.streakDays,
		TotalTrades:           l.totalTrades,
		SuccessfulTrades:      l.successfulTrades,
		SpinAvailable:         l.spinAvailable,
		LastSpinTime:          lastSpin,
		ScratchCardsRemaining: l.scratchRemaining,
		DailyBonusClaimed:     l.dailyBonusClaimed,
	}
}

// ResetDaily clears the daily-scoped fields and restores the reward quotas.
// Fired by the simulator at the daily boundary; callers guarantee idempotence
// within a boundary minute via their own day stamp.
func (l *Ledger) ResetDaily() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dailyProfit = 0
	l.spinAvailable = true
	l.scratchRemaining = l.scratchPerDay
	l.dailyBonusClaimed = false
}

// Withdraw atomically re-checks solvency and debits the portfolio. Callers
// must hold a payout receipt before invoking it.
func (l *Ledger) Withdraw(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("ledger.Withdraw: amount %v: %w", amount, domain.ErrInvalidArgument)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > l.portfolioValue {
		return fmt.Errorf("ledger.Withdraw: amount %.2f exceeds portfolio %.2f: %w",
			amount, l.portfolioValue, domain.ErrInsufficientFunds)
	}
	l.portfolioValue -= amount
	l.dailyProfit -= amount
	return nil
}

// CanWithdraw is the read-only solvency pre-check used before contacting the
// payout provider.
func (l *Ledger) CanWithdraw(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("ledger.CanWithdraw: amount %v: %w", amount, domain.ErrInvalidArgument)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > l.portfolioValue {
		return fmt.Errorf("ledger.CanWithdraw: amount %.2f exceeds portfolio %.2f: %w",
			amount, l.portfolioValue, domain.ErrInsufficientFunds)
	}
	return nil
}

// RedeemSpin consumes the spin quota and applies the already-drawn wheel
// entry as one atomic unit. Exactly one of two concurrent calls can succeed
// before the next daily reset.
func (l *Ledger) RedeemSpin(now time.Time, entry domain.WheelEntry) (domain.RewardOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.spinAvailable {
		return domain.RewardOutcome{}, fmt.Errorf("ledger.RedeemSpin: spin on cooldown: %w", domain.ErrUnavailable)
	}

	outcome := domain.RewardOutcome{Kind: entry.Kind, Amount: entry.Amount}
	switch entry.Kind {
	case domain.RewardCash:
		l.portfolioValue += entry.Amount
		l.dailyProfit += entry.Amount
	case domain.RewardXP:
		outcome.LeveledUp = l.addXPLocked(int(entry.Amount))
	}

	// Availability is restored only by the daily boundary, even for a
	// free-spin outcome: the extra spin is presentation, not quota.
	l.spinAvailable = false
	l.lastSpinTime = &now
	return outcome, nil
}

// RedeemScratch consumes one scratch card and applies the cash and XP grants
// atomically. The counter never goes negative.
func (l *Ledger) RedeemScratch(cash float64, xp int) (domain.RewardOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scratchRemaining <= 0 {
		return domain.RewardOutcome{}, fmt.Errorf("ledger.RedeemScratch: no cards left: %w", domain.ErrExhausted)
	}
	l.scratchRemaining--
	l.portfolioValue += cash
	l.dailyProfit += cash
	leveledUp := l.addXPLocked(xp)
	return domain.RewardOutcome{
		Kind:           domain.RewardCash,
		Amount:         cash,
		LeveledUp:      leveledUp,
		CardsRemaining: l.scratchRemaining,
	}, nil
}

// RedeemBonus claims the daily bonus once per day, applying the cash and XP
// grants atomically with the claimed flag.
func (l *Ledger) RedeemBonus(cash float64, xp int) (domain.RewardOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dailyBonusClaimed {
		return domain.RewardOutcome{}, fmt.Errorf("ledger.RedeemBonus: %w", domain.ErrAlreadyClaimed)
	}
	l.dailyBonusClaimed = true
	l.portfolioValue += cash
	l.dailyProfit += cash
	leveledUp := l.addXPLocked(xp)
	return domain.RewardOutcome{Kind: domain.RewardCash, Amount: cash, LeveledUp: leveledUp}, nil
}
