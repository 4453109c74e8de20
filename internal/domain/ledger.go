package domain

import "time"

// xpPerLevel is the XP required per level: level = floor(xp/1000) + 1.
const xpPerLevel = 1000

// LedgerView is a consistent point-in-time copy of the shared ledger,
// safe to hand to readers without further locking.
type LedgerView struct {
	PortfolioValue        float64    `json:"portfolio_value"`
	DailyProfit           float64    `json:"daily_profit"`
	XP                    int        `json:"user_xp"`
	Level                 int        `json:"user_level"`
	StreakDays            int        `json:"streak_days"`
	TotalTrades           int        `json:"total_trades"`
	SuccessfulTrades      int        `json:"successful_trades"`
	SpinAvailable         bool       `json:"spin_wheel_available"`
	LastSpinTime          *time.Time `json:"last_spin_time,omitempty"`
	ScratchCardsRemaining int        `json:"scratch_cards_available"`
	DailyBonusClaimed     bool       `json:"daily_bonus_claimed"`
}

// DailyProfitPct returns the day's profit as a percentage of portfolio value.
func (v LedgerView) DailyProfitPct() float64 {
	if v.PortfolioValue == 0 {
		return 0
	}
	return v.DailyProfit / v.PortfolioValue * 100
}

// XPToNextLevel returns the XP still needed to reach the next level.
func (v LedgerView) XPToNextLevel() int {
	return xpPerLevel - v.XP%xpPerLevel
}

// LevelForXP derives the level for a given XP total. Level is always
// computed from XP, never stored independently.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/xpPerLevel + 1
}
