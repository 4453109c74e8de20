package domain

// RewardKind classifies what a gamification reward grants.
type RewardKind string

const (
	RewardCash       RewardKind = "cash"
	RewardXP         RewardKind = "xp"
	RewardMultiplier RewardKind = "multiplier"
	RewardFreeSpin   RewardKind = "free_spin"
)

// RewardOutcome is the transient result handed back to the caller of a
// gamification operation. It is never persisted.
type RewardOutcome struct {
	Kind           RewardKind `json:"type"`
	Amount         float64    `json:"amount"`
	LeveledUp      bool       `json:"level_up"`
	CardsRemaining int        `json:"cards_remaining,omitempty"`
}

// WheelEntry is one slot of the spin wheel. Probabilities across the table
// are expected to sum to 1.0.
type WheelEntry struct {
	Kind        RewardKind `yaml:"kind"`
	Amount      float64    `yaml:"amount"`
	Probability float64    `yaml:"probability"`
}

// PickWheelEntry selects an entry by cumulative probability. If rounding
// leaves the draw past the last cumulative bound, the first entry is the
// deterministic fallback.
func PickWheelEntry(r Rand, table []WheelEntry) WheelEntry {
	draw := r.Float64()
	cumulative := 0.0
	for _, entry := range table {
		cumulative += entry.Probability
		if draw <= cumulative {
			return entry
		}
	}
	return table[0]
}
