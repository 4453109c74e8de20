package rewards

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacksultan/sultand/internal/application/ledger"
	"github.com/blacksultan/sultand/internal/domain"
)

type scriptRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *scriptRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ii%len(r.ints)]
	r.ii++
	return v % n
}

func newTestEngine(r domain.Rand) (*Engine, *ledger.Ledger) {
	led := ledger.New(ledger.Seed{PortfolioValue: 1000, SpinAvailable: true, ScratchCards: 3}, 3)
	return New(led, r, DefaultConfig()), led
}

func TestSpinWheel_CashEntry(t *testing.T) {
	// 0.35 lands on the second entry: $100 cash.
	e, led := newTestEngine(&scriptRand{floats: []float64{0.35}})

	outcome, err := e.SpinWheel()
	require.NoError(t, err)
	assert.Equal(t, domain.RewardCash, outcome.Kind)
	assert.InDelta(t, 100.0, outcome.Amount, 0.001)

	v := led.Snapshot()
	assert.InDelta(t, 1100.0, v.PortfolioValue, 0.001)
	assert.False(t, v.SpinAvailable)
}

func TestSpinWheel_SecondSpinUnavailable(t *testing.T) {
	e, _ := newTestEngine(&scriptRand{floats: []float64{0.1}})

	_, err := e.SpinWheel()
	require.NoError(t, err)

	_, err = e.SpinWheel()
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestSpinWheel_AvailableAgainAfterReset(t *testing.T) {
	e, led := newTestEngine(&scriptRand{floats: []float64{0.1}})

	_, err := e.SpinWheel()
	require.NoError(t, err)

	led.ResetDaily()

	_, err = e.SpinWheel()
	assert.NoError(t, err)
}

func TestSpinWheel_ConcurrentExactlyOneWins(t *testing.T) {
	e, _ := newTestEngine(&scriptRand{floats: []float64{0.1}})

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.SpinWheel()
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestScratchCard(t *testing.T) {
	// ints pick index 3 from the amount set: $100.
	e, led := newTestEngine(&scriptRand{ints: []int{3}})

	outcome, err := e.ScratchCard()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, outcome.Amount, 0.001)
	assert.Equal(t, 2, outcome.CardsRemaining)

	v := led.Snapshot()
	assert.InDelta(t, 1100.0, v.PortfolioValue, 0.001)
	assert.Equal(t, 50, v.XP)
	assert.Equal(t, 2, v.ScratchCardsRemaining)
}

func TestScratchCard_Exhausted(t *testing.T) {
	e, led := newTestEngine(&scriptRand{ints: []int{0}})

	for i := 0; i < 3; i++ {
		_, err := e.ScratchCard()
		require.NoError(t, err)
	}

	_, err := e.ScratchCard()
	assert.ErrorIs(t, err, domain.ErrExhausted)
	assert.Equal(t, 0, led.Snapshot().ScratchCardsRemaining)
}

func TestClaimDailyBonus(t *testing.T) {
	// IntN(151) returns 70 → $120 bonus.
	e, led := newTestEngine(&scriptRand{ints: []int{70}})

	outcome, err := e.ClaimDailyBonus()
	require.NoError(t, err)
	assert.InDelta(t, 120.0, outcome.Amount, 0.001)

	v := led.Snapshot()
	assert.InDelta(t, 1120.0, v.PortfolioValue, 0.001)
	assert.Equal(t, 100, v.XP)
	assert.True(t, v.DailyBonusClaimed)

	_, err = e.ClaimDailyBonus()
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
}

func TestClaimDailyBonus_BoundedRange(t *testing.T) {
	for _, draw := range []int{0, 75, 150} {
		e, _ := newTestEngine(&scriptRand{ints: []int{draw}})
		outcome, err := e.ClaimDailyBonus()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, outcome.Amount, 50.0)
		assert.LessOrEqual(t, outcome.Amount, 200.0)
	}
}

func TestStatus(t *testing.T) {
	e, led := newTestEngine(&scriptRand{ints: []int{0}})
	_, err := led.AddXP(8750)
	require.NoError(t, err)

	st := e.Status()
	assert.Equal(t, 9, st.Level)
	assert.Equal(t, 8750, st.XP)
	assert.Equal(t, 250, st.XPToNextLevel)
	assert.True(t, st.SpinAvailable)
	assert.Equal(t, 3, st.ScratchCards)
	assert.False(t, st.DailyBonusClaimed)
}
