// Package notify prints bot and ledger state to the console for the -once
// diagnostic mode.
package notify

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/blacksultan/sultand/internal/domain"
)

// Console renders a bot-status table to a writer.
type Console struct {
	out io.Writer
}

// NewConsole creates a console writing to stdout.
func NewConsole() *Console { return &Console{out: os.Stdout} }

// NewConsoleWriter creates a console for tests.
func NewConsoleWriter(w io.Writer) *Console { return &Console{out: w} }

// PrintStatus renders the ledger summary and one row per bot.
func (c *Console) PrintStatus(view domain.LedgerView, statuses []domain.BotStatus) {
	fmt.Fprintf(c.out, "\n[%s] portfolio $%.2f | today %+.2f | level %d (%d xp) | streak %dd\n",
		time.Now().Format("15:04:05"),
		view.PortfolioValue, view.DailyProfit, view.Level, view.XP, view.StreakDays)

	table := tablewriter.NewWriter(c.out)
	table.Header("Bot", "Strategy", "Active", "Balance", "Today", "P/L today", "Total", "Win%")

	for _, s := range statuses {
		active := "yes"
		if !s.Active {
			active = "no"
		}
		table.Append(
			s.Name,
			string(s.Strategy),
			active,
			fmt.Sprintf("$%.2f", s.Balance),
			fmt.Sprintf("%d", s.TradesToday),
			fmt.Sprintf("%+.2f", s.ProfitToday),
			fmt.Sprintf("%d", s.TotalTrades),
			fmt.Sprintf("%.1f", s.SuccessRate*100),
		)
	}

	table.Render()

	spin := "available"
	if !view.SpinAvailable {
		spin = "spent"
	}
	fmt.Fprintf(c.out, "  rewards: spin %s | %d scratch cards | daily bonus claimed: %v\n",
		spin, view.ScratchCardsRemaining, view.DailyBonusClaimed)
}
