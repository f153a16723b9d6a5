package commands

import (
	"fmt"
	"strings"

	"trade-journal/internal/domain"
)

// Summary formats metrics as a plain-text report.
func Summary(m domain.AggregateMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total trades:  %d (W %d / L %d / BE %d)\n", m.Total, m.Wins, m.Losses, m.BreakEvens)
	fmt.Fprintf(&b, "Win rate:      %s%%\n", m.WinRateString())
	fmt.Fprintf(&b, "Total RR:      %s RR\n", m.TotalRRString())
	fmt.Fprintf(&b, "Avg win:       %s RR\n", m.AvgWinString())
	fmt.Fprintf(&b, "Avg loss:      %s RR\n", m.AvgLossString())
	fmt.Fprintf(&b, "Max drawdown:  %s RR\n", m.MaxDrawdownString())
	fmt.Fprintf(&b, "Highest win:   %d\n", m.LongestWinStreak)
	fmt.Fprintf(&b, "Highest loss:  %d\n", m.LongestLossStreak)
	fmt.Fprintf(&b, "%s\n", m.Dominance.Label())
	return b.String()
}
