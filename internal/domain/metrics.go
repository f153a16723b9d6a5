package domain

import "github.com/shopspring/decimal"

// Dominance classifies which streak type has been longer.
type Dominance int

const (
	Balanced Dominance = iota
	WinDominant
	LossDominant
)

// Label returns the dashboard headline for the dominance.
func (d Dominance) Label() string {
	switch d {
	case WinDominant:
		return "Winning Momentum Dominant"
	case LossDominant:
		return "Drawdown Phase Dominant"
	default:
		return "Balanced Performance"
	}
}

// String implements fmt.Stringer.
func (d Dominance) String() string {
	switch d {
	case WinDominant:
		return "WIN_DOMINANT"
	case LossDominant:
		return "LOSS_DOMINANT"
	default:
		return "BALANCED"
	}
}

// AggregateMetrics is derived from a user's records on every request.
type AggregateMetrics struct {
	Total      int
	Wins       int
	Losses     int
	BreakEvens int

	TotalRR    float64 // exact chronological sum
	WinRatePct float64 // rounded to one decimal, 0 when empty
	AvgWinRR   float64 // 0 when no wins
	AvgLossRR  float64 // 0 when no losses

	LongestWinStreak  int
	LongestLossStreak int
	Dominance         Dominance

	MaxDrawdownRR float64 // worst peak-to-trough on the equity curve
}

// WinRateString formats the win rate with one decimal ("50.0").
func (m AggregateMetrics) WinRateString() string {
	return decimal.NewFromFloat(m.WinRatePct).StringFixed(1)
}

// TotalRRString formats the total RR with two decimals.
func (m AggregateMetrics) TotalRRString() string {
	return decimal.NewFromFloat(m.TotalRR).StringFixed(2)
}

// AvgWinString formats the average win RR with two decimals.
func (m AggregateMetrics) AvgWinString() string {
	return decimal.NewFromFloat(m.AvgWinRR).StringFixed(2)
}

// AvgLossString formats the average loss RR with two decimals.
func (m AggregateMetrics) AvgLossString() string {
	return decimal.NewFromFloat(m.AvgLossRR).StringFixed(2)
}

// MaxDrawdownString formats the max drawdown with two decimals.
func (m AggregateMetrics) MaxDrawdownString() string {
	return decimal.NewFromFloat(m.MaxDrawdownRR).StringFixed(2)
}
