// Package stats derives performance metrics from a user's trade history.
package stats

import (
	"math"

	"trade-journal/internal/domain"
)

// Compute calculates all metrics from records in chronological order.
// Records must already be sorted ascending by ID; the store guarantees this.
func Compute(records []*domain.TradeRecord) domain.AggregateMetrics {
	var m domain.AggregateMetrics
	if len(records) == 0 {
		return m
	}

	var (
		sumWin, sumLoss float64
		curWin, curLoss int
	)

	for _, r := range records {
		m.Total++
		m.TotalRR += r.RR

		switch r.Outcome {
		case domain.OutcomeWin:
			m.Wins++
			sumWin += r.RR
			curWin++
			curLoss = 0
		case domain.OutcomeLoss:
			m.Losses++
			sumLoss += r.RR
			curLoss++
			curWin = 0
		default:
			// break-even interrupts both streaks
			m.BreakEvens++
			curWin = 0
			curLoss = 0
		}

		if curWin > m.LongestWinStreak {
			m.LongestWinStreak = curWin
		}
		if curLoss > m.LongestLossStreak {
			m.LongestLossStreak = curLoss
		}
	}

	m.WinRatePct = computeWinRate(m.Wins, m.Total)
	if m.Wins > 0 {
		m.AvgWinRR = sumWin / float64(m.Wins)
	}
	if m.Losses > 0 {
		m.AvgLossRR = sumLoss / float64(m.Losses)
	}
	m.Dominance = computeDominance(m.LongestWinStreak, m.LongestLossStreak)
	m.MaxDrawdownRR = computeMaxDrawdown(EquityCurve(records))

	return m
}

// EquityCurve returns the running cumulative RR, one point per record.
func EquityCurve(records []*domain.TradeRecord) []float64 {
	curve := make([]float64, len(records))
	cumulative := 0.0
	for i, r := range records {
		cumulative += r.RR
		curve[i] = cumulative
	}
	return curve
}

// computeWinRate returns wins/total as a percentage rounded to one decimal.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}

func computeDominance(win, loss int) domain.Dominance {
	switch {
	case win > loss:
		return domain.WinDominant
	case loss > win:
		return domain.LossDominant
	default:
		return domain.Balanced
	}
}

// computeMaxDrawdown calculates the maximum peak-to-trough decline of an
// equity curve. The starting balance of zero counts as the first peak.
func computeMaxDrawdown(curve []float64) float64 {
	peak := 0.0
	maxDrawdown := 0.0

	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if dd := peak - v; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}
