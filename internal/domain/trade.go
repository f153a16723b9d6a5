package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidTrade is returned when a record violates the outcome/RR invariant.
var ErrInvalidTrade = errors.New("invalid trade record")

// Outcome is the discrete result of a trade.
// Values match the result column of the trades table.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeBreakEven Outcome = "be"
)

// ParseOutcome maps a select-menu value to an Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(s) {
	case OutcomeWin, OutcomeLoss, OutcomeBreakEven:
		return Outcome(s), true
	}
	return "", false
}

// FixedRR returns the RR implied by outcomes that do not take user input.
// ok is false for OutcomeWin.
func FixedRR(o Outcome) (rr float64, ok bool) {
	switch o {
	case OutcomeLoss:
		return -1, true
	case OutcomeBreakEven:
		return 0, true
	}
	return 0, false
}

// TradeRecord is one completed trade capture.
// Corresponds to the trades / trade_records tables.
type TradeRecord struct {
	ID        int64   // assigned by the store, ascending in arrival order
	UserID    string  // owner identity
	Outcome   Outcome // win | loss | be
	RR        float64 // -1 for loss, 0 for be, user-entered for win
	PromptID  string  // message id of the outcome prompt (empty for legacy rows)
	CreatedAt time.Time
}

// Validate checks the outcome/RR invariant.
func (t *TradeRecord) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidTrade)
	}
	switch t.Outcome {
	case OutcomeWin:
		if math.IsNaN(t.RR) || math.IsInf(t.RR, 0) {
			return fmt.Errorf("%w: win rr must be finite, got %v", ErrInvalidTrade, t.RR)
		}
	case OutcomeLoss, OutcomeBreakEven:
		want, _ := FixedRR(t.Outcome)
		if t.RR != want {
			return fmt.Errorf("%w: %s rr must be %v, got %v", ErrInvalidTrade, t.Outcome, want, t.RR)
		}
	default:
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidTrade, t.Outcome)
	}
	return nil
}
