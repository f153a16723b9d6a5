package capture

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseRR parses a submitted RR value such as "2.5", " -0.5 " or "3R".
// An optional trailing R or RR (any case) is accepted. NaN and infinities
// are rejected.
func ParseRR(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, "rr"):
		s = s[:len(s)-2]
	case strings.HasSuffix(lower, "r"):
		s = s[:len(s)-1]
	}
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidAmount, raw)
	}
	return v, nil
}

// WinRecordedText is the terminal display of a prompt resolved as a win.
func WinRecordedText(rr float64) string {
	return fmt.Sprintf("WIN recorded (%s RR)", strconv.FormatFloat(rr, 'f', -1, 64))
}
