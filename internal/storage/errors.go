package storage

import (
	"errors"
	"fmt"

	"trade-journal/internal/domain"
)

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a record for the same prompt
	// has already been stored.
	ErrDuplicateKey = errors.New("duplicate key: prompt already recorded")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidateRecord runs domain validation and maps failures to ErrInvalidInput.
func ValidateRecord(r *domain.TradeRecord) error {
	if r == nil {
		return ErrInvalidInput
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
