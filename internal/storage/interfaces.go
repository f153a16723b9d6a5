package storage

import (
	"context"

	"trade-journal/internal/domain"
)

// TradeRecordStore provides access to per-user trade history.
// Implementations serialize appends so ID order equals arrival order.
type TradeRecordStore interface {
	// Append validates and persists a record, returning the assigned ID.
	// Returns ErrInvalidInput on an invariant violation and ErrDuplicateKey
	// if a record with the same non-empty PromptID exists.
	Append(ctx context.Context, r *domain.TradeRecord) (int64, error)

	// ListAscending retrieves all records for a user ordered by ID ASC.
	ListAscending(ctx context.Context, userID string) ([]*domain.TradeRecord, error)

	// DeleteLastN removes up to n most recent records for a user and
	// returns the number actually removed.
	DeleteLastN(ctx context.Context, userID string, n int) (int, error)

	// ExistsForPrompt reports whether a record was captured from promptID.
	ExistsForPrompt(ctx context.Context, promptID string) (bool, error)
}

// CaptureEventStore is an append-only journal of capture flow transitions.
type CaptureEventStore interface {
	// Insert adds a new event.
	Insert(ctx context.Context, e *domain.CaptureEvent) error

	// GetByUser retrieves events for a user ordered by time ASC.
	GetByUser(ctx context.Context, userID string) ([]*domain.CaptureEvent, error)
}
