package observability

import (
	"context"
	"errors"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// InstrumentedTradeStore records latency and errors for every store call.
type InstrumentedTradeStore struct {
	next     storage.TradeRecordStore
	metrics  *Metrics
	database string
}

// InstrumentTradeStore wraps next; database labels the backend (sqlite, postgres, memory).
func InstrumentTradeStore(next storage.TradeRecordStore, m *Metrics, database string) *InstrumentedTradeStore {
	return &InstrumentedTradeStore{next: next, metrics: m, database: database}
}

var _ storage.TradeRecordStore = (*InstrumentedTradeStore)(nil)

func (s *InstrumentedTradeStore) observe(op string, start time.Time, err error) {
	s.metrics.RecordDBQuery(s.database, op, time.Since(start).Seconds(), err)
}

// Append implements storage.TradeRecordStore.
func (s *InstrumentedTradeStore) Append(ctx context.Context, r *domain.TradeRecord) (int64, error) {
	start := time.Now()
	id, err := s.next.Append(ctx, r)
	s.observe("append", start, countable(err))
	return id, err
}

// ListAscending implements storage.TradeRecordStore.
func (s *InstrumentedTradeStore) ListAscending(ctx context.Context, userID string) ([]*domain.TradeRecord, error) {
	start := time.Now()
	records, err := s.next.ListAscending(ctx, userID)
	s.observe("list_ascending", start, err)
	return records, err
}

// DeleteLastN implements storage.TradeRecordStore.
func (s *InstrumentedTradeStore) DeleteLastN(ctx context.Context, userID string, n int) (int, error) {
	start := time.Now()
	removed, err := s.next.DeleteLastN(ctx, userID, n)
	s.observe("delete_last_n", start, countable(err))
	return removed, err
}

// ExistsForPrompt implements storage.TradeRecordStore.
func (s *InstrumentedTradeStore) ExistsForPrompt(ctx context.Context, promptID string) (bool, error) {
	start := time.Now()
	ok, err := s.next.ExistsForPrompt(ctx, promptID)
	s.observe("exists_for_prompt", start, err)
	return ok, err
}

// countable drops expected outcomes so only backend failures count as errors.
func countable(err error) error {
	if errors.Is(err, storage.ErrDuplicateKey) || errors.Is(err, storage.ErrInvalidInput) {
		return nil
	}
	return err
}
