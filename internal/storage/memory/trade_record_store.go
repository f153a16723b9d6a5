package memory

import (
	"context"
	"sync"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// TradeRecordStore is an in-memory implementation of storage.TradeRecordStore.
type TradeRecordStore struct {
	mu      sync.RWMutex
	seq     int64
	records []*domain.TradeRecord // ascending by ID
	prompts map[string]struct{}   // non-empty PromptIDs
	now     func() time.Time
}

// NewTradeRecordStore creates a new in-memory trade record store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{
		prompts: make(map[string]struct{}),
		now:     time.Now,
	}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Append stores a copy of r and returns its ID.
func (s *TradeRecordStore) Append(_ context.Context, r *domain.TradeRecord) (int64, error) {
	if err := storage.ValidateRecord(r); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.PromptID != "" {
		if _, exists := s.prompts[r.PromptID]; exists {
			return 0, storage.ErrDuplicateKey
		}
		s.prompts[r.PromptID] = struct{}{}
	}

	s.seq++
	copy := *r
	copy.ID = s.seq
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = s.now().UTC()
	}
	s.records = append(s.records, &copy)
	return copy.ID, nil
}

// ListAscending retrieves all records for a user ordered by ID ASC.
func (s *TradeRecordStore) ListAscending(_ context.Context, userID string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, r := range s.records {
		if r.UserID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

// DeleteLastN removes up to n most recent records for a user.
func (s *TradeRecordStore) DeleteLastN(_ context.Context, userID string, n int) (int, error) {
	if n < 1 {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Walk newest first so the most recent n are the ones dropped.
	removed := 0
	drop := make(map[int64]struct{}, n)
	for i := len(s.records) - 1; i >= 0 && removed < n; i-- {
		if s.records[i].UserID == userID {
			drop[s.records[i].ID] = struct{}{}
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	kept := make([]*domain.TradeRecord, 0, len(s.records)-removed)
	for _, r := range s.records {
		if _, ok := drop[r.ID]; ok {
			delete(s.prompts, r.PromptID)
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed, nil
}

// ExistsForPrompt reports whether a record was captured from promptID.
func (s *TradeRecordStore) ExistsForPrompt(_ context.Context, promptID string) (bool, error) {
	if promptID == "" {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.prompts[promptID]
	return ok, nil
}

// Count returns the total number of records across all users.
func (s *TradeRecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
