package memory

import (
	"context"
	"sort"
	"sync"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// CaptureEventStore is an in-memory implementation of storage.CaptureEventStore.
type CaptureEventStore struct {
	mu     sync.RWMutex
	events []*domain.CaptureEvent
}

// NewCaptureEventStore creates a new in-memory capture event store.
func NewCaptureEventStore() *CaptureEventStore {
	return &CaptureEventStore{}
}

var _ storage.CaptureEventStore = (*CaptureEventStore)(nil)

// Insert adds a new event.
func (s *CaptureEventStore) Insert(_ context.Context, e *domain.CaptureEvent) error {
	if e == nil || e.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	s.events = append(s.events, &copy)
	return nil
}

// GetByUser retrieves events for a user ordered by time ASC.
func (s *CaptureEventStore) GetByUser(_ context.Context, userID string) ([]*domain.CaptureEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CaptureEvent
	for _, e := range s.events {
		if e.UserID == userID {
			copy := *e
			result = append(result, &copy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time.Before(result[j].Time)
	})
	return result, nil
}
