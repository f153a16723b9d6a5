package clickhouse

import (
	"context"
	"fmt"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// CaptureEventStore implements storage.CaptureEventStore using ClickHouse.
type CaptureEventStore struct {
	conn *Conn
}

// NewCaptureEventStore creates a new CaptureEventStore.
func NewCaptureEventStore(conn *Conn) *CaptureEventStore {
	return &CaptureEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CaptureEventStore = (*CaptureEventStore)(nil)

// Insert adds a single event.
func (s *CaptureEventStore) Insert(ctx context.Context, e *domain.CaptureEvent) error {
	return s.InsertBulk(ctx, []*domain.CaptureEvent{e})
}

// InsertBulk adds multiple events in one batch.
func (s *CaptureEventStore) InsertBulk(ctx context.Context, events []*domain.CaptureEvent) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e == nil || e.Kind == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO capture_events (
			event_time, user_id, prompt_id, kind, outcome, rr, detail
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			e.Time.UTC(), e.UserID, e.PromptID, string(e.Kind), string(e.Outcome), e.RR, e.Detail,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByUser retrieves events for a user ordered by time ASC.
func (s *CaptureEventStore) GetByUser(ctx context.Context, userID string) ([]*domain.CaptureEvent, error) {
	query := `
		SELECT event_time, user_id, prompt_id, kind, outcome, rr, detail
		FROM capture_events
		WHERE user_id = ?
		ORDER BY event_time ASC
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query capture events: %w", err)
	}
	defer rows.Close()

	return scanCaptureEvents(rows)
}

func scanCaptureEvents(rows chRows) ([]*domain.CaptureEvent, error) {
	var events []*domain.CaptureEvent

	for rows.Next() {
		var (
			e             domain.CaptureEvent
			kind, outcome string
		)
		if err := rows.Scan(&e.Time, &e.UserID, &e.PromptID, &kind, &outcome, &e.RR, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan capture event row: %w", err)
		}
		e.Kind = domain.CaptureEventKind(kind)
		e.Outcome = domain.Outcome(outcome)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capture event rows: %w", err)
	}
	return events, nil
}
