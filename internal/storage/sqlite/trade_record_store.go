package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using SQLite.
type TradeRecordStore struct {
	db *DB
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(db *DB) *TradeRecordStore {
	return &TradeRecordStore{db: db}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Append inserts a record. Returns ErrDuplicateKey if promptId exists.
func (s *TradeRecordStore) Append(ctx context.Context, r *domain.TradeRecord) (int64, error) {
	if err := storage.ValidateRecord(r); err != nil {
		return 0, err
	}

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (userId, result, rr, timestamp, promptId) VALUES (?, ?, ?, ?, ?)`,
		r.UserID, string(r.Outcome), r.RR, createdAt.UTC().Format(time.DateTime), nullString(r.PromptID),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert trade: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListAscending retrieves all records for a user ordered by id ASC.
func (s *TradeRecordStore) ListAscending(ctx context.Context, userID string) ([]*domain.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, userId, result, rr, timestamp, promptId
		FROM trades
		WHERE userId = ?
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeRecord
	for rows.Next() {
		var (
			r        domain.TradeRecord
			outcome  string
			ts       sql.NullString
			promptID sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &outcome, &r.RR, &ts, &promptID); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		r.Outcome = domain.Outcome(outcome)
		r.PromptID = promptID.String
		r.CreatedAt = parseTimestamp(ts.String)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return result, nil
}

// DeleteLastN removes up to n most recent records for a user.
func (s *TradeRecordStore) DeleteLastN(ctx context.Context, userID string, n int) (int, error) {
	if n < 1 {
		return 0, storage.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM trades WHERE id IN (
			SELECT id FROM trades WHERE userId = ?
			ORDER BY id DESC LIMIT ?
		)
	`, userID, n)
	if err != nil {
		return 0, fmt.Errorf("delete trades: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// ExistsForPrompt reports whether a record was captured from promptID.
func (s *TradeRecordStore) ExistsForPrompt(ctx context.Context, promptID string) (bool, error) {
	if promptID == "" {
		return false, nil
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE promptId = ?`, promptID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check prompt: %w", err)
	}
	return count > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTimestamp accepts the CURRENT_TIMESTAMP layout and RFC 3339.
// Unparseable values yield the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.DateTime, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
