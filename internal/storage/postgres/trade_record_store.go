package postgres

import (
	"context"
	"fmt"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Append inserts a record. Returns ErrDuplicateKey if prompt_id exists.
func (s *TradeRecordStore) Append(ctx context.Context, r *domain.TradeRecord) (int64, error) {
	if err := storage.ValidateRecord(r); err != nil {
		return 0, err
	}

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var promptID *string
	if r.PromptID != "" {
		promptID = &r.PromptID
	}

	query := `
		INSERT INTO trade_records (user_id, outcome, rr, prompt_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query, r.UserID, string(r.Outcome), r.RR, promptID, createdAt).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert trade record: %w", err)
	}
	return id, nil
}

// ListAscending retrieves all records for a user ordered by id ASC.
func (s *TradeRecordStore) ListAscending(ctx context.Context, userID string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT id, user_id, outcome, rr, prompt_id, created_at
		FROM trade_records
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query trade records: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeRecord
	for rows.Next() {
		var (
			r        domain.TradeRecord
			outcome  string
			promptID *string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &outcome, &r.RR, &promptID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade record: %w", err)
		}
		r.Outcome = domain.Outcome(outcome)
		if promptID != nil {
			r.PromptID = *promptID
		}
		r.CreatedAt = r.CreatedAt.UTC()
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade records: %w", err)
	}
	return result, nil
}

// DeleteLastN removes up to n most recent records for a user.
func (s *TradeRecordStore) DeleteLastN(ctx context.Context, userID string, n int) (int, error) {
	if n < 1 {
		return 0, storage.ErrInvalidInput
	}

	query := `
		DELETE FROM trade_records WHERE id IN (
			SELECT id FROM trade_records
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2
		)
	`

	tag, err := s.pool.Exec(ctx, query, userID, n)
	if err != nil {
		return 0, fmt.Errorf("delete trade records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ExistsForPrompt reports whether a record was captured from promptID.
func (s *TradeRecordStore) ExistsForPrompt(ctx context.Context, promptID string) (bool, error) {
	if promptID == "" {
		return false, nil
	}

	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM trade_records WHERE prompt_id = $1`, promptID).Scan(&one)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("check prompt: %w", err)
	}
	return true, nil
}
