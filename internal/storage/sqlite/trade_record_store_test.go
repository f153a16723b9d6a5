package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTradeRecordStore_AppendAndList(t *testing.T) {
	store := NewTradeRecordStore(setupTestDB(t))
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	id1, err := store.Append(ctx, &domain.TradeRecord{
		UserID: "u1", Outcome: domain.OutcomeWin, RR: 2.5, PromptID: "m1", CreatedAt: created,
	})
	require.NoError(t, err)
	id2, err := store.Append(ctx, &domain.TradeRecord{UserID: "u1", Outcome: domain.OutcomeLoss, RR: -1})
	require.NoError(t, err)
	_, err = store.Append(ctx, &domain.TradeRecord{UserID: "u2", Outcome: domain.OutcomeBreakEven})
	require.NoError(t, err)

	assert.Less(t, id1, id2)

	got, err := store.ListAscending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, domain.OutcomeWin, got[0].Outcome)
	assert.InDelta(t, 2.5, got[0].RR, 1e-9)
	assert.Equal(t, "m1", got[0].PromptID)
	assert.True(t, created.Equal(got[0].CreatedAt), "created_at round trip: %v", got[0].CreatedAt)

	assert.Equal(t, domain.OutcomeLoss, got[1].Outcome)
	assert.Empty(t, got[1].PromptID)
}

func TestTradeRecordStore_DuplicatePrompt(t *testing.T) {
	store := NewTradeRecordStore(setupTestDB(t))
	ctx := context.Background()

	r := &domain.TradeRecord{UserID: "u1", Outcome: domain.OutcomeBreakEven, PromptID: "m1"}
	_, err := store.Append(ctx, r)
	require.NoError(t, err)

	_, err = store.Append(ctx, r)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	exists, err := store.ExistsForPrompt(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsForPrompt(ctx, "other")
	require.NoError(t, err)
	assert.False(t, exists)

	// empty prompt ids are stored as NULL and never collide
	for i := 0; i < 2; i++ {
		_, err := store.Append(ctx, &domain.TradeRecord{UserID: "u1", Outcome: domain.OutcomeLoss, RR: -1})
		require.NoError(t, err)
	}
}

func TestTradeRecordStore_InvalidInput(t *testing.T) {
	store := NewTradeRecordStore(setupTestDB(t))

	_, err := store.Append(context.Background(), &domain.TradeRecord{UserID: "u1", Outcome: domain.OutcomeLoss, RR: 3})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.DeleteLastN(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestTradeRecordStore_DeleteLastN(t *testing.T) {
	store := NewTradeRecordStore(setupTestDB(t))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := store.Append(ctx, &domain.TradeRecord{UserID: "u1", Outcome: domain.OutcomeWin, RR: float64(i)})
		require.NoError(t, err)
	}
	_, err := store.Append(ctx, &domain.TradeRecord{UserID: "u2", Outcome: domain.OutcomeLoss, RR: -1})
	require.NoError(t, err)

	removed, err := store.DeleteLastN(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := store.ListAscending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.InDelta(t, 1.0, left[0].RR, 1e-9)

	removed, err = store.DeleteLastN(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "overshoot reports the true count")

	removed, err = store.DeleteLastN(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	other, err := store.ListAscending(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestOpen_UpgradesLegacyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trades.db")

	legacy, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			userId TEXT,
			result TEXT,
			rr REAL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		INSERT INTO trades (userId, result, rr) VALUES ('u1', 'win', 1.5);
		INSERT INTO trades (userId, result, rr) VALUES ('u1', 'loss', -1);
	`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	has, err := db.hasColumn(ctx, "trades", "promptId")
	require.NoError(t, err)
	assert.True(t, has)

	store := NewTradeRecordStore(db)
	got, err := store.ListAscending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.OutcomeWin, got[0].Outcome)
	assert.False(t, got[0].CreatedAt.IsZero(), "legacy CURRENT_TIMESTAMP should parse")

	// reopening is idempotent
	require.NoError(t, db.migrate(ctx))
}
