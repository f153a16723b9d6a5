package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage/sqlite"
)

// setup points the CLI at a fresh SQLite file and seeds it.
func setup(t *testing.T, records ...domain.TradeRecord) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "trades.db")
	for _, k := range []string{"POSTGRES_DSN", "CLICKHOUSE_DSN", "FONT_PATH", "TOKEN", "DISCORD_TOKEN"} {
		t.Setenv(k, "")
	}
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)

	ctx := context.Background()
	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	store := sqlite.NewTradeRecordStore(db)
	for _, r := range records {
		_, err := store.Append(ctx, &r)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

var history = []domain.TradeRecord{
	{UserID: "u1", Outcome: domain.OutcomeWin, RR: 2},
	{UserID: "u1", Outcome: domain.OutcomeLoss, RR: -1},
	{UserID: "u1", Outcome: domain.OutcomeWin, RR: 1},
	{UserID: "u1", Outcome: domain.OutcomeBreakEven, RR: 0},
}

func TestStatsCmd(t *testing.T) {
	setup(t, history...)

	out, err := run(t, "stats", "--user", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Win rate:      50.0%")
	assert.Contains(t, out, "Total RR:      2.00 RR")
	assert.Contains(t, out, "Balanced Performance")

	out, err = run(t, "stats", "--user", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No trades recorded.\n", out)

	_, err = run(t, "stats")
	assert.Error(t, err, "--user is required")
}

func TestRenderCmd(t *testing.T) {
	dir := setup(t, history...)

	for _, kind := range []string{"dashboard", "equity"} {
		t.Run(kind, func(t *testing.T) {
			target := filepath.Join(dir, kind+".png")
			out, err := run(t, "render", "--user", "u1", "--kind", kind, "--out", target)
			require.NoError(t, err)
			assert.Contains(t, out, "wrote "+target)

			data, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, []byte("\x89PNG"), data[:4])
		})
	}

	_, err := run(t, "render", "--user", "u1", "--kind", "pie")
	assert.Error(t, err)

	out, err := run(t, "render", "--user", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No trades recorded.\n", out)
}

func TestServeCmd_RequiresToken(t *testing.T) {
	setup(t)

	_, err := run(t, "serve")
	assert.ErrorContains(t, err, "discord token is required")
}

func TestMigrateCmd_SQLite(t *testing.T) {
	setup(t)

	_, err := run(t, "migrate")
	assert.NoError(t, err)
}
