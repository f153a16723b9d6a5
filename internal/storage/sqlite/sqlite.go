// Package sqlite stores trade history in a local SQLite file.
//
// The schema is compatible with trades.db files created by earlier
// releases of the bot; the promptId column is added in place on open.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for dependency injection.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection is the single writer; appends queue behind it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	d := &DB{DB: db}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// migrate creates the trades table and upgrades legacy files.
func (d *DB) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		userId TEXT,
		result TEXT,
		rr REAL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(userId, id);
	`
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create trades: %w", err)
	}

	has, err := d.hasColumn(ctx, "trades", "promptId")
	if err != nil {
		return err
	}
	if !has {
		if _, err := d.ExecContext(ctx, `ALTER TABLE trades ADD COLUMN promptId TEXT`); err != nil {
			return fmt.Errorf("add promptId column: %w", err)
		}
	}

	_, err = d.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_trades_prompt
		ON trades(promptId) WHERE promptId IS NOT NULL
	`)
	if err != nil {
		return fmt.Errorf("create prompt index: %w", err)
	}
	return nil
}

func (d *DB) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := d.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// isDuplicateKeyError checks if error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
