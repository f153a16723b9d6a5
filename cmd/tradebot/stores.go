package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"trade-journal/internal/config"
	"trade-journal/internal/observability"
	"trade-journal/internal/render"
	"trade-journal/internal/storage"
	chstore "trade-journal/internal/storage/clickhouse"
	"trade-journal/internal/storage/memory"
	"trade-journal/internal/storage/migrations"
	pgstore "trade-journal/internal/storage/postgres"
	"trade-journal/internal/storage/sqlite"
)

// stores holds the configured storage backends.
type stores struct {
	trades  storage.TradeRecordStore
	journal storage.CaptureEventStore // nil when no journal is configured
}

// openStores connects the backends selected by cfg and applies their schema.
// The trade store is instrumented when m is non-nil.
func openStores(ctx context.Context, cfg *config.Config, m *observability.Metrics, logger *slog.Logger) (*stores, func(), error) {
	var (
		s       = &stores{}
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		s.trades = memory.NewTradeRecordStore()
		logger.Warn("using in-memory trade store; history is lost on exit")

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		closers = append(closers, func() { db.Close() })
		s.trades = sqlite.NewTradeRecordStore(db)
		logger.Info("trade store ready", "driver", cfg.StoreDriver, "path", cfg.SQLitePath)

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.trades = pgstore.NewTradeRecordStore(pool)
		logger.Info("trade store ready", "driver", cfg.StoreDriver)

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StoreDriver)
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse journal: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		s.journal = chstore.NewCaptureEventStore(conn)
		logger.Info("capture journal ready", "backend", "clickhouse")
	}

	if m != nil {
		s.trades = observability.InstrumentTradeStore(s.trades, m, cfg.StoreDriver)
	}
	return s, cleanup, nil
}

// newRenderer loads the configured font. The default font path falls back
// to the bundled font when the file is absent.
func newRenderer(cfg *config.Config, logger *slog.Logger) (*render.Renderer, error) {
	r, err := render.New(cfg.FontPath)
	if err == nil {
		return r, nil
	}
	if cfg.FontPath == config.DefaultFontPath && errors.Is(err, os.ErrNotExist) {
		logger.Warn("font not found, using bundled font", "path", cfg.FontPath)
		return render.Default(), nil
	}
	return nil, err
}
