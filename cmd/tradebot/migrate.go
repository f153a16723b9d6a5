package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trade-journal/internal/config"
	"trade-journal/internal/storage/migrations"
	pgstore "trade-journal/internal/storage/postgres"
	"trade-journal/internal/storage/sqlite"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema for the configured stores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.cfg.ValidateStore(); err != nil {
				return err
			}

			switch a.cfg.StoreDriver {
			case config.DriverPostgres:
				pool, err := pgstore.NewPool(ctx, a.cfg.PostgresDSN)
				if err != nil {
					return fmt.Errorf("connect to postgres: %w", err)
				}
				defer pool.Close()
				if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
					return err
				}
				a.logger.Info("postgres migrations applied")
			case config.DriverSQLite:
				db, err := sqlite.Open(ctx, a.cfg.SQLitePath)
				if err != nil {
					return err
				}
				defer db.Close()
				a.logger.Info("sqlite schema up to date", "path", a.cfg.SQLitePath)
			case config.DriverMemory:
				if a.cfg.ClickhouseDSN == "" {
					return errors.New("nothing to migrate for the memory driver")
				}
			}

			if a.cfg.ClickhouseDSN != "" {
				conn, err := migrations.RunClickhouseMigrations(ctx, a.cfg.ClickhouseDSN)
				if err != nil {
					return err
				}
				defer conn.Close()
				a.logger.Info("clickhouse migrations applied")
			}
			return nil
		},
	}
}
