package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/capture"
	"trade-journal/internal/commands"
	"trade-journal/internal/discord"
	"trade-journal/internal/observability"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and record trades",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	metrics := observability.NewMetrics("tradebot")

	st, cleanup, err := openStores(ctx, a.cfg, metrics, a.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	renderer, err := newRenderer(a.cfg, a.logger)
	if err != nil {
		return err
	}

	opts := []capture.Option{capture.WithMetrics(metrics)}
	if st.journal != nil {
		opts = append(opts, capture.WithEventJournal(st.journal))
	}
	machine := capture.NewMachine(st.trades, a.logger, opts...)
	svc := commands.NewService(st.trades, renderer, metrics, a.logger)

	bot, err := discord.New(discord.Config{
		Token:          a.cfg.DiscordToken,
		GuildID:        a.cfg.GuildID,
		HandlerTimeout: a.cfg.HandlerTimeout,
	}, machine, svc, metrics, a.logger)
	if err != nil {
		return err
	}
	srv := observability.NewServer(a.cfg.MetricsAddr, metrics, bot.Ready, a.logger)

	done := make(chan struct{})
	defer close(done)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.logger.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			a.logger.Error("received second signal, forcing exit", "signal", sig.String())
			os.Exit(1)
		case <-time.After(shutdownTimeout):
			a.logger.Error("graceful shutdown timed out, forcing exit", "timeout", shutdownTimeout)
			os.Exit(1)
		case <-done:
		}
	}()

	errCh := make(chan error, 2)
	go func() { errCh <- wrap("metrics server", srv.Run(ctx)) }()
	go func() { errCh <- wrap("discord", bot.Run(ctx)) }()

	// The first failure stops the other component.
	var firstErr error
	for range 2 {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	if firstErr != nil {
		return firstErr
	}
	a.logger.Info("shutdown complete")
	return nil
}

func wrap(component string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", component, err)
}
