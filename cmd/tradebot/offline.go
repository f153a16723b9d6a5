package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trade-journal/internal/commands"
	"trade-journal/internal/transport"
)

func newStatsCmd(a *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's trading metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.cfg.ValidateStore(); err != nil {
				return err
			}
			st, cleanup, err := openStores(ctx, a.cfg, nil, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := commands.NewService(st.trades, nil, nil, a.logger)
			m, _, err := svc.Metrics(ctx, userID)
			if errors.Is(err, commands.ErrEmptyHistory) {
				fmt.Fprintln(cmd.OutOrStdout(), commands.MsgNoTrades)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), commands.Summary(m))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Discord user ID")
	cmd.MarkFlagRequired("user")
	return cmd
}

const (
	kindDashboard = "dashboard"
	kindEquity    = "equity"
)

func newRenderCmd(a *app) *cobra.Command {
	var userID, kind, out string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a user's dashboard or equity curve to a PNG file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var name string
			switch kind {
			case kindDashboard:
				name = commands.CmdStats
			case kindEquity:
				name = commands.CmdEquityCurve
			default:
				return fmt.Errorf("unknown kind %q (want %s or %s)", kind, kindDashboard, kindEquity)
			}
			if err := a.cfg.ValidateStore(); err != nil {
				return err
			}

			st, cleanup, err := openStores(ctx, a.cfg, nil, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			renderer, err := newRenderer(a.cfg, a.logger)
			if err != nil {
				return err
			}

			rec := &transport.Recorder{}
			svc := commands.NewService(st.trades, renderer, nil, a.logger)
			if err := svc.Handle(ctx, transport.CommandInvoked{Name: name, ActingUserID: userID}, rec); err != nil {
				return err
			}

			reply := rec.Last().Reply
			if reply.Image == nil {
				fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
				return nil
			}
			if out == "" {
				out = reply.Image.Name
			}
			if err := os.WriteFile(out, reply.Image.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(reply.Image.Data))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Discord user ID")
	cmd.Flags().StringVar(&kind, "kind", kindDashboard, "dashboard or equity")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: the attachment name)")
	cmd.MarkFlagRequired("user")
	return cmd
}
