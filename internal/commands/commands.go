// Package commands implements the slash command surface.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/observability"
	"trade-journal/internal/stats"
	"trade-journal/internal/storage"
	"trade-journal/internal/transport"
)

// Command names.
const (
	CmdStats       = "stats"
	CmdEquityCurve = "equitycurve"
	CmdRemove      = "remove"

	ArgCount = "count"
)

// Attachment names.
const (
	DashboardFile = "dashboard.png"
	EquityFile    = "equity.png"
)

// User-facing texts.
const (
	MsgNoTrades        = "No trades recorded."
	MsgNothingToRemove = "No trades to remove."
	MsgInvalidCount    = "Count must be at least 1."
	MsgUnknownCommand  = "Unknown command."
	MsgFailure         = "Something went wrong. Please try again."
)

var (
	// ErrEmptyHistory is returned by Metrics when the user has no records.
	ErrEmptyHistory = errors.New("no trades recorded")

	// ErrStoreUnavailable wraps store failures.
	ErrStoreUnavailable = errors.New("trade store unavailable")

	// ErrUnknownCommand is returned for unregistered command names.
	ErrUnknownCommand = errors.New("unknown command")
)

// Renderer draws command images.
type Renderer interface {
	Dashboard(m domain.AggregateMetrics) ([]byte, error)
	EquityCurve(series []float64) ([]byte, error)
}

// Service answers slash commands for the invoking user.
type Service struct {
	store    storage.TradeRecordStore
	renderer Renderer
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService creates a command service. metrics may be nil.
func NewService(store storage.TradeRecordStore, renderer Renderer, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger.With("component", "commands"),
	}
}

// Handle dispatches a command and always answers the user. The returned
// error is for logging only.
func (s *Service) Handle(ctx context.Context, in transport.CommandInvoked, resp transport.Responder) error {
	var (
		reply transport.Reply
		err   error
	)

	switch in.Name {
	case CmdStats:
		reply, err = s.stats(ctx, in.ActingUserID)
	case CmdEquityCurve:
		reply, err = s.equityCurve(ctx, in.ActingUserID)
	case CmdRemove:
		reply, err = s.remove(ctx, in.ActingUserID, in.Args)
	default:
		reply = transport.Reply{Content: MsgUnknownCommand, Ephemeral: true}
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, in.Name)
	}

	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Error("command failed", "command", in.Name, "user_id", in.ActingUserID, "error", err)
	}
	s.metrics.RecordCommand(in.Name, status)

	if rerr := resp.Reply(ctx, reply); rerr != nil {
		return errors.Join(err, fmt.Errorf("reply to %s: %w", in.Name, rerr))
	}
	return err
}

// Metrics loads a user's records and computes their aggregate metrics.
// Returns ErrEmptyHistory when the user has no records.
func (s *Service) Metrics(ctx context.Context, userID string) (domain.AggregateMetrics, []*domain.TradeRecord, error) {
	records, err := s.store.ListAscending(ctx, userID)
	if err != nil {
		return domain.AggregateMetrics{}, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return domain.AggregateMetrics{}, nil, ErrEmptyHistory
	}
	return stats.Compute(records), records, nil
}

func (s *Service) stats(ctx context.Context, userID string) (transport.Reply, error) {
	m, _, err := s.Metrics(ctx, userID)
	if errors.Is(err, ErrEmptyHistory) {
		return transport.Reply{Content: MsgNoTrades}, nil
	}
	if err != nil {
		return failure(), err
	}

	start := time.Now()
	img, err := s.renderer.Dashboard(m)
	s.metrics.RecordRender("dashboard", time.Since(start).Seconds())
	if err != nil {
		return failure(), fmt.Errorf("render dashboard: %w", err)
	}
	return transport.Reply{Image: &transport.Image{Name: DashboardFile, Data: img}}, nil
}

func (s *Service) equityCurve(ctx context.Context, userID string) (transport.Reply, error) {
	_, records, err := s.Metrics(ctx, userID)
	if errors.Is(err, ErrEmptyHistory) {
		return transport.Reply{Content: MsgNoTrades}, nil
	}
	if err != nil {
		return failure(), err
	}

	start := time.Now()
	img, err := s.renderer.EquityCurve(stats.EquityCurve(records))
	s.metrics.RecordRender("equity", time.Since(start).Seconds())
	if err != nil {
		return failure(), fmt.Errorf("render equity curve: %w", err)
	}
	return transport.Reply{Image: &transport.Image{Name: EquityFile, Data: img}}, nil
}

func (s *Service) remove(ctx context.Context, userID string, args map[string]int64) (transport.Reply, error) {
	count := int64(1)
	if v, ok := args[ArgCount]; ok {
		count = v
	}
	if count < 1 {
		return transport.Reply{Content: MsgInvalidCount, Ephemeral: true}, nil
	}

	removed, err := s.store.DeleteLastN(ctx, userID, int(count))
	if err != nil {
		return failure(), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if removed == 0 {
		return transport.Reply{Content: MsgNothingToRemove}, nil
	}

	s.logger.Info("trades removed", "user_id", userID, "requested", count, "removed", removed)
	return transport.Reply{Content: fmt.Sprintf("Removed %d trade(s).", removed)}, nil
}

func failure() transport.Reply {
	return transport.Reply{Content: MsgFailure, Ephemeral: true}
}
