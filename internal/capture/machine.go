// Package capture drives the multi-step trade capture flow.
//
// A flow has no server-side session: each step is reconstructed from the
// correlation token carried by the interactive control plus a fresh store
// read. A prompt is recorded at most once because the store rejects a second
// record for the same prompt message.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/observability"
	"trade-journal/internal/storage"
	"trade-journal/internal/token"
	"trade-journal/internal/transport"
)

// Capture errors returned to the adapter for logging. The user has already
// been answered when one of these is returned.
var (
	ErrUnauthorized     = errors.New("acting user does not own the token")
	ErrInvalidAmount    = errors.New("invalid rr amount")
	ErrStoreUnavailable = errors.New("trade store unavailable")
)

// User-facing texts.
const (
	MsgTradeSaved      = "Trade saved."
	MsgNotYourTrade    = "Not your trade."
	MsgInvalidNumber   = "Invalid number."
	MsgRecorded        = "Recorded."
	MsgAlreadyRecorded = "This trade was already recorded."
	MsgStoreFailure    = "Could not save the trade right now. Please try again."
)

// Machine handles capture events. It is safe for concurrent use.
type Machine struct {
	store   storage.TradeRecordStore
	journal storage.CaptureEventStore
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithEventJournal records every transition to j. Journal failures are logged, never surfaced.
func WithEventJournal(j storage.CaptureEventStore) Option {
	return func(m *Machine) { m.journal = j }
}

// WithMetrics enables Prometheus counters.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Machine) { m.metrics = metrics }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// NewMachine creates a capture state machine.
func NewMachine(store storage.TradeRecordStore, logger *slog.Logger, opts ...Option) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{
		store:  store,
		logger: logger.With("component", "capture"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleMessage posts an outcome prompt for a human message carrying an image.
func (m *Machine) HandleMessage(ctx context.Context, in transport.MessageWithImage, resp transport.Responder) error {
	if in.SenderIsBot || !in.HasImage() {
		return nil
	}

	tok, err := token.Encode(token.OutcomeChoice, in.SenderID, "")
	if err != nil {
		return fmt.Errorf("encode outcome token: %w", err)
	}
	if err := resp.PromptChoice(ctx, tok); err != nil {
		return fmt.Errorf("post outcome prompt: %w", err)
	}

	m.metrics.RecordPrompt()
	m.journalEvent(ctx, &domain.CaptureEvent{
		UserID: in.SenderID,
		Kind:   domain.CaptureEventPrompted,
		Detail: in.MessageID,
	})
	return nil
}

// HandleChoice processes an outcome selected on a prompt.
func (m *Machine) HandleChoice(ctx context.Context, in transport.ChoiceSelected, resp transport.Responder) error {
	if _, err := m.authorize(ctx, in.Token, token.OutcomeChoice, in.ActingUserID, in.MessageID, resp); err != nil {
		return err
	}

	outcome, ok := domain.ParseOutcome(in.Choice)
	if !ok {
		m.rejectMalformed(ctx, in.ActingUserID, in.MessageID, resp)
		return fmt.Errorf("%w: unknown choice %q", token.ErrMalformedToken, in.Choice)
	}

	if outcome == domain.OutcomeWin {
		return m.requestAmount(ctx, in, resp)
	}

	rr, _ := domain.FixedRR(outcome)
	rec := &domain.TradeRecord{
		UserID:    in.ActingUserID,
		Outcome:   outcome,
		RR:        rr,
		PromptID:  in.MessageID,
		CreatedAt: m.now().UTC(),
	}
	done, err := m.append(ctx, rec, resp)
	if !done {
		return err
	}

	if err := resp.Resolve(ctx, MsgTradeSaved); err != nil {
		// The record is committed; only the display is stale.
		m.logger.Warn("resolve prompt failed", "prompt_id", in.MessageID, "error", err)
	}
	return nil
}

func (m *Machine) requestAmount(ctx context.Context, in transport.ChoiceSelected, resp transport.Responder) error {
	recorded, err := m.store.ExistsForPrompt(ctx, in.MessageID)
	if err != nil {
		return m.storeFailure(ctx, in.ActingUserID, in.MessageID, resp, err)
	}
	if recorded {
		return m.duplicate(ctx, in.ActingUserID, in.MessageID, resp)
	}

	tok, err := token.Encode(token.AmountEntry, in.ActingUserID, in.MessageID)
	if err != nil {
		return fmt.Errorf("encode amount token: %w", err)
	}
	if err := resp.PromptAmount(ctx, tok); err != nil {
		return fmt.Errorf("open amount dialog: %w", err)
	}

	m.metrics.RecordAmountRequested()
	m.journalEvent(ctx, &domain.CaptureEvent{
		UserID:   in.ActingUserID,
		PromptID: in.MessageID,
		Kind:     domain.CaptureEventAmountRequested,
		Outcome:  domain.OutcomeWin,
	})
	return nil
}

// HandleAmount processes a submitted RR dialog.
func (m *Machine) HandleAmount(ctx context.Context, in transport.AmountSubmitted, resp transport.Responder) error {
	tok, err := m.authorize(ctx, in.Token, token.AmountEntry, in.ActingUserID, "", resp)
	if err != nil {
		return err
	}

	rr, err := ParseRR(in.RawText)
	if err != nil {
		m.metrics.RecordRejection("invalid_amount")
		m.journalEvent(ctx, &domain.CaptureEvent{
			UserID:   in.ActingUserID,
			PromptID: tok.AnchorID,
			Kind:     domain.CaptureEventInvalidAmount,
			Detail:   in.RawText,
		})
		m.reply(ctx, resp, transport.Reply{Content: MsgInvalidNumber, Ephemeral: true})
		return err
	}

	rec := &domain.TradeRecord{
		UserID:    in.ActingUserID,
		Outcome:   domain.OutcomeWin,
		RR:        rr,
		PromptID:  tok.AnchorID,
		CreatedAt: m.now().UTC(),
	}
	done, err := m.append(ctx, rec, resp)
	if !done {
		return err
	}

	if err := resp.EditMessage(ctx, tok.AnchorID, WinRecordedText(rr)); err != nil {
		// The prompt may have been deleted; the record stands.
		m.logger.Warn("edit anchor prompt failed", "prompt_id", tok.AnchorID, "error", err)
	}
	m.reply(ctx, resp, transport.Reply{Content: MsgRecorded, Ephemeral: true})
	return nil
}

// authorize decodes raw, checks its kind and owner, and answers the user on failure.
func (m *Machine) authorize(ctx context.Context, raw string, want token.Kind, actingUserID, promptID string, resp transport.Responder) (token.Token, error) {
	tok, err := token.Decode(raw)
	if err == nil && tok.Kind != want {
		err = fmt.Errorf("%w: got %s, want %s", token.ErrMalformedToken, tok.Kind, want)
	}
	if err != nil {
		m.rejectMalformed(ctx, actingUserID, promptID, resp)
		return token.Token{}, err
	}

	if tok.AnchorID != "" {
		promptID = tok.AnchorID
	}
	if !tok.Authorize(actingUserID) {
		m.metrics.RecordRejection("unauthorized")
		m.journalEvent(ctx, &domain.CaptureEvent{
			UserID:   actingUserID,
			PromptID: promptID,
			Kind:     domain.CaptureEventRejected,
			Detail:   "unauthorized",
		})
		m.reply(ctx, resp, transport.Reply{Content: MsgNotYourTrade, Ephemeral: true})
		return token.Token{}, ErrUnauthorized
	}
	return tok, nil
}

// rejectMalformed answers exactly like an ownership failure.
func (m *Machine) rejectMalformed(ctx context.Context, actingUserID, promptID string, resp transport.Responder) {
	m.metrics.RecordRejection("malformed")
	m.journalEvent(ctx, &domain.CaptureEvent{
		UserID:   actingUserID,
		PromptID: promptID,
		Kind:     domain.CaptureEventRejected,
		Detail:   "malformed",
	})
	m.reply(ctx, resp, transport.Reply{Content: MsgNotYourTrade, Ephemeral: true})
}

// append persists rec. done is false when the caller must stop; err is then
// the value to return (nil for a duplicate).
func (m *Machine) append(ctx context.Context, rec *domain.TradeRecord, resp transport.Responder) (done bool, err error) {
	id, err := m.store.Append(ctx, rec)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return false, m.duplicate(ctx, rec.UserID, rec.PromptID, resp)
	case err != nil:
		return false, m.storeFailure(ctx, rec.UserID, rec.PromptID, resp, err)
	}

	m.logger.Info("trade recorded",
		"id", id,
		"user_id", rec.UserID,
		"outcome", rec.Outcome,
		"rr", rec.RR,
		"prompt_id", rec.PromptID,
	)
	m.metrics.RecordTrade(string(rec.Outcome))
	m.journalEvent(ctx, &domain.CaptureEvent{
		UserID:   rec.UserID,
		PromptID: rec.PromptID,
		Kind:     domain.CaptureEventRecorded,
		Outcome:  rec.Outcome,
		RR:       rec.RR,
	})
	return true, nil
}

func (m *Machine) duplicate(ctx context.Context, userID, promptID string, resp transport.Responder) error {
	m.metrics.RecordRejection("duplicate")
	m.journalEvent(ctx, &domain.CaptureEvent{
		UserID:   userID,
		PromptID: promptID,
		Kind:     domain.CaptureEventDuplicate,
	})
	m.reply(ctx, resp, transport.Reply{Content: MsgAlreadyRecorded, Ephemeral: true})
	return nil
}

func (m *Machine) storeFailure(ctx context.Context, userID, promptID string, resp transport.Responder, cause error) error {
	m.metrics.RecordRejection("store_unavailable")
	m.journalEvent(ctx, &domain.CaptureEvent{
		UserID:   userID,
		PromptID: promptID,
		Kind:     domain.CaptureEventFailed,
		Detail:   cause.Error(),
	})
	m.reply(ctx, resp, transport.Reply{Content: MsgStoreFailure, Ephemeral: true})
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, cause)
}

func (m *Machine) reply(ctx context.Context, resp transport.Responder, r transport.Reply) {
	if err := resp.Reply(ctx, r); err != nil {
		m.logger.Warn("reply failed", "content", r.Content, "error", err)
	}
}

func (m *Machine) journalEvent(ctx context.Context, e *domain.CaptureEvent) {
	if m.journal == nil {
		return
	}
	e.Time = m.now().UTC()
	if err := m.journal.Insert(ctx, e); err != nil {
		m.logger.Warn("journal capture event failed", "kind", e.Kind, "error", err)
	}
}
