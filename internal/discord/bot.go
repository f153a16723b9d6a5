// Package discord connects the capture machine and command service to the
// Discord gateway.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"trade-journal/internal/observability"
	"trade-journal/internal/transport"
)

// Intents requested on the gateway.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

const defaultHandlerTimeout = 10 * time.Second

// CaptureHandler handles the trade capture flow.
type CaptureHandler interface {
	HandleMessage(ctx context.Context, in transport.MessageWithImage, resp transport.Responder) error
	HandleChoice(ctx context.Context, in transport.ChoiceSelected, resp transport.Responder) error
	HandleAmount(ctx context.Context, in transport.AmountSubmitted, resp transport.Responder) error
}

// CommandHandler handles slash commands.
type CommandHandler interface {
	Handle(ctx context.Context, in transport.CommandInvoked, resp transport.Responder) error
}

// Registrar overwrites the application's slash commands.
type Registrar interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, opts ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Config holds adapter settings.
type Config struct {
	Token string
	// GuildID registers commands for one guild instead of globally.
	GuildID        string
	HandlerTimeout time.Duration
}

// Bot routes gateway events to the handlers.
type Bot struct {
	session  *discordgo.Session
	api      Session
	capture  CaptureHandler
	commands CommandHandler
	metrics  *observability.Metrics
	logger   *slog.Logger
	guildID  string
	timeout  time.Duration

	ready   atomic.Bool
	baseCtx context.Context
}

// New creates a bot. The gateway is not opened until Run.
func New(cfg Config, capture CaptureHandler, cmds CommandHandler, metrics *observability.Metrics, logger *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("discord: empty bot token")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = Intents

	b := newBot(session, capture, cmds, metrics, logger)
	b.session = session
	b.guildID = cfg.GuildID
	if cfg.HandlerTimeout > 0 {
		b.timeout = cfg.HandlerTimeout
	}

	session.AddHandler(b.onReady)
	session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { b.handleMessage(m) })
	session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) { b.handleInteraction(i) })
	return b, nil
}

func newBot(api Session, capture CaptureHandler, cmds CommandHandler, metrics *observability.Metrics, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:      api,
		capture:  capture,
		commands: cmds,
		metrics:  metrics,
		logger:   logger.With("component", "discord"),
		timeout:  defaultHandlerTimeout,
		baseCtx:  context.Background(),
	}
}

// Ready reports whether the gateway session is established and commands
// are registered.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Run opens the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.baseCtx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	b.logger.Info("gateway connected")

	<-ctx.Done()
	b.ready.Store(false)
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	b.logger.Info("gateway closed")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if err := b.register(s, r.User.ID); err != nil {
		b.logger.Error("register commands failed", "error", err)
		return
	}
	b.ready.Store(true)
	b.logger.Info("bot is online", "user", r.User.Username, "guilds", len(r.Guilds))
}

// register bulk-overwrites the slash commands, scoped by guildID when set.
func (b *Bot) register(reg Registrar, appID string) error {
	cmds, err := reg.ApplicationCommandBulkOverwrite(appID, b.guildID, ApplicationCommands())
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.logger.Info("commands registered", "count", len(cmds), "guild_id", b.guildID)
	return nil
}

// dispatch runs fn with a timeout and contains any panic.
func (b *Bot) dispatch(event string, fn func(ctx context.Context) error) {
	b.metrics.RecordEvent(event)

	ctx, cancel := context.WithTimeout(b.baseCtx, b.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			b.metrics.RecordPanic()
			b.logger.Error("handler panic", "event", event, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if err := fn(ctx); err != nil {
		b.logger.Warn("event handling failed", "event", event, "error", err)
	}
}

func (b *Bot) handleMessage(m *discordgo.MessageCreate) {
	if m.Author == nil || len(m.Attachments) == 0 {
		return
	}
	in := messageEvent(m)
	if in.SenderIsBot {
		return
	}

	b.dispatch("message_create", func(ctx context.Context) error {
		resp := &messageResponder{api: b.api, senderID: in.SenderID, channelID: in.ChannelID, messageID: in.MessageID}
		return b.capture.HandleMessage(ctx, in, resp)
	})
}

func (b *Bot) handleInteraction(ic *discordgo.InteractionCreate) {
	i := ic.Interaction
	resp := &interactionResponder{api: b.api, i: i}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		b.dispatch("component", func(ctx context.Context) error {
			return b.capture.HandleChoice(ctx, choiceEvent(i), resp)
		})
	case discordgo.InteractionModalSubmit:
		b.dispatch("modal_submit", func(ctx context.Context) error {
			return b.capture.HandleAmount(ctx, amountEvent(i), resp)
		})
	case discordgo.InteractionApplicationCommand:
		b.dispatch("command", func(ctx context.Context) error {
			return b.commands.Handle(ctx, commandEvent(i), resp)
		})
	default:
		b.logger.Debug("ignoring interaction", "type", i.Type.String())
	}
}
