package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/observability"
	"trade-journal/internal/transport"
)

type fakeSession struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	sent      []*discordgo.MessageSend
	edits     []*discordgo.MessageEdit
	respErr   error
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, r *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respErr != nil {
		return f.respErr
	}
	f.responses = append(f.responses, r)
	return nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, d *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, d)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(_ string, d *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, d)
	return &discordgo.Message{ID: "sent"}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID}, nil
}

type fakeRegistrar struct {
	appID, guildID string
	cmds           []*discordgo.ApplicationCommand
	err            error
}

func (f *fakeRegistrar) ApplicationCommandBulkOverwrite(appID, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.appID, f.guildID, f.cmds = appID, guildID, cmds
	return cmds, f.err
}

// fakeHandlers records the last event routed to each handler.
type fakeHandlers struct {
	message *transport.MessageWithImage
	choice  *transport.ChoiceSelected
	amount  *transport.AmountSubmitted
	command *transport.CommandInvoked
	panicOn string
}

func (f *fakeHandlers) HandleMessage(ctx context.Context, in transport.MessageWithImage, resp transport.Responder) error {
	f.message = &in
	return resp.PromptChoice(ctx, "tok")
}

func (f *fakeHandlers) HandleChoice(_ context.Context, in transport.ChoiceSelected, _ transport.Responder) error {
	if f.panicOn == "choice" {
		panic("boom")
	}
	f.choice = &in
	return nil
}

func (f *fakeHandlers) HandleAmount(_ context.Context, in transport.AmountSubmitted, _ transport.Responder) error {
	f.amount = &in
	return nil
}

func (f *fakeHandlers) Handle(_ context.Context, in transport.CommandInvoked, _ transport.Responder) error {
	f.command = &in
	return errors.New("logged only")
}

func newTestBot(api Session, h *fakeHandlers, m *observability.Metrics) *Bot {
	return newBot(api, h, h, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func member(id string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id}}
}

func TestHandleMessage(t *testing.T) {
	api := &fakeSession{}
	h := &fakeHandlers{}
	b := newTestBot(api, h, nil)

	b.handleMessage(&discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Author:    &discordgo.User{ID: "u1"},
		Attachments: []*discordgo.MessageAttachment{
			{Filename: "setup.png", ContentType: "image/png", URL: "https://cdn/setup.png"},
		},
	}})

	require.NotNil(t, h.message)
	assert.Equal(t, "u1", h.message.SenderID)
	assert.True(t, h.message.HasImage())

	require.Len(t, api.sent, 1)
	sent := api.sent[0]
	assert.Equal(t, "📊 <@u1>, select your trade result:", sent.Content)
	assert.Equal(t, "m1", sent.Reference.MessageID)

	row := sent.Components[0].(discordgo.ActionsRow)
	menu := row.Components[0].(discordgo.SelectMenu)
	assert.Equal(t, "tok", menu.CustomID)
	assert.Equal(t, discordgo.StringSelectMenu, menu.MenuType)
	require.Len(t, menu.Options, 3)
	assert.Equal(t, []string{"win", "loss", "be"}, []string{menu.Options[0].Value, menu.Options[1].Value, menu.Options[2].Value})
}

func TestHandleMessage_Ignored(t *testing.T) {
	api := &fakeSession{}
	h := &fakeHandlers{}
	b := newTestBot(api, h, nil)

	b.handleMessage(&discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m1", Author: &discordgo.User{ID: "bot", Bot: true},
		Attachments: []*discordgo.MessageAttachment{{ContentType: "image/png"}},
	}})
	b.handleMessage(&discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m2", Author: &discordgo.User{ID: "u1"},
	}})

	assert.Nil(t, h.message)
	assert.Empty(t, api.sent)
}

func TestHandleInteraction_Routing(t *testing.T) {
	h := &fakeHandlers{}
	b := newTestBot(&fakeSession{}, h, nil)

	b.handleInteraction(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "c1",
		Member:    member("u1"),
		Message:   &discordgo.Message{ID: "prompt"},
		Data:      discordgo.MessageComponentInteractionData{CustomID: "tok1", Values: []string{"loss"}},
	}})
	require.NotNil(t, h.choice)
	assert.Equal(t, transport.ChoiceSelected{Token: "tok1", Choice: "loss", ActingUserID: "u1", MessageID: "prompt", ChannelID: "c1"}, *h.choice)

	b.handleInteraction(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionModalSubmit,
		User: &discordgo.User{ID: "u2"},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: "tok2",
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: AmountInputID, Value: "2.5"},
				}},
			},
		},
	}})
	require.NotNil(t, h.amount)
	assert.Equal(t, "tok2", h.amount.Token)
	assert.Equal(t, "2.5", h.amount.RawText)
	assert.Equal(t, "u2", h.amount.ActingUserID)

	b.handleInteraction(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: member("u3"),
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "remove",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
			},
		},
	}})
	require.NotNil(t, h.command)
	assert.Equal(t, "remove", h.command.Name)
	assert.Equal(t, int64(3), h.command.Args["count"])
	assert.Equal(t, "u3", h.command.ActingUserID)
}

func TestDispatch_RecoversPanic(t *testing.T) {
	m := observability.NewMetrics("test")
	h := &fakeHandlers{panicOn: "choice"}
	b := newTestBot(&fakeSession{}, h, m)

	assert.NotPanics(t, func() {
		b.handleInteraction(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type:   discordgo.InteractionMessageComponent,
			Member: member("u1"),
			Data:   discordgo.MessageComponentInteractionData{CustomID: "tok", Values: []string{"win"}},
		}})
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerPanics))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsReceived.WithLabelValues("component")))
}

func TestInteractionResponder(t *testing.T) {
	ctx := context.Background()

	t.Run("resolve updates prompt and clears controls", func(t *testing.T) {
		api := &fakeSession{}
		r := &interactionResponder{api: api, i: &discordgo.Interaction{
			Type: discordgo.InteractionMessageComponent, Message: &discordgo.Message{ID: "p"},
		}}
		require.NoError(t, r.Resolve(ctx, "Trade saved."))
		require.Len(t, api.responses, 1)
		assert.Equal(t, discordgo.InteractionResponseUpdateMessage, api.responses[0].Type)
		assert.Equal(t, "Trade saved.", api.responses[0].Data.Content)
		assert.NotNil(t, api.responses[0].Data.Components)
		assert.Empty(t, api.responses[0].Data.Components)
	})

	t.Run("resolve unsupported for commands", func(t *testing.T) {
		r := &interactionResponder{api: &fakeSession{}, i: &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand}}
		assert.ErrorIs(t, r.Resolve(ctx, "x"), ErrUnsupported)
	})

	t.Run("prompt amount opens modal", func(t *testing.T) {
		api := &fakeSession{}
		r := &interactionResponder{api: api, i: &discordgo.Interaction{Type: discordgo.InteractionMessageComponent}}
		require.NoError(t, r.PromptAmount(ctx, "tok"))

		resp := api.responses[0]
		assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
		assert.Equal(t, "tok", resp.Data.CustomID)
		assert.Equal(t, "Enter RR", resp.Data.Title)
		input := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
		assert.Equal(t, AmountInputID, input.CustomID)
		assert.Equal(t, discordgo.TextInputShort, input.Style)
		assert.True(t, input.Required)

		assert.ErrorIs(t, r.PromptAmount(ctx, "tok"), ErrUnsupported, "modal must be the first response")
	})

	t.Run("second reply is a followup", func(t *testing.T) {
		api := &fakeSession{}
		r := &interactionResponder{api: api, i: &discordgo.Interaction{Type: discordgo.InteractionModalSubmit}}

		require.NoError(t, r.Reply(ctx, transport.Reply{Content: "Recorded.", Ephemeral: true}))
		require.NoError(t, r.Reply(ctx, transport.Reply{Content: "again", Ephemeral: true}))

		require.Len(t, api.responses, 1)
		assert.Equal(t, discordgo.MessageFlagsEphemeral, api.responses[0].Data.Flags)
		require.Len(t, api.followups, 1)
		assert.Equal(t, "again", api.followups[0].Content)
	})

	t.Run("image reply attaches file", func(t *testing.T) {
		api := &fakeSession{}
		r := &interactionResponder{api: api, i: &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand}}

		png := []byte("\x89PNG\r\n\x1a\n0000")
		require.NoError(t, r.Reply(ctx, transport.Reply{Image: &transport.Image{Name: "dashboard.png", Data: png}}))

		data := api.responses[0].Data
		assert.Zero(t, data.Flags)
		require.Len(t, data.Files, 1)
		assert.Equal(t, "dashboard.png", data.Files[0].Name)
		assert.Equal(t, "image/png", data.Files[0].ContentType)
	})

	t.Run("failed respond leaves state unchanged", func(t *testing.T) {
		api := &fakeSession{respErr: errors.New("unknown interaction")}
		r := &interactionResponder{api: api, i: &discordgo.Interaction{Type: discordgo.InteractionModalSubmit}}
		assert.Error(t, r.Reply(ctx, transport.Reply{Content: "x"}))
		assert.False(t, r.responded)
	})

	t.Run("edit message clears controls", func(t *testing.T) {
		api := &fakeSession{}
		r := &interactionResponder{api: api, i: &discordgo.Interaction{Type: discordgo.InteractionModalSubmit, ChannelID: "c1"}}
		require.NoError(t, r.EditMessage(ctx, "anchor", "WIN recorded (2.5 RR)"))

		require.Len(t, api.edits, 1)
		e := api.edits[0]
		assert.Equal(t, "anchor", e.ID)
		assert.Equal(t, "c1", e.Channel)
		assert.Equal(t, "WIN recorded (2.5 RR)", *e.Content)
		require.NotNil(t, e.Components)
		assert.Empty(t, *e.Components)
	})
}

func TestMessageResponder_Unsupported(t *testing.T) {
	r := &messageResponder{api: &fakeSession{}}
	assert.ErrorIs(t, r.PromptAmount(context.Background(), "tok"), ErrUnsupported)
	assert.ErrorIs(t, r.Resolve(context.Background(), "x"), ErrUnsupported)
}

func TestRegister(t *testing.T) {
	b := newTestBot(&fakeSession{}, &fakeHandlers{}, nil)
	b.guildID = "g1"

	reg := &fakeRegistrar{}
	require.NoError(t, b.register(reg, "app"))
	assert.Equal(t, "app", reg.appID)
	assert.Equal(t, "g1", reg.guildID)

	names := make([]string, len(reg.cmds))
	for i, c := range reg.cmds {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"stats", "equitycurve", "remove"}, names)

	opt := reg.cmds[2].Options[0]
	assert.Equal(t, "count", opt.Name)
	assert.False(t, opt.Required)
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, opt.Type)

	reg.err = errors.New("401")
	assert.Error(t, b.register(reg, "app"))
}

func TestNew_EmptyToken(t *testing.T) {
	_, err := New(Config{}, &fakeHandlers{}, &fakeHandlers{}, nil, nil)
	assert.Error(t, err)
}
