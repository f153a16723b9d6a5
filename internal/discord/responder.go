package discord

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"trade-journal/internal/transport"
)

// Session is the subset of *discordgo.Session the responders use.
type Session interface {
	InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, opts ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, opts ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ Session = (*discordgo.Session)(nil)

// ErrUnsupported is returned for a response the triggering event cannot carry.
var ErrUnsupported = errors.New("response not supported for this event")

// editMessage replaces a message's content and clears its components.
func editMessage(ctx context.Context, api Session, channelID, messageID, content string) error {
	edit := discordgo.NewMessageEdit(channelID, messageID).SetContent(content)
	edit.Components = &[]discordgo.MessageComponent{}
	_, err := api.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return err
}

func files(img *transport.Image) []*discordgo.File {
	if img == nil {
		return nil
	}
	return []*discordgo.File{{
		Name:        img.Name,
		ContentType: http.DetectContentType(img.Data),
		Reader:      bytes.NewReader(img.Data),
	}}
}

// messageResponder answers a MessageCreate event. Gateway messages cannot
// open dialogs or carry ephemeral replies.
type messageResponder struct {
	api       Session
	senderID  string
	channelID string
	messageID string
}

var _ transport.Responder = (*messageResponder)(nil)

func (r *messageResponder) PromptChoice(ctx context.Context, token string) error {
	_, err := r.api.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Content:    promptContent(r.senderID),
		Components: outcomeMenu(token),
		Reference:  &discordgo.MessageReference{MessageID: r.messageID, ChannelID: r.channelID},
	}, discordgo.WithContext(ctx))
	return err
}

func (r *messageResponder) PromptAmount(context.Context, string) error {
	return ErrUnsupported
}

func (r *messageResponder) Resolve(context.Context, string) error {
	return ErrUnsupported
}

func (r *messageResponder) EditMessage(ctx context.Context, messageID, content string) error {
	return editMessage(ctx, r.api, r.channelID, messageID, content)
}

func (r *messageResponder) Reply(ctx context.Context, rep transport.Reply) error {
	_, err := r.api.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Content:   rep.Content,
		Files:     files(rep.Image),
		Reference: &discordgo.MessageReference{MessageID: r.messageID, ChannelID: r.channelID},
	}, discordgo.WithContext(ctx))
	return err
}

// interactionResponder answers one interaction. The first response uses the
// interaction callback; later replies become followup messages.
type interactionResponder struct {
	api       Session
	i         *discordgo.Interaction
	responded bool
}

var _ transport.Responder = (*interactionResponder)(nil)

func (r *interactionResponder) respond(ctx context.Context, resp *discordgo.InteractionResponse) error {
	if err := r.api.InteractionRespond(r.i, resp, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	r.responded = true
	return nil
}

func (r *interactionResponder) PromptChoice(ctx context.Context, token string) error {
	if r.responded {
		return ErrUnsupported
	}
	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    promptContent(actingUserID(r.i)),
			Components: outcomeMenu(token),
		},
	})
}

func (r *interactionResponder) PromptAmount(ctx context.Context, token string) error {
	if r.responded {
		return ErrUnsupported
	}
	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: amountModal(token),
	})
}

func (r *interactionResponder) Resolve(ctx context.Context, content string) error {
	if r.i.Type != discordgo.InteractionMessageComponent || r.i.Message == nil {
		return ErrUnsupported
	}
	if r.responded {
		return editMessage(ctx, r.api, r.i.ChannelID, r.i.Message.ID, content)
	}
	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
}

func (r *interactionResponder) EditMessage(ctx context.Context, messageID, content string) error {
	return editMessage(ctx, r.api, r.i.ChannelID, messageID, content)
}

func (r *interactionResponder) Reply(ctx context.Context, rep transport.Reply) error {
	var flags discordgo.MessageFlags
	if rep.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	if r.responded {
		_, err := r.api.FollowupMessageCreate(r.i, false, &discordgo.WebhookParams{
			Content: rep.Content,
			Files:   files(rep.Image),
			Flags:   flags,
		}, discordgo.WithContext(ctx))
		return err
	}
	return r.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: rep.Content,
			Files:   files(rep.Image),
			Flags:   flags,
		},
	})
}
