// Package transport defines the platform-neutral events and responses
// exchanged between the chat adapter and the bot logic.
package transport

import (
	"context"
	"strings"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	URL         string
}

// IsImage reports whether the attachment's MIME type is image/*.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.ContentType), "image/")
}

// MessageWithImage is a channel message carrying at least one attachment.
type MessageWithImage struct {
	SenderID    string
	SenderIsBot bool
	MessageID   string
	ChannelID   string
	Attachments []Attachment
}

// HasImage reports whether any attachment is an image.
func (m MessageWithImage) HasImage() bool {
	for _, a := range m.Attachments {
		if a.IsImage() {
			return true
		}
	}
	return false
}

// ChoiceSelected is an option picked from an outcome prompt.
type ChoiceSelected struct {
	Token        string
	Choice       string
	ActingUserID string
	MessageID    string // the prompt message carrying the control
	ChannelID    string
}

// AmountSubmitted is a submitted RR dialog.
type AmountSubmitted struct {
	Token        string
	RawText      string
	ActingUserID string
	ChannelID    string
}

// CommandInvoked is a slash command.
type CommandInvoked struct {
	Name         string
	Args         map[string]int64
	ActingUserID string
}

// Image is a rendered attachment.
type Image struct {
	Name string
	Data []byte
}

// Reply is a response to the triggering event.
type Reply struct {
	Content   string
	Image     *Image
	Ephemeral bool // visible only to the acting user
}

// Responder sends responses for one inbound event. Implementations are
// bound to that event and must not be reused across events.
type Responder interface {
	// PromptChoice posts the outcome prompt with the given token.
	PromptChoice(ctx context.Context, token string) error
	// PromptAmount opens the RR dialog with the given token.
	PromptAmount(ctx context.Context, token string) error
	// Resolve replaces the triggering prompt's content and removes its controls.
	Resolve(ctx context.Context, content string) error
	// EditMessage replaces another message's content and removes its controls.
	EditMessage(ctx context.Context, messageID, content string) error
	// Reply answers the triggering event.
	Reply(ctx context.Context, r Reply) error
}
