package discord

import (
	"github.com/bwmarrin/discordgo"

	"trade-journal/internal/transport"
)

func messageEvent(m *discordgo.MessageCreate) transport.MessageWithImage {
	in := transport.MessageWithImage{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
	}
	if m.Author != nil {
		in.SenderID = m.Author.ID
		in.SenderIsBot = m.Author.Bot
	}
	for _, a := range m.Attachments {
		in.Attachments = append(in.Attachments, transport.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         a.URL,
		})
	}
	return in
}

// actingUserID is the member's user in guilds and the user in DMs.
func actingUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func choiceEvent(i *discordgo.Interaction) transport.ChoiceSelected {
	data := i.MessageComponentData()
	in := transport.ChoiceSelected{
		Token:        data.CustomID,
		ActingUserID: actingUserID(i),
		ChannelID:    i.ChannelID,
	}
	if len(data.Values) > 0 {
		in.Choice = data.Values[0]
	}
	if i.Message != nil {
		in.MessageID = i.Message.ID
	}
	return in
}

func amountEvent(i *discordgo.Interaction) transport.AmountSubmitted {
	data := i.ModalSubmitData()
	raw, _ := textInputValue(data.Components, AmountInputID)
	return transport.AmountSubmitted{
		Token:        data.CustomID,
		RawText:      raw,
		ActingUserID: actingUserID(i),
		ChannelID:    i.ChannelID,
	}
}

func commandEvent(i *discordgo.Interaction) transport.CommandInvoked {
	data := i.ApplicationCommandData()
	in := transport.CommandInvoked{
		Name:         data.Name,
		ActingUserID: actingUserID(i),
	}
	for _, opt := range data.Options {
		if opt.Type != discordgo.ApplicationCommandOptionInteger {
			continue
		}
		if in.Args == nil {
			in.Args = make(map[string]int64)
		}
		in.Args[opt.Name] = opt.IntValue()
	}
	return in
}
