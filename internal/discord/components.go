package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"trade-journal/internal/commands"
	"trade-journal/internal/domain"
)

// Input and label constants shared with the capture dialog.
const (
	AmountInputID    = "rr_input"
	amountTitle      = "Enter RR"
	amountLabel      = "Enter RR value"
	outcomePrompt    = "📊 <@%s>, select your trade result:"
	outcomeHolder    = "Select trade result"
	minRemoveCount   = 1.0
)

func promptContent(userID string) string {
	return fmt.Sprintf(outcomePrompt, userID)
}

// outcomeMenu is the single-row select menu attached to a prompt.
func outcomeMenu(customID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    customID,
					Placeholder: outcomeHolder,
					Options: []discordgo.SelectMenuOption{
						{Label: "Win-RR", Value: string(domain.OutcomeWin)},
						{Label: "SL (-1RR)", Value: string(domain.OutcomeLoss)},
						{Label: "BE (0RR)", Value: string(domain.OutcomeBreakEven)},
					},
				},
			},
		},
	}
}

// amountModal is the RR dialog opened for a win.
func amountModal(customID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: customID,
		Title:    amountTitle,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID: AmountInputID,
						Label:    amountLabel,
						Style:    discordgo.TextInputShort,
						Required: true,
					},
				},
			},
		},
	}
}

// ApplicationCommands returns the slash command definitions.
func ApplicationCommands() []*discordgo.ApplicationCommand {
	minCount := minRemoveCount
	return []*discordgo.ApplicationCommand{
		{
			Name:        commands.CmdStats,
			Description: "View trading dashboard",
		},
		{
			Name:        commands.CmdEquityCurve,
			Description: "View RR equity curve",
		},
		{
			Name:        commands.CmdRemove,
			Description: "Remove last trade(s)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        commands.ArgCount,
					Description: "Number of trades to remove",
					Required:    false,
					MinValue:    &minCount,
				},
			},
		},
	}
}

// textInputValue finds the value of the text input with the given ID.
// Submitted modal components decode as pointers; built ones are values.
func textInputValue(components []discordgo.MessageComponent, id string) (string, bool) {
	for _, c := range components {
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			if s, ok := textInputValue(v.Components, id); ok {
				return s, true
			}
		case discordgo.ActionsRow:
			if s, ok := textInputValue(v.Components, id); ok {
				return s, true
			}
		case *discordgo.TextInput:
			if v.CustomID == id {
				return v.Value, true
			}
		case discordgo.TextInput:
			if v.CustomID == id {
				return v.Value, true
			}
		}
	}
	return "", false
}
