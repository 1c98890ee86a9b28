package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/eden-guild/pianobot/pkg/storage"
)

const (
	TomeJoin = "join"
	TomeList = "list"

	// Component IDs on the staff list message. The acted-on Discord user ID
	// is appended after the colon.
	TomeGrantButton = "tome-grant:"
	TomeDenyButton  = "tome-deny:"

	Member = "member"
)

var Tome = discordgo.ApplicationCommand{
	Name:        "tome",
	Description: "The guild tome queue",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        TomeJoin,
			Description: "Join the tome queue",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        TomeList,
			Description: "List pending tome requests",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
	},
}

func GetTomeAction(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	if len(options) == 0 {
		return TomeList
	}
	return options[0].Name
}

// TomeJoinResponse confirms the queue join; a duplicate attempt echoes when
// the open request was made.
func TomeJoinResponse(alreadyQueued bool, lastRequest *time.Time) *discordgo.InteractionResponse {
	content := "You have been added to the tome queue!"
	if alreadyQueued {
		content = "You already have a pending tome request."
		if lastRequest != nil {
			content = fmt.Sprintf("You already have a pending tome request, made <t:%d:R>.", lastRequest.Unix())
		}
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

// TomeListResponse renders the queue with grant/deny buttons on the first
// pending entry, oldest request first.
func TomeListResponse(pending []*storage.TomeSummary) *discordgo.InteractionResponse {
	if len(pending) == 0 {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: "The tome queue is empty."},
		}
	}

	var sb strings.Builder
	sb.WriteString("Pending tome requests:\n")
	for i, entry := range pending {
		sb.WriteString(fmt.Sprintf("%d. <@%s>", i+1, entry.DiscordID))
		if entry.Pending > 1 {
			sb.WriteString(fmt.Sprintf(" (×%d)", entry.Pending))
		}
		sb.WriteString(fmt.Sprintf(", waiting since <t:%d:R>\n", entry.FirstRequest.Unix()))
	}

	head := pending[0].DiscordID
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: sb.String(),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Grant",
							Style:    discordgo.SuccessButton,
							CustomID: TomeGrantButton + head,
						},
						discordgo.Button{
							Label:    "Deny",
							Style:    discordgo.DangerButton,
							CustomID: TomeDenyButton + head,
						},
					},
				},
			},
		},
	}
}

func TomeActionResponse(action, discordID string) *discordgo.InteractionResponse {
	verb := "granted a tome"
	if action == TomeDenyButton {
		verb = "removed from the tome queue"
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("<@%s> has been %s.", discordID, verb),
		},
	}
}
