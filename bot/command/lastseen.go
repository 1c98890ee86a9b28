package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/eden-guild/pianobot/pkg/storage"
)

const Player = "player"

var LastSeen = discordgo.ApplicationCommand{
	Name:        "lastseen",
	Description: "When a player was last seen online on Wynncraft",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        Player,
			Description: "Player name or UUID",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
		},
	},
}

func GetLastSeenParams(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, option := range options {
		if option.Name == Player {
			return option.StringValue()
		}
	}
	return ""
}

func LastSeenResponse(name string, player *storage.Player, online bool) *discordgo.InteractionResponse {
	var content string
	switch {
	case online:
		content = fmt.Sprintf("`%s` is online right now.", name)
	case player == nil:
		content = fmt.Sprintf("`%s` has not been seen by this bot.", name)
	default:
		content = fmt.Sprintf("`%s` was last seen <t:%d:R>.", name, player.LastSeen.Unix())
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}
