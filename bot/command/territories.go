package command

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slices"

	"github.com/eden-guild/pianobot/pkg/storage"
)

var Territories = discordgo.ApplicationCommand{
	Name:        "territories",
	Description: "List the territories the bot tracks and their current owners",
}

func TerritoriesResponse(territories []*storage.Territory) *discordgo.InteractionResponse {
	if len(territories) == 0 {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: "No territories tracked yet."},
		}
	}

	width := 0
	for _, territory := range territories {
		if len(territory.Name) > width {
			width = len(territory.Name)
		}
	}
	rows := make([][]string, len(territories))
	for i, territory := range territories {
		guild := territory.GuildName()
		if guild == "" {
			guild = "-"
		}
		rows[i] = []string{territory.Name, guild}
	}
	slices.SortFunc(rows, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})

	content := MonoTable([]Column{
		{"", 5}, {"Territory", width + 8}, {"Guild", width + 8},
	}, limitRows(enumerate(rows)))
	if len(rows) > pageRows {
		content += fmt.Sprintf("Showing %d of %d territories.", pageRows, len(rows))
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}
