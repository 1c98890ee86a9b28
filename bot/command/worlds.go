package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slices"

	"github.com/eden-guild/pianobot/pkg/storage"
)

var Worlds = discordgo.ApplicationCommand{
	Name:        "worlds",
	Description: "List the current Wynncraft worlds sorted by uptime",
}

func WorldsResponse(worlds []*storage.World, now time.Time) *discordgo.InteractionResponse {
	slices.SortFunc(worlds, func(a, b *storage.World) int {
		return int(b.FirstSeen.Sub(a.FirstSeen)) // shortest uptime first
	})

	rows := make([][]string, len(worlds))
	for i, world := range worlds {
		uptime := now.Sub(world.FirstSeen)
		rows[i] = []string{
			world.Name,
			worldRegion(world.Name),
			fmt.Sprintf("%02d:%02d hours", int(uptime.Hours()), int(uptime.Minutes())%60),
		}
	}

	content := MonoTable([]Column{{"Server", 10}, {"Region", 18}, {"Uptime", 18}}, limitRows(rows))
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}

func worldRegion(name string) string {
	switch {
	case strings.HasPrefix(name, "NA"):
		return "North America"
	case strings.HasPrefix(name, "EU"):
		return "Europe"
	}
	return "Unknown"
}
