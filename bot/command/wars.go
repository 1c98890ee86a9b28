package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slices"
)

var Wars = discordgo.ApplicationCommand{
	Name:        "wars",
	Description: "Guild war completions per member over a chosen interval",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        DaysStart,
			Description: "Interval start, in days before now",
			Type:        discordgo.ApplicationCommandOptionNumber,
		},
		{
			Name:        DaysEnd,
			Description: "Interval end, in days before now",
			Type:        discordgo.ApplicationCommandOptionNumber,
		},
	},
}

// GetWarsParams reads the same day-offset interval the gxp command uses.
func GetWarsParams(options []*discordgo.ApplicationCommandInteractionDataOption, now time.Time) (start, end *time.Time) {
	return GetGXPParams(options, now)
}

func WarsResponse(start, end *time.Time, counts map[string]int) *discordgo.InteractionResponse {
	if len(counts) == 0 {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: "No guild wars in this interval."},
		}
	}

	rows := make([][]string, 0, len(counts))
	for name, amount := range counts {
		rows = append(rows, []string{name, strconv.Itoa(amount)})
	}
	slices.SortFunc(rows, func(a, b []string) int {
		switch {
		case counts[b[0]] > counts[a[0]]:
			return 1
		case counts[b[0]] < counts[a[0]]:
			return -1
		}
		return 0
	})

	message := "Guild war completions"
	if start != nil && end == nil {
		message += fmt.Sprintf(" since <t:%d:D>", start.Unix())
	} else if start != nil && end != nil {
		message += fmt.Sprintf(" between <t:%d:D> and <t:%d:D>", start.Unix(), end.Unix())
	}
	content := message + ":\n" + MonoTable([]Column{{"Username", 22}, {"Amount", 8}}, limitRows(rows))
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}
