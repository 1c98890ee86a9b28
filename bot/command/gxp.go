package command

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slices"

	"github.com/eden-guild/pianobot/pkg/format"
)

const (
	DaysStart = "days-start"
	DaysEnd   = "days-end"
)

var GXP = discordgo.ApplicationCommand{
	Name:        "gxp",
	Description: "Guild XP contributed per member over a chosen interval",
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

// GetGXPParams converts the day offsets into absolute bounds; either may be
// nil when the option was omitted.
func GetGXPParams(options []*discordgo.ApplicationCommandInteractionDataOption, now time.Time) (start, end *time.Time) {
	for _, option := range options {
		offset := now.Add(-time.Duration(option.FloatValue() * 24 * float64(time.Hour)))
		switch option.Name {
		case DaysStart:
			start = &offset
		case DaysEnd:
			end = &offset
		}
	}
	return start, end
}

func GXPResponse(start, end *time.Time, gains map[string]int64) *discordgo.InteractionResponse {
	if len(gains) == 0 {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: "No guild XP data for this interval."},
		}
	}

	rows := make([][]string, 0, len(gains))
	for name, amount := range gains {
		rows = append(rows, []string{name, format.Full(float64(amount))})
	}
	slices.SortFunc(rows, func(a, b []string) int {
		switch {
		case gains[b[0]] > gains[a[0]]:
			return 1
		case gains[b[0]] < gains[a[0]]:
			return -1
		}
		return 0
	})

	message := "Guild XP contributions"
	if start != nil && end == nil {
		message += fmt.Sprintf(" since <t:%d:D>", start.Unix())
	} else if start != nil && end != nil {
		message += fmt.Sprintf(" between <t:%d:D> and <t:%d:D>", start.Unix(), end.Unix())
	}
	content := message + ":\n" + MonoTable([]Column{{"Username", 19}, {"Amount", 15}}, limitRows(rows))
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}
