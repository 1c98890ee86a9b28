package command

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/eden-guild/pianobot/pkg/format"
)

const Sort = "sort"

var Awards = discordgo.ApplicationCommand{
	Name:        "awards",
	Description: "Leaderboards for raids, wars and guild XP in the current promotion cycle",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        Sort,
			Description: "Stat to sort the leaderboard by",
			Type:        discordgo.ApplicationCommandOptionString,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Guild Raids", Value: "raids"},
				{Name: "Wars", Value: "wars"},
				{Name: "Guild XP", Value: "xp"},
			},
		},
	},
}

func GetAwardsParams(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, option := range options {
		if option.Name == Sort {
			return option.StringValue()
		}
	}
	return "raids"
}

// AwardRow is one member's progress within the running cycle.
type AwardRow struct {
	Username string
	Raids    int
	Wars     int
	XP       int64
}

func AwardsResponse(sortBy string, cycleEnd time.Time, rows []AwardRow) *discordgo.InteractionResponse {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = []string{
			row.Username,
			fmt.Sprintf("%d", row.Raids),
			fmt.Sprintf("%d", row.Wars),
			format.Full(float64(row.XP)),
		}
	}
	cells = limitRows(cells)
	content := fmt.Sprintf(
		"Current Eden Award leaderboards, sorted by %s.\nThis promotion cycle will end on <t:%d>\n%s",
		sortBy, cycleEnd.Unix(),
		MonoTable([]Column{
			{"Username", 22}, {"Guild Raids", 14}, {"Wars", 14}, {"Guild XP", 20},
		}, cells))
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}
