package command

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slices"
)

const (
	ActivityWeek = "week"
	ActivityYear = "year"
)

var activityWeekMin = float64(1)

var Activity = discordgo.ApplicationCommand{
	Name:        "activity",
	Description: "How long each member was seen online during an ISO week",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        ActivityWeek,
			Description: "ISO week number, defaults to the current week",
			Type:        discordgo.ApplicationCommandOptionInteger,
			MinValue:    &activityWeekMin,
			MaxValue:    53,
		},
		{
			Name:        ActivityYear,
			Description: "Year of the week, defaults to the current year",
			Type:        discordgo.ApplicationCommandOptionInteger,
		},
	},
}

// GetActivityParams resolves the requested week column key, defaulting both
// parts to the current ISO week.
func GetActivityParams(options []*discordgo.ApplicationCommandInteractionDataOption, now time.Time) string {
	year, week := now.ISOWeek()
	for _, option := range options {
		switch option.Name {
		case ActivityWeek:
			week = int(option.IntValue())
		case ActivityYear:
			year = int(option.IntValue())
		}
	}
	return fmt.Sprintf("%d-%d", year, week)
}

// ActivityEntry is one member's recorded online time for a week, with the
// rank taken from the live roster.
type ActivityEntry struct {
	Username string
	Rank     string
	Minutes  int
}

// ActivityResponse lists members least active first.
func ActivityResponse(week string, entries []ActivityEntry) *discordgo.InteractionResponse {
	if len(entries) == 0 {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: "No data available for the specified interval!"},
		}
	}

	slices.SortStableFunc(entries, func(a, b ActivityEntry) int {
		return a.Minutes - b.Minutes
	})
	rows := make([][]string, len(entries))
	for i, entry := range entries {
		rows[i] = []string{entry.Username, entry.Rank, formatOnlineTime(entry.Minutes)}
	}

	content := fmt.Sprintf("Member activity for week `%s`:\n", week) +
		MonoTable([]Column{{"Username", 19}, {"Rank", 12}, {"Time Online", 12}}, limitRows(rows))
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}

func formatOnlineTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	return fmt.Sprintf("%02d:%02d hours", minutes/60, minutes%60)
}
