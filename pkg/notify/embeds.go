package notify

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/eden-guild/pianobot/pkg/format"
)

const (
	colorJoin       = 0x00FF00
	colorLeave      = 0xFF0000
	colorNameChange = 0x88FFFF
	colorPromotion  = 0x88FF88
	colorDemotion   = 0xFF8888
	colorCapture    = 0x00AA00
	colorLoss       = 0xAA0000
)

// RaidColors keys embed colors by raid name.
var RaidColors = map[string]int{
	"Nest of the Grootslangs":  0x00AA00,
	"Orphion's Nexus of Light": 0xFFAA00,
	"The Canyon Colossus":      0x00AAAA,
	"The Nameless Anomaly":     0x5555FF,
}

func memberEmbed(title, description string, color int, uuid string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: "https://mc-heads.net/avatar/" + uuid},
	}
}

// JoinEmbed announces a new roster member. The profile lines are empty when
// the supplementary player fetch failed.
func JoinEmbed(guild, username, uuid string, joined time.Time, profile string) *discordgo.MessageEmbed {
	description := fmt.Sprintf("%s has joined %s <t:%d:R>\n\n%s", username, guild, joined.Unix(), profile)
	return memberEmbed("Guild Join: "+username, description, colorJoin, uuid)
}

func LeaveEmbed(guild, username, uuid, rank string, joined time.Time, xp int64) *discordgo.MessageEmbed {
	description := fmt.Sprintf("%s has left %s!\n\nJoined at: <t:%d>\nLast rank: %s\nXP contributed: %d",
		username, guild, joined.Unix(), rank, xp)
	return memberEmbed("Guild Leave: "+username, description, colorLeave, uuid)
}

func NameChangeEmbed(oldName, newName, rank, uuid string) *discordgo.MessageEmbed {
	description := fmt.Sprintf("%s has changed their name to %s!\n\nGuild rank: %s\nOld name: %s\nNew name: %s",
		oldName, newName, rank, oldName, newName)
	return memberEmbed("Name Change: "+newName, description, colorNameChange, uuid)
}

// RankChangeEmbed announces a promotion or demotion.
func RankChangeEmbed(username, oldRank, newRank, uuid string, promotion bool) *discordgo.MessageEmbed {
	direction := "demoted"
	title := "Guild demotion: " + username
	color := colorDemotion
	if promotion {
		direction = "promoted"
		title = "Guild promotion: " + username
		color = colorPromotion
	}
	description := fmt.Sprintf("%s has been %s!\n\nOld rank: %s\nNew rank: %s",
		username, direction, oldRank, newRank)
	return memberEmbed(title, description, color, uuid)
}

// TerritoryEmbed announces a capture or loss involving the home guild.
func TerritoryEmbed(territory, oldGuild, newGuild, homeGuild string, oldCount, newCount int, held time.Duration) *discordgo.MessageEmbed {
	color := colorLoss
	title := ":crossed_swords:   Territory lost"
	if newGuild == homeGuild {
		color = colorCapture
		title = ":crossed_swords:   Territory captured"
	}
	return &discordgo.MessageEmbed{
		Color:       color,
		Title:       title,
		Description: fmt.Sprintf("%s (%d)\n:arrow_forward:  %s (%d)", oldGuild, oldCount, newGuild, newCount),
		Author:      &discordgo.MessageEmbedAuthor{Name: territory},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Held for " + humanizeDuration(held)},
	}
}

// humanizeDuration renders in days above 3 days, hours above 1 hour, and
// minutes below that.
func humanizeDuration(d time.Duration) string {
	value := d.Hours() / 24
	unit := "day"
	if value < 3 {
		value = d.Hours()
		unit = "hour"
		if value < 1 {
			value = d.Minutes()
			unit = "minute"
		}
	}
	rounded := int(math.Round(value))
	if rounded != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", rounded, unit)
}

// RaidSquadEmbed credits one squad for a detected raid completion. The
// emerald amount comes from the active reward configuration.
func RaidSquadEmbed(raid string, members []string, guildLevel, emeralds int) *discordgo.MessageEmbed {
	lines := make([]string, len(members))
	for i, member := range members {
		lines[i] = fmt.Sprintf(":number_%d:    %s", i+1, member)
	}
	xpReward := 400.0 / 3 * (math.Pow(1.15, float64(guildLevel)) - 1)
	return &discordgo.MessageEmbed{
		Color:       RaidColors[raid],
		Title:       ":crossed_swords:   Guild Raid completed",
		Description: strings.Join(lines, "\n"),
		Author:      &discordgo.MessageEmbedAuthor{Name: raid},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("+2 Aspects, +%d Emeralds, +%s XP", emeralds, format.Short(xpReward)),
		},
	}
}

// Ranking is one leaderboard entry of the award cycle results.
type Ranking struct {
	Name   string
	Amount int64
}

// AwardsEmbed renders the final cycle results: top placements per category
// plus the raffle winners.
func AwardsEmbed(cycle string, raids, wars, xp []Ranking, raffleWinners []string, totalTickets int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Final award results for promotion cycle  `%s`", cycle),
	}
	categories := []struct {
		title string
		code  string
		data  []Ranking
	}{
		{"Guild Raids", "gss", raids},
		{"Wars", "js", wars},
		{"Guild XP", "less", xp},
	}
	for _, category := range categories {
		block := fmt.Sprintf("```%s\n", category.code)
		for i, entry := range category.data {
			if i >= 9 {
				break
			}
			block += fmt.Sprintf("%d. %s (+%d)\n", i+1, entry.Name, entry.Amount)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  category.title,
			Value: block + "```",
		})
	}

	header := fmt.Sprintf("Total tickets: %d", totalTickets)
	block := fmt.Sprintf("```md\n%s\n%s", header, strings.Repeat("-", len(header)))
	for i, winner := range raffleWinners {
		if i >= 3 {
			break
		}
		block += fmt.Sprintf("\n%d. %s", i+1, winner)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Raid Raffle",
		Value: block + "```",
	})
	return embed
}

// XPLeaderboard renders the per-interval XP gains message, ranked descending.
func XPLeaderboard(gains []Ranking, intervalMinutes int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("-", 80))
	var total int64
	for i, gain := range gains {
		total += gain.Amount
		rate := float64(gain.Amount) / float64(intervalMinutes)
		sb.WriteString(fmt.Sprintf("\n**#%d %s** `%s XP | %s XP/min`",
			i+1, gain.Name, format.Full(float64(gain.Amount)), format.Full(rate)))
	}
	sb.WriteString(fmt.Sprintf("\n**Total: ** `%s XP`", format.Full(float64(total))))
	return sb.String()
}
