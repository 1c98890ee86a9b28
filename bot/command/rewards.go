package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slices"

	"github.com/eden-guild/pianobot/pkg/storage"
)

const (
	RewardsView    = "view"
	RewardsSet     = "set"
	RewardsPending = "pending"
	RewardsReset   = "reset"

	RaidEmeralds = "raid-emeralds"
	XPEmeralds   = "xp-emeralds"
	RewardMember = "member"
)

var adminPermission = int64(discordgo.PermissionAdministrator)

var Rewards = discordgo.ApplicationCommand{
	Name:                     "rewards",
	Description:              "View or change the raid and XP reward amounts",
	DefaultMemberPermissions: &adminPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        RewardsView,
			Description: "Show the current reward configuration",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        RewardsSet,
			Description: "Store a new reward configuration version",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        RaidEmeralds,
					Description: "Emeralds per completed raid",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        XPEmeralds,
					Description: "Emeralds per 1B contributed XP",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
		{
			Name:        RewardsPending,
			Description: "List members with undistributed rewards",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        RewardsReset,
			Description: "Mark a member's pending rewards as paid out",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        RewardMember,
					Description: "Member username",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
	},
}

func GetRewardsParams(options []*discordgo.ApplicationCommandInteractionDataOption) (action string, raidEmeralds, xpEmeralds int, member string) {
	if len(options) == 0 {
		return RewardsView, 0, 0, ""
	}
	action = options[0].Name
	for _, option := range options[0].Options {
		switch option.Name {
		case RaidEmeralds:
			raidEmeralds = int(option.IntValue())
		case XPEmeralds:
			xpEmeralds = int(option.IntValue())
		case RewardMember:
			member = option.StringValue()
		}
	}
	return action, raidEmeralds, xpEmeralds, member
}

func RewardsViewResponse(config *storage.RewardConfig) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf(
				"Every raid rewards `%d` emeralds (`%.2f` LE), every 1B XP rewards `%d` emeralds (`%.2f` LE).",
				config.EmeraldsPerRaid, float64(config.EmeraldsPerRaid)/4096,
				config.EmeraldsPerXPReward, float64(config.EmeraldsPerXPReward)/4096),
		},
	}
}

func RewardsSetResponse(raidEmeralds, xpEmeralds int) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf(
				"Reward configuration updated: `%d` emeralds per raid, `%d` emeralds per 1B XP.",
				raidEmeralds, xpEmeralds),
		},
	}
}

// RewardsPendingResponse lists everyone owed something, sorted by raid
// emeralds. LE columns are converted at 4096 emeralds per liquid emerald.
func RewardsPendingResponse(raidEmeralds map[string]int64, aspects, xpEmeralds map[string]int) *discordgo.InteractionResponse {
	names := make(map[string]struct{})
	for name := range raidEmeralds {
		names[name] = struct{}{}
	}
	for name := range aspects {
		names[name] = struct{}{}
	}
	for name := range xpEmeralds {
		names[name] = struct{}{}
	}
	if len(names) == 0 {
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: "There are no pending rewards."},
		}
	}

	rows := make([][]string, 0, len(names))
	for name := range names {
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", raidEmeralds[name]/4096),
			fmt.Sprintf("%d", aspects[name]),
			fmt.Sprintf("%d", xpEmeralds[name]/4096),
		})
	}
	slices.SortFunc(rows, func(a, b []string) int {
		switch {
		case raidEmeralds[b[0]] > raidEmeralds[a[0]]:
			return 1
		case raidEmeralds[b[0]] < raidEmeralds[a[0]]:
			return -1
		}
		return 0
	})

	content := "Pending rewards:\n" + MonoTable([]Column{
		{"Username", 19}, {"Raid LE", 10}, {"Aspects", 10}, {"XP LE", 8},
	}, limitRows(rows))
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}

func RewardsResetResponse(member string, found bool) *discordgo.InteractionResponse {
	content := fmt.Sprintf("Pending rewards of `%s` have been reset.", member)
	if !found {
		content = fmt.Sprintf("Username `%s` not found.", member)
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}
