package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

const (
	TrackingOverview = "overview"
	TrackingChannel  = "channel"
	TrackingPing     = "ping"
	TrackingRole     = "role"
	TrackingRank     = "rank"

	TrackingIntervalOption = "interval"
	TrackingRoleOption     = "role"
	TrackingRankOption     = "rank"

	trackingIconURL = "https://cdn.discordapp.com/attachments/784114583974445077/802578487252090950/eden100.png"
)

var (
	trackingDMPermission = false
	trackingIntervalMin  = float64(0)

	trackingRankChoices = []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Always ping", Value: -1},
		{Name: "Recruit", Value: 0},
		{Name: "Recruiter", Value: 1},
		{Name: "Captain", Value: 2},
		{Name: "Strategist", Value: 3},
		{Name: "Chief", Value: 4},
		{Name: "Owner", Value: 5},
	}
)

var Tracking = discordgo.ApplicationCommand{
	Name:         "tracking",
	Description:  "View or configure territory tracking options for this server",
	DMPermission: &trackingDMPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        TrackingOverview,
			Description: "Overview of current territory tracking options",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        TrackingChannel,
			Description: "Set this channel for tracking messages, use command again to disable tracking",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
		},
		{
			Name:        TrackingPing,
			Description: "View or configure the territory tracking ping interval",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        TrackingIntervalOption,
					Description: "The new ping interval in minutes, 0 to turn pings off",
					Type:        discordgo.ApplicationCommandOptionInteger,
					MinValue:    &trackingIntervalMin,
				},
			},
		},
		{
			Name:        TrackingRole,
			Description: "View or configure the role this bot will ping",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        TrackingRoleOption,
					Description: "The role that will get pinged",
					Type:        discordgo.ApplicationCommandOptionRole,
				},
			},
		},
		{
			Name:        TrackingRank,
			Description: "Configure when pings will happen or view current setting",
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        TrackingRankOption,
					Description: "Bot will ping unless one of the chosen rank or higher is online",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Choices:     trackingRankChoices,
				},
			},
		},
	},
}

// GetTrackingParams picks the subcommand and its optional value; a nil or
// empty value means the user wants to view the current setting.
func GetTrackingParams(options []*discordgo.ApplicationCommandInteractionDataOption) (action string, interval *int, roleID string, rank *int) {
	if len(options) == 0 {
		return TrackingOverview, nil, "", nil
	}
	action = options[0].Name
	for _, option := range options[0].Options {
		switch option.Name {
		case TrackingIntervalOption:
			value := int(option.IntValue())
			interval = &value
		case TrackingRoleOption:
			roleID = option.RoleValue(nil, "").ID
		case TrackingRankOption:
			value := int(option.IntValue())
			rank = &value
		}
	}
	return action, interval, roleID, rank
}

// TrackingOverviewResponse summarizes the server's tracking configuration in
// one embed: where messages go, whom they ping and when pings are held back.
func TrackingOverviewResponse(server *storage.Server) *discordgo.InteractionResponse {
	description := "Not active at the moment. Use `/tracking channel` to start territory tracking!"
	color := 0xFFFF00
	if server.TerritoryLogChannel != nil {
		roleMsg := "does not ping a role"
		if server.PingRole != nil {
			roleMsg = fmt.Sprintf("pings <@&%s>", *server.PingRole)
		}
		description = fmt.Sprintf("Currently running in <#%s>, %s if a territory gets taken.",
			*server.TerritoryLogChannel, roleMsg)
		color = 0x00FF00
	}

	intervalName := "Pings disabled"
	if server.PingIntervalMinutes != nil {
		intervalName = fmt.Sprintf("Ping cooldown: %d minutes", *server.PingIntervalMinutes)
	}
	rankName := "Pings regardless of online members"
	if server.PingRank != nil {
		rankName = fmt.Sprintf("Pings unless a %s is online", wynn.Rank(*server.PingRank))
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Description: description,
				Color:       color,
				Author: &discordgo.MessageEmbedAuthor{
					Name:    "Eden Territory Tracking",
					IconURL: trackingIconURL,
				},
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:  intervalName,
						Value: "*Configure with* `/tracking ping <minutes>`*.*",
					},
					{
						Name:  rankName,
						Value: "*Configure with* `/tracking rank <stars>`*, use -1 as value to ping regardless of online members.*",
					},
				},
			}},
		},
	}
}

func TrackingChannelResponse(channelID string, enabled bool) *discordgo.InteractionResponse {
	content := "Territory tracking toggled off."
	if enabled {
		content = fmt.Sprintf("Territory tracking will be sent in <#%s>.", channelID)
	}
	return trackingMessage(content)
}

// TrackingPingResponse reports the ping interval, either the stored one on a
// view or the just-applied one after an update.
func TrackingPingResponse(interval *int, updated bool) *discordgo.InteractionResponse {
	switch {
	case updated && interval == nil:
		return trackingMessage("Territory ping toggled off.")
	case updated:
		return trackingMessage(fmt.Sprintf("Territory ping cooldown changed to %d minutes.", *interval))
	case interval == nil:
		return trackingMessage("Territory ping is currently disabled.")
	}
	return trackingMessage(fmt.Sprintf("Territory ping cooldown: `%d minutes`", *interval))
}

func TrackingRoleResponse(roleID string, updated bool) *discordgo.InteractionResponse {
	switch {
	case updated:
		return trackingMessage(fmt.Sprintf("Territory ping role changed to <@&%s>.", roleID))
	case roleID == "":
		return trackingMessage("No territory ping role configured.")
	}
	return trackingMessage(fmt.Sprintf("Territory ping role: <@&%s>", roleID))
}

func TrackingRankResponse(rank *int, updated bool) *discordgo.InteractionResponse {
	switch {
	case updated && rank == nil:
		return trackingMessage("Pings are now always active.")
	case updated:
		return trackingMessage(fmt.Sprintf("Pings will be deactivated when at least one %s is online.", wynn.Rank(*rank)))
	case rank == nil:
		return trackingMessage("Pings are always on, regardless of online members.")
	}
	return trackingMessage(fmt.Sprintf("Pings are disabled when at least one %s is online.", wynn.Rank(*rank)))
}

func TrackingPermissionResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "You don't have the required permissions to perform this action!",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func TrackingGuildOnlyResponse() *discordgo.InteractionResponse {
	return trackingMessage("This command can only be used in a server.")
}

func trackingMessage(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
}
