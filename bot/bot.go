package bot

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/eden-guild/pianobot/bot/command"
	"github.com/eden-guild/pianobot/pkg/settings"
	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/task"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

// Bot serves the slash commands on top of the data the periodic jobs keep
// reconciled.
type Bot struct {
	PrimarySession    *discordgo.Session
	PostgresInterface *storage.PsqlInterface
	WynnClient        *wynn.Client
	Conf              *settings.Config
}

// MakeAndStartBot opens the gateway session and attaches the interaction
// handler. The caller registers the slash commands once the session is open.
func MakeAndStartBot(conf *settings.Config, psql *storage.PsqlInterface, wynnClient *wynn.Client) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		PrimarySession:    dg,
		PostgresInterface: psql,
		WynnClient:        wynnClient,
		Conf:              conf,
	}

	dg.AddHandler(bot.handleInteractionCreate)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Int("guilds", len(r.Guilds)).Msg("discord session ready")
	})
	dg.AddHandler(bot.handleGuildCreate)
	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds)

	if err := dg.Open(); err != nil {
		return nil, err
	}
	return bot, nil
}

func (bot *Bot) Close() {
	if err := bot.PrimarySession.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close discord session")
	}
}

// handleGuildCreate makes sure every server the bot lives in has a
// configuration row, so the territory ping settings have somewhere to live.
func (bot *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if err := bot.PostgresInterface.EnsureServerExists(g.ID); err != nil {
		log.Error().Err(err).Str("guild", g.ID).Msg("failed to ensure server row")
	}
}

func (bot *Bot) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var response *discordgo.InteractionResponse
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		response = bot.slashCommandResponse(i)
	case discordgo.InteractionMessageComponent:
		response = bot.componentResponse(i)
	}
	if response == nil {
		return
	}
	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		log.Error().Err(err).Msg("failed to respond to interaction")
	}
}

func (bot *Bot) slashCommandResponse(i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	data := i.ApplicationCommandData()
	log.Info().Str("command", data.Name).Str("user", interactionUserID(i)).Msg("handling slash command")

	switch data.Name {
	case command.Activity.Name:
		return bot.activityResponse(data.Options)
	case command.Awards.Name:
		return bot.awardsResponse(data.Options)
	case command.GXP.Name:
		return bot.gxpResponse(data.Options)
	case command.LastSeen.Name:
		return bot.lastSeenResponse(data.Options)
	case command.Rewards.Name:
		return bot.rewardsResponse(data.Options)
	case command.Territories.Name:
		return bot.territoriesResponse()
	case command.Tome.Name:
		return bot.tomeResponse(i, data.Options)
	case command.Tracking.Name:
		return bot.trackingResponse(i, data.Options)
	case command.Wars.Name:
		return bot.warsResponse(data.Options)
	case command.Worlds.Name:
		return bot.worldsResponse()
	}
	log.Warn().Str("command", data.Name).Msg("unrecognized slash command")
	return nil
}

func (bot *Bot) componentResponse(i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, command.TomeGrantButton):
		discordID := strings.TrimPrefix(customID, command.TomeGrantButton)
		if err := bot.PostgresInterface.GrantTome(discordID); err != nil {
			return errorResponse(err, "granting tome")
		}
		return command.TomeActionResponse(command.TomeGrantButton, discordID)
	case strings.HasPrefix(customID, command.TomeDenyButton):
		discordID := strings.TrimPrefix(customID, command.TomeDenyButton)
		if err := bot.PostgresInterface.DenyTome(discordID); err != nil {
			return errorResponse(err, "denying tome")
		}
		return command.TomeActionResponse(command.TomeDenyButton, discordID)
	}
	return nil
}

// activityResponse joins the stored per-week online minutes with the live
// roster, so departed members drop out and ranks are current.
func (bot *Bot) activityResponse(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	week := command.GetActivityParams(options, time.Now().UTC())
	weeks, err := bot.PostgresInterface.GetActivityWeeks()
	if err != nil {
		return errorResponse(err, "loading activity weeks")
	}
	if !slices.Contains(weeks, week) {
		return command.ActivityResponse(week, nil)
	}
	minutes, err := bot.PostgresInterface.GetMemberActivity(week)
	if err != nil {
		return errorResponse(err, "loading member activity")
	}

	guild, err := bot.WynnClient.Guild(context.Background(), bot.Conf.HomeGuild)
	if err != nil {
		return errorResponse(err, "fetching guild roster")
	}
	entries := make([]command.ActivityEntry, 0, len(guild.Members))
	for _, member := range guild.Members {
		entries = append(entries, command.ActivityEntry{
			Username: member.Username,
			Rank:     member.Rank.String(),
			Minutes:  minutes[member.Username],
		})
	}
	return command.ActivityResponse(week, entries)
}

// awardsResponse mirrors the finalize arithmetic of the awards job: raids
// come from the completion log, wars and XP are deltas against the previous
// cycle's baseline, with XP withdrawals clamped to the current total.
func (bot *Bot) awardsResponse(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	sortBy := command.GetAwardsParams(options)
	now := time.Now().UTC()

	stats, err := bot.PostgresInterface.GetAwardStatsForCycle(task.CycleID(now))
	if err != nil {
		return errorResponse(err, "loading cycle stats")
	}
	prevStats, err := bot.PostgresInterface.GetAwardStatsForCycle(task.CycleID(now.Add(-task.PrevCycleLookback(now))))
	if err != nil {
		return errorResponse(err, "loading baseline stats")
	}
	raidCounts, err := bot.PostgresInterface.GetRaidCountsBetween(task.CycleStart(now), now)
	if err != nil {
		return errorResponse(err, "loading raid counts")
	}

	prevWars := make(map[string]int, len(prevStats))
	prevXP := make(map[string]int64, len(prevStats))
	for _, stat := range prevStats {
		prevWars[stat.Username] = stat.Wars
		prevXP[stat.Username] = stat.XP
	}

	rows := make([]command.AwardRow, 0, len(stats))
	for _, stat := range stats {
		gained := stat.XP - prevXP[stat.Username]
		if prevXP[stat.Username] > stat.XP {
			gained = stat.XP
		}
		rows = append(rows, command.AwardRow{
			Username: stat.Username,
			Raids:    raidCounts[stat.Username],
			Wars:     stat.Wars - prevWars[stat.Username],
			XP:       gained,
		})
	}

	key := func(row command.AwardRow) int64 {
		switch sortBy {
		case "wars":
			return int64(row.Wars)
		case "xp":
			return row.XP
		}
		return int64(row.Raids)
	}
	slices.SortStableFunc(rows, func(a, b command.AwardRow) int {
		switch {
		case key(b) > key(a):
			return 1
		case key(b) < key(a):
			return -1
		}
		return 0
	})

	return command.AwardsResponse(sortBy, task.CycleEnd(now), rows)
}

func (bot *Bot) gxpResponse(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	start, end := command.GetGXPParams(options, time.Now().UTC())
	gains, err := bot.PostgresInterface.GetXPGainsBetween(start, end)
	if err != nil {
		return errorResponse(err, "loading xp gains")
	}
	return command.GXPResponse(start, end, gains)
}

func (bot *Bot) lastSeenResponse(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	name := command.GetLastSeenParams(options)

	// The API accepts names as well as UUIDs; an online player needs no
	// database lookup at all.
	player, err := bot.WynnClient.Player(context.Background(), name)
	if err != nil {
		log.Warn().Err(err).Str("player", name).Msg("player lookup failed")
		return command.LastSeenResponse(name, nil, false)
	}
	if player.Online {
		return command.LastSeenResponse(player.Username, nil, true)
	}

	stored, err := bot.PostgresInterface.GetSelectedPlayers([]string{player.UUID})
	if err != nil {
		return errorResponse(err, "loading last seen record")
	}
	if len(stored) == 0 {
		return command.LastSeenResponse(player.Username, nil, false)
	}
	return command.LastSeenResponse(player.Username, stored[0], false)
}

func (bot *Bot) rewardsResponse(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	action, raidEmeralds, xpEmeralds, member := command.GetRewardsParams(options)
	switch action {
	case command.RewardsSet:
		if err := bot.PostgresInterface.AddRewardConfig(raidEmeralds, xpEmeralds); err != nil {
			return errorResponse(err, "storing reward config")
		}
		return command.RewardsSetResponse(raidEmeralds, xpEmeralds)

	case command.RewardsPending:
		raids, err := bot.PostgresInterface.GetPendingRaids()
		if err != nil {
			return errorResponse(err, "loading pending raid rewards")
		}
		aspects, err := bot.PostgresInterface.GetPendingAspects()
		if err != nil {
			return errorResponse(err, "loading pending aspects")
		}
		xpEms, err := bot.PostgresInterface.GetPendingXPEmeralds()
		if err != nil {
			return errorResponse(err, "loading pending xp rewards")
		}
		return command.RewardsPendingResponse(raids, aspects, xpEms)

	case command.RewardsReset:
		found, err := bot.PostgresInterface.ResetPendingRaids(member)
		if err != nil {
			return errorResponse(err, "resetting pending raids")
		}
		if found {
			if _, err := bot.PostgresInterface.ResetPendingAspects(member); err != nil {
				return errorResponse(err, "resetting pending aspects")
			}
			if _, err := bot.PostgresInterface.ResetPendingXP(member); err != nil {
				return errorResponse(err, "resetting pending xp")
			}
		}
		return command.RewardsResetResponse(member, found)
	}

	config, err := bot.PostgresInterface.GetRewardConfig()
	if err != nil {
		return errorResponse(err, "loading reward config")
	}
	return command.RewardsViewResponse(config)
}

func (bot *Bot) territoriesResponse() *discordgo.InteractionResponse {
	territories, err := bot.PostgresInterface.GetAllTerritories()
	if err != nil {
		return errorResponse(err, "loading territories")
	}
	return command.TerritoriesResponse(territories)
}

func (bot *Bot) tomeResponse(i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	switch command.GetTomeAction(options) {
	case command.TomeJoin:
		discordID := interactionUserID(i)
		pending, err := bot.PostgresInterface.GetPendingTomes()
		if err != nil {
			return errorResponse(err, "loading tome queue")
		}
		for _, entry := range pending {
			if entry.DiscordID == discordID {
				last, err := bot.PostgresInterface.LastTomeRequestFor(discordID)
				if err != nil {
					return errorResponse(err, "loading last tome request")
				}
				return command.TomeJoinResponse(true, last)
			}
		}
		if err := bot.PostgresInterface.AddTomeRequest(discordID); err != nil {
			return errorResponse(err, "joining tome queue")
		}
		return command.TomeJoinResponse(false, nil)
	default:
		pending, err := bot.PostgresInterface.GetPendingTomes()
		if err != nil {
			return errorResponse(err, "loading tome queue")
		}
		return command.TomeListResponse(pending)
	}
}

// trackingResponse drives the per-server territory tracking settings. Views
// are open to everyone; every mutation requires the Manage Channels
// permission, checked against the resolved member permissions.
func (bot *Bot) trackingResponse(i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	if i.GuildID == "" || i.Member == nil {
		return command.TrackingGuildOnlyResponse()
	}
	if err := bot.PostgresInterface.EnsureServerExists(i.GuildID); err != nil {
		return errorResponse(err, "ensuring server row")
	}
	server, err := bot.PostgresInterface.GetServer(i.GuildID)
	if err != nil {
		return errorResponse(err, "loading server config")
	}
	canManage := i.Member.Permissions&discordgo.PermissionManageChannels != 0

	action, interval, roleID, rank := command.GetTrackingParams(options)
	switch action {
	case command.TrackingChannel:
		if !canManage {
			return command.TrackingPermissionResponse()
		}
		if server.TerritoryLogChannel != nil && *server.TerritoryLogChannel == i.ChannelID {
			if err := bot.PostgresInterface.UpdateServerTerritoryChannel(i.GuildID, nil); err != nil {
				return errorResponse(err, "disabling territory tracking")
			}
			return command.TrackingChannelResponse("", false)
		}
		channelID := i.ChannelID
		if err := bot.PostgresInterface.UpdateServerTerritoryChannel(i.GuildID, &channelID); err != nil {
			return errorResponse(err, "setting territory channel")
		}
		return command.TrackingChannelResponse(channelID, true)

	case command.TrackingPing:
		if interval == nil {
			return command.TrackingPingResponse(server.PingIntervalMinutes, false)
		}
		if !canManage {
			return command.TrackingPermissionResponse()
		}
		if *interval == 0 {
			interval = nil
		}
		if err := bot.PostgresInterface.UpdateServerPingInterval(i.GuildID, interval); err != nil {
			return errorResponse(err, "setting ping interval")
		}
		return command.TrackingPingResponse(interval, true)

	case command.TrackingRole:
		if roleID == "" {
			current := ""
			if server.PingRole != nil {
				current = *server.PingRole
			}
			return command.TrackingRoleResponse(current, false)
		}
		if !canManage {
			return command.TrackingPermissionResponse()
		}
		if err := bot.PostgresInterface.UpdateServerPingRole(i.GuildID, &roleID); err != nil {
			return errorResponse(err, "setting ping role")
		}
		return command.TrackingRoleResponse(roleID, true)

	case command.TrackingRank:
		if rank == nil {
			return command.TrackingRankResponse(server.PingRank, false)
		}
		if !canManage {
			return command.TrackingPermissionResponse()
		}
		if *rank == -1 {
			rank = nil
		}
		if err := bot.PostgresInterface.UpdateServerPingRank(i.GuildID, rank); err != nil {
			return errorResponse(err, "setting ping rank")
		}
		return command.TrackingRankResponse(rank, true)
	}
	return command.TrackingOverviewResponse(server)
}

func (bot *Bot) warsResponse(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponse {
	now := time.Now().UTC()
	start, end := command.GetWarsParams(options, now)

	// The log query wants concrete bounds; open ends cover the whole log.
	from := time.Unix(0, 0).UTC()
	if start != nil {
		from = *start
	}
	to := now
	if end != nil {
		to = *end
	}
	counts, err := bot.PostgresInterface.GetWarCountsBetween(from, to)
	if err != nil {
		return errorResponse(err, "loading war counts")
	}
	return command.WarsResponse(start, end, counts)
}

func (bot *Bot) worldsResponse() *discordgo.InteractionResponse {
	worlds, err := bot.PostgresInterface.GetAllWorlds()
	if err != nil {
		return errorResponse(err, "loading worlds")
	}
	return command.WorldsResponse(worlds, time.Now().UTC())
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func errorResponse(err error, action string) *discordgo.InteractionResponse {
	log.Error().Err(err).Str("action", action).Msg("slash command failed")
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Something went wrong, please try again later.",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}
