package task

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eden-guild/pianobot/pkg/notify"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

// defaultPingRank suppresses territory pings when a Chief or higher is
// online, unless the server configured its own threshold.
const defaultPingRank = 6

// Territories reconciles territory ownership against the live feed. Unseen
// territories are stored silently as a baseline; an ownership change that
// involves the home guild is announced to every configured server, with an
// optional role ping gated by cooldown and by whether guild leadership is
// already online.
func Territories(ctx context.Context, env *Env) error {
	stored, err := env.Store.GetAllTerritories()
	if err != nil {
		return fmt.Errorf("loading territories: %w", err)
	}
	known := make(map[string]struct {
		guild    string
		acquired time.Time
	}, len(stored))
	for _, territory := range stored {
		known[territory.Name] = struct {
			guild    string
			acquired time.Time
		}{territory.GuildName(), territory.Acquired}
	}

	feed, err := env.API.Territories(ctx)
	if err != nil {
		return fmt.Errorf("fetching territories: %w", err)
	}

	guild, err := env.API.Guild(ctx, env.Conf.HomeGuild)
	if err != nil {
		return fmt.Errorf("fetching guild %s: %w", env.Conf.HomeGuild, err)
	}
	highestRank := -1
	for _, member := range guild.Members {
		if member.Online && int(member.Rank) > highestRank {
			highestRank = int(member.Rank)
		}
	}

	for name, territory := range feed {
		old, seen := known[name]
		if !seen {
			if err := env.Store.AddTerritory(name, territory.Guild, territory.Acquired); err != nil {
				log.Warn().Err(err).Str("territory", name).Msg("failed to store territory baseline")
			}
			continue
		}
		if old.guild == territory.Guild {
			continue
		}
		if err := env.Store.UpdateTerritory(name, territory.Guild, territory.Acquired); err != nil {
			log.Warn().Err(err).Str("territory", name).Msg("failed to update territory owner")
			continue
		}
		if old.guild != env.Conf.HomeGuild && territory.Guild != env.Conf.HomeGuild {
			continue
		}
		announceTerritoryChange(env, name, old.guild, territory.Guild,
			territory.Acquired.Sub(old.acquired), feed, highestRank)
	}
	return nil
}

func announceTerritoryChange(env *Env, name, oldGuild, newGuild string, held time.Duration, feed map[string]wynn.Territory, highestRank int) {
	oldCount, newCount := 0, 0
	for _, territory := range feed {
		if territory.Guild != "" && territory.Guild == oldGuild {
			oldCount++
		}
		if territory.Guild != "" && territory.Guild == newGuild {
			newCount++
		}
	}
	embed := notify.TerritoryEmbed(name, oldGuild, newGuild, env.Conf.HomeGuild, oldCount, newCount, held)

	servers, err := env.Store.GetAllServers()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load server configs for territory notification")
		return
	}
	now := env.now()
	for _, server := range servers {
		if server.TerritoryLogChannel == nil {
			continue
		}
		ping := ""
		if shouldPing(server.PingIntervalMinutes, server.PingRole, server.PingRank, server.LastPing, now, highestRank) {
			ping = *server.PingRole
			if err := env.Store.UpdateServerLastPing(server.ServerID, now); err != nil {
				log.Warn().Err(err).Str("server", server.ServerID).Msg("failed to update ping cooldown")
			}
		}
		env.Notify.SendChannel(*server.TerritoryLogChannel, "", embed, ping)
	}
}

// shouldPing decides whether a territory notification carries a role ping:
// pings must be configured, the per-server cooldown must have elapsed, and no
// online member may hold a rank at or above the suppression threshold.
func shouldPing(intervalMinutes *int, role *string, pingRank *int, lastPing *time.Time, now time.Time, highestRank int) bool {
	if intervalMinutes == nil || role == nil {
		return false
	}
	if lastPing != nil && now.Before(lastPing.Add(time.Duration(*intervalMinutes)*time.Minute)) {
		return false
	}
	threshold := defaultPingRank
	if pingRank != nil {
		threshold = *pingRank
	}
	return threshold > highestRank
}
