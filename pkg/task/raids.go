package task

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// GuildRaids is the low-latency raid detector. The API exposes cumulative
// contributed XP but no completion event, so a member whose XP jumped by
// between one and two estimated raid rewards since the last tick is flagged
// as having plausibly completed exactly one raid; the squad processor then
// polls their profile to identify which one.
func GuildRaids(ctx context.Context, env *Env) error {
	guild, err := env.API.Guild(ctx, env.Conf.HomeGuild)
	if err != nil {
		return fmt.Errorf("fetching guild %s: %w", env.Conf.HomeGuild, err)
	}

	baselines, err := env.Store.GetRaidMembers()
	if err != nil {
		return fmt.Errorf("loading raid baselines: %w", err)
	}

	xpPerRaid := XPPerRaid(guild.Level)
	var candidates []SquadCandidate
	for _, member := range guild.Members {
		baseline, known := baselines[member.UUID]
		if !known {
			raids := map[string]int{}
			player, err := env.API.Player(ctx, member.UUID)
			if err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to fetch player for raid baseline")
			} else {
				raids = player.Raids
			}
			if err := env.Store.AddRaidMember(member.UUID, member.ContributedXP); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to add raid baseline")
				continue
			}
			for raid, count := range raids {
				if err := env.Store.SetPlayerRaid(member.UUID, raid, count); err != nil {
					log.Warn().Err(err).Str("player", member.Username).Str("raid", raid).Msg("failed to record raid count")
				}
			}
			continue
		}

		xpDiff := member.ContributedXP - baseline
		if xpDiff > 0 {
			if err := env.Store.UpdateRaidMemberXP(member.UUID, member.ContributedXP); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to update raid baseline xp")
			}
			if xpPerRaid <= xpDiff && xpDiff < 2*xpPerRaid {
				oldRaids, err := env.Store.GetPlayerRaids(member.UUID)
				if err != nil {
					log.Warn().Err(err).Str("player", member.Username).Msg("failed to load raid counters")
				} else {
					candidates = append(candidates, SquadCandidate{
						UUID:     member.UUID,
						Username: member.Username,
						OldRaids: oldRaids,
					})
				}
			}
		}

		if xpDiff > 0 || member.Online {
			player, err := env.API.Player(ctx, member.UUID)
			if err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to refresh raid counters")
				continue
			}
			stored, err := env.Store.GetPlayerRaids(member.UUID)
			if err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to load raid counters")
				continue
			}
			for raid, amount := range player.Raids {
				if amount > stored[raid] {
					if err := env.Store.SetPlayerRaid(member.UUID, raid, amount); err != nil {
						log.Warn().Err(err).Str("player", member.Username).Str("raid", raid).Msg("failed to record raid count")
					}
				}
			}
		}
	}

	if len(candidates) > 0 && env.Squads != nil {
		env.Squads.Enqueue(SquadBatch{GuildLevel: guild.Level, Members: candidates})
	}
	return nil
}

// XPPerRaid estimates the guild XP reward of a single raid at a guild level.
func XPPerRaid(guildLevel int) int64 {
	return int64(100.0 / 3 * (math.Pow(1.15, float64(guildLevel)) - 1))
}
