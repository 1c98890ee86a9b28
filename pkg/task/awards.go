package task

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/eden-guild/pianobot/pkg/notify"
	"github.com/eden-guild/pianobot/pkg/storage"
)

const raffleWinners = 3

// GuildAwards maintains the per-cycle baseline stats that the XP-delta raid
// detection and the half-monthly award rankings are computed from. On the
// cycle boundary it additionally finalizes the closing cycle: ranks raids,
// wars and XP against the previous baseline, draws the raid raffle and posts
// the results.
func GuildAwards(ctx context.Context, env *Env) error {
	now := env.now()
	if InRolloverWindow(now) {
		closing := CycleID(now.Add(-10 * 24 * time.Hour))
		if err := updateForCycle(ctx, env, closing, ""); err != nil {
			log.Warn().Err(err).Str("cycle", closing).Msg("final stat refresh for closing cycle failed")
		}
		if err := finalizeCycle(ctx, env, now, closing); err != nil {
			log.Warn().Err(err).Str("cycle", closing).Msg("cycle finalize failed")
		}
	}

	prev := CycleID(now.Add(-PrevCycleLookback(now)))
	return updateForCycle(ctx, env, CycleID(now), prev)
}

// updateForCycle seeds stat rows for members without one yet and refreshes
// raid/war/XP totals for members who are online or whose contributed XP
// moved. Per-member API failures leave that member stale for this tick.
func updateForCycle(ctx context.Context, env *Env, cycle, prevCycle string) error {
	guild, err := env.API.Guild(ctx, env.Conf.HomeGuild)
	if err != nil {
		return fmt.Errorf("fetching guild %s: %w", env.Conf.HomeGuild, err)
	}

	stats, err := env.Store.GetAwardStatsForCycle(cycle)
	if err != nil {
		return fmt.Errorf("loading stats for cycle %s: %w", cycle, err)
	}
	byName := make(map[string]*storage.AwardStat, len(stats))
	for _, stat := range stats {
		byName[stat.Username] = stat
	}

	prevNames := map[string]struct{}{}
	if prevCycle != "" {
		prevStats, err := env.Store.GetAwardStatsForCycle(prevCycle)
		if err != nil {
			return fmt.Errorf("loading stats for cycle %s: %w", prevCycle, err)
		}
		for _, stat := range prevStats {
			prevNames[stat.Username] = struct{}{}
		}
	}

	reward, err := env.Store.GetRewardConfig()
	if err != nil {
		return fmt.Errorf("loading reward config: %w", err)
	}

	for _, member := range guild.Members {
		stat, known := byName[member.Username]
		if !known {
			raids, wars := 0, 0
			player, err := env.API.Player(ctx, member.UUID)
			if err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to fetch player for baseline")
			} else {
				raids = sumRaids(player.Raids)
				wars = player.Wars
			}
			if err := env.Store.AddAwardStat(member.Username, cycle, raids, wars, member.ContributedXP); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to seed cycle baseline")
			}
			if _, seen := prevNames[member.Username]; prevCycle != "" && !seen {
				if err := env.Store.AddAwardStat(member.Username, prevCycle, raids, wars, member.ContributedXP); err != nil {
					log.Warn().Err(err).Str("player", member.Username).Msg("failed to backfill previous cycle baseline")
				}
			}
			continue
		}

		if !member.Online && member.ContributedXP == stat.XP {
			continue
		}

		player, err := env.API.Player(ctx, member.UUID)
		if err != nil {
			log.Warn().Err(err).Str("player", member.Username).Msg("failed to refresh player stats")
		} else {
			if player.RaidTotal != stat.RaidCount {
				if err := env.Store.UpdateAwardRaids(member.Username, cycle, sumRaids(player.Raids)); err != nil {
					log.Warn().Err(err).Str("player", member.Username).Msg("failed to update raid stat")
				}
			}
			if player.Wars != stat.Wars {
				for i := 0; i < player.Wars-stat.Wars; i++ {
					if err := env.Store.AddWarLog(member.UUID); err != nil {
						log.Warn().Err(err).Str("player", member.Username).Msg("failed to log war")
					}
				}
				if err := env.Store.UpdateAwardWars(member.Username, cycle, player.Wars); err != nil {
					log.Warn().Err(err).Str("player", member.Username).Msg("failed to update war stat")
				}
			}
		}

		if member.ContributedXP != stat.XP {
			// XP dropping means a guild bank withdrawal: reset the baseline
			// silently, reward only genuine gains.
			if member.ContributedXP > stat.XP {
				if err := env.Store.AddPendingXP(member.UUID, member.ContributedXP-stat.XP, reward.EmeraldsPerXPReward); err != nil {
					log.Warn().Err(err).Str("player", member.Username).Msg("failed to add pending xp")
				}
			}
			if err := env.Store.UpdateAwardXP(member.Username, cycle, member.ContributedXP); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to update xp stat")
			}
		}
	}
	return nil
}

func finalizeCycle(ctx context.Context, env *Env, now time.Time, closing string) error {
	results, err := env.Store.GetAwardStatsForCycle(closing)
	if err != nil {
		return fmt.Errorf("loading closing cycle stats: %w", err)
	}
	prevResults, err := env.Store.GetAwardStatsForCycle(CycleID(now.Add(-20 * 24 * time.Hour)))
	if err != nil {
		return fmt.Errorf("loading baseline cycle stats: %w", err)
	}

	prevWars := make(map[string]int, len(prevResults))
	prevXP := make(map[string]int64, len(prevResults))
	for _, stat := range prevResults {
		prevWars[stat.Username] = stat.Wars
		prevXP[stat.Username] = stat.XP
	}

	// Raid placement comes from the completion log rather than stat deltas,
	// so raffle tickets and rankings agree with the squad notifications.
	raidCounts, err := env.Store.GetRaidCountsBetween(CycleStart(now.Add(-10*24*time.Hour)), now)
	if err != nil {
		return fmt.Errorf("loading raid counts: %w", err)
	}
	raidRankings := make([]notify.Ranking, 0, len(raidCounts))
	raffleEntries := make([]RaffleEntry, 0, len(raidCounts))
	for name, count := range raidCounts {
		raidRankings = append(raidRankings, notify.Ranking{Name: name, Amount: int64(count)})
		raffleEntries = append(raffleEntries, RaffleEntry{Name: name, Count: count})
	}

	warRankings := make([]notify.Ranking, 0, len(results))
	xpRankings := make([]notify.Ranking, 0, len(results))
	for _, stat := range results {
		warRankings = append(warRankings, notify.Ranking{
			Name:   stat.Username,
			Amount: int64(stat.Wars - prevWars[stat.Username]),
		})
		gained := stat.XP - prevXP[stat.Username]
		if prevXP[stat.Username] > stat.XP {
			gained = stat.XP
		}
		xpRankings = append(xpRankings, notify.Ranking{Name: stat.Username, Amount: gained})
	}

	sortRankings(raidRankings)
	sortRankings(warRankings)
	sortRankings(xpRankings)

	winners, totalTickets := DrawRaffleWinners(raffleEntries, raffleWinners, env.rand())

	env.Notify.SendWebhook(env.Conf.MemberWebhook, "Eden Awards", "",
		notify.AwardsEmbed(closing, raidRankings, warRankings, xpRankings, winners, totalTickets))
	return nil
}

func sortRankings(rankings []notify.Ranking) {
	slices.SortStableFunc(rankings, func(a, b notify.Ranking) int {
		switch {
		case b.Amount > a.Amount:
			return 1
		case b.Amount < a.Amount:
			return -1
		}
		return 0
	})
}

func sumRaids(raids map[string]int) int {
	total := 0
	for _, count := range raids {
		total += count
	}
	return total
}
