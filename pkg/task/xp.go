package task

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slices"

	"github.com/eden-guild/pianobot/pkg/notify"
)

const xpSnapshotInterval = 5 * time.Minute

// GuildXP snapshots every member's contributed XP at 5-minute buckets and
// posts a leaderboard of whoever gained since the previous snapshot. The
// table grows a column per member as the roster evolves; old columns stay.
func GuildXP(ctx context.Context, env *Env) error {
	guild, err := env.API.Guild(ctx, env.Conf.HomeGuild)
	if err != nil {
		return fmt.Errorf("fetching guild %s: %w", env.Conf.HomeGuild, err)
	}

	current := make(map[string]int64, len(guild.Members))
	names := make([]string, 0, len(guild.Members))
	for _, member := range guild.Members {
		current[member.Username] = member.ContributedXP
		names = append(names, member.Username)
	}

	if err := env.Store.AddXPColumns(names); err != nil {
		return fmt.Errorf("evolving guild_xp columns: %w", err)
	}
	if err := env.Store.AddXPSnapshot(RoundedTime(env.now(), xpSnapshotInterval), current); err != nil {
		return fmt.Errorf("adding xp snapshot: %w", err)
	}

	snapshots, err := env.Store.GetLastXPSnapshots(2)
	if err != nil {
		return fmt.Errorf("loading xp snapshots: %w", err)
	}
	if len(snapshots) == 2 {
		gains := xpGains(snapshots[1].Data, snapshots[0].Data)
		if len(gains) > 0 {
			env.Notify.SendWebhook(env.Conf.XPWebhook, "Eden XP Tracking",
				notify.XPLeaderboard(gains, int(xpSnapshotInterval.Minutes())), nil)
		}
	}

	return env.Store.CleanupXPSnapshots()
}

// xpGains returns the positive per-member deltas between two snapshots,
// ranked descending. Members missing a value on either side are skipped.
func xpGains(old, new map[string]*int64) []notify.Ranking {
	var gains []notify.Ranking
	for name, newXP := range new {
		oldXP := old[name]
		if newXP == nil || oldXP == nil {
			continue
		}
		if delta := *newXP - *oldXP; delta > 0 {
			gains = append(gains, notify.Ranking{Name: name, Amount: delta})
		}
	}
	slices.SortStableFunc(gains, func(a, b notify.Ranking) int {
		switch {
		case b.Amount > a.Amount:
			return 1
		case b.Amount < a.Amount:
			return -1
		}
		return 0
	})
	return gains
}
