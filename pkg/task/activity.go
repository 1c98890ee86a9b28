package task

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// GuildActivity records one online-member count per tracked guild per tick.
// A guild whose fetch fails gets a NULL cell for this bucket instead of a
// stale number. No-op inside the cycle rollover window so it never races the
// awards finalize step.
func GuildActivity(ctx context.Context, env *Env) error {
	now := env.now()
	if InRolloverWindow(now) {
		return nil
	}

	tracked, err := env.Conf.TrackedGuilds()
	if err != nil {
		return fmt.Errorf("reading tracked guilds: %w", err)
	}
	if len(tracked) == 0 {
		return nil
	}

	online, err := env.API.OnlinePlayers(ctx)
	if err != nil {
		return fmt.Errorf("fetching online players: %w", err)
	}
	onlineNames := online.Names()

	counts := make(map[string]*int, len(tracked))
	names := make([]string, 0, len(tracked))
	for name := range tracked {
		counts[name] = nil
		names = append(names, name)
	}
	for name := range tracked {
		guild, err := env.API.Guild(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("guild", name).Msg("failed to fetch guild, storing null count")
			continue
		}
		count := guild.OnlineCount(onlineNames)
		counts[name] = &count
	}

	if err := env.Store.AddActivityColumns(names); err != nil {
		return fmt.Errorf("evolving guild_activity columns: %w", err)
	}
	if err := env.Store.AddActivityRow(RoundedTime(now, time.Minute), counts); err != nil {
		return fmt.Errorf("adding guild_activity row: %w", err)
	}
	return env.Store.CleanupActivityRows()
}
