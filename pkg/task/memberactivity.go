package task

import (
	"context"
	"fmt"
)

// MemberActivity bumps the current ISO-week counter for every home guild
// member seen online right now.
func MemberActivity(ctx context.Context, env *Env) error {
	guild, err := env.API.Guild(ctx, env.Conf.HomeGuild)
	if err != nil {
		return fmt.Errorf("fetching guild %s: %w", env.Conf.HomeGuild, err)
	}
	online, err := env.API.OnlinePlayers(ctx)
	if err != nil {
		return fmt.Errorf("fetching online players: %w", err)
	}

	onlineNames := online.Names()
	var names []string
	for _, member := range guild.Members {
		if _, ok := onlineNames[member.Username]; ok {
			names = append(names, member.Username)
		}
	}
	if len(names) == 0 {
		return nil
	}

	year, week := env.now().ISOWeek()
	return env.Store.IncrementMemberActivity(fmt.Sprintf("%d-%d", year, week), names)
}
