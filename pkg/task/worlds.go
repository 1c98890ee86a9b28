package task

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Worlds reconciles the stored world list against the currently reported
// set: new worlds get a first-seen timestamp for uptime tracking, vanished
// worlds are removed.
func Worlds(ctx context.Context, env *Env) error {
	stored, err := env.Store.GetAllWorlds()
	if err != nil {
		return fmt.Errorf("loading worlds: %w", err)
	}
	known := make(map[string]struct{}, len(stored))
	for _, world := range stored {
		known[world.Name] = struct{}{}
	}

	online, err := env.API.OnlinePlayers(ctx)
	if err != nil {
		return fmt.Errorf("fetching online players: %w", err)
	}

	for world := range online.Worlds() {
		if _, ok := known[world]; ok {
			delete(known, world)
			continue
		}
		if err := env.Store.AddWorld(world); err != nil {
			log.Warn().Err(err).Str("world", world).Msg("failed to add world")
		}
	}

	for world := range known {
		if err := env.Store.RemoveWorld(world); err != nil {
			log.Warn().Err(err).Str("world", world).Msg("failed to remove world")
		}
	}
	return nil
}
