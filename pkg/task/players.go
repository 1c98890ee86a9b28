package task

import (
	"context"
	"fmt"
)

// Players maintains a global last-seen timestamp per player identity: new
// identities are inserted, already-known ones get their timestamp bumped.
func Players(ctx context.Context, env *Env) error {
	online, err := env.API.OnlinePlayersByUUID(ctx)
	if err != nil {
		return fmt.Errorf("fetching online players: %w", err)
	}

	uuids := make([]string, 0, len(online.Players))
	for uuid := range online.Players {
		uuids = append(uuids, uuid)
	}
	if len(uuids) == 0 {
		return nil
	}

	stored, err := env.Store.GetSelectedPlayers(uuids)
	if err != nil {
		return fmt.Errorf("loading known players: %w", err)
	}
	known := make(map[string]struct{}, len(stored))
	for _, player := range stored {
		known[player.UUID] = struct{}{}
	}

	var toAdd, toBump []string
	for _, uuid := range uuids {
		if _, ok := known[uuid]; ok {
			toBump = append(toBump, uuid)
		} else {
			toAdd = append(toAdd, uuid)
		}
	}
	if len(toAdd) > 0 {
		if err := env.Store.AddPlayers(toAdd); err != nil {
			return fmt.Errorf("adding players: %w", err)
		}
	}
	if len(toBump) > 0 {
		if err := env.Store.UpdatePlayersLastSeen(toBump); err != nil {
			return fmt.Errorf("bumping last seen: %w", err)
		}
	}
	return nil
}
