package storage

import (
	"context"

	"github.com/georgysavva/scany/pgxscan"
)

func (psqlInterface *PsqlInterface) GetSelectedPlayers(uuids []string) ([]*Player, error) {
	var players []*Player
	err := pgxscan.Select(context.Background(), psqlInterface.Pool, &players,
		"SELECT uuid, last_seen FROM players WHERE uuid = ANY($1)", uuids)
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (psqlInterface *PsqlInterface) AddPlayers(uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO players (uuid) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING;", uuids)
	return err
}

func (psqlInterface *PsqlInterface) UpdatePlayersLastSeen(uuids []string) error {
	if len(uuids) == 0 {
		return nil
	}
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE players SET last_seen = CURRENT_TIMESTAMP WHERE uuid = ANY($1);", uuids)
	return err
}
