package storage

import (
	"context"

	"github.com/georgysavva/scany/pgxscan"
)

func (psqlInterface *PsqlInterface) GetAllWorlds() ([]*World, error) {
	var worlds []*World
	err := pgxscan.Select(context.Background(), psqlInterface.Pool, &worlds,
		"SELECT name, first_seen FROM worlds")
	if err != nil {
		return nil, err
	}
	return worlds, nil
}

func (psqlInterface *PsqlInterface) AddWorld(name string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO worlds (name) VALUES ($1) ON CONFLICT (name) DO NOTHING;", name)
	return err
}

func (psqlInterface *PsqlInterface) RemoveWorld(name string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"DELETE FROM worlds WHERE name = $1;", name)
	return err
}
