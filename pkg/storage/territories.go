package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/pgxscan"
)

func (psqlInterface *PsqlInterface) GetAllTerritories() ([]*Territory, error) {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return getAllTerritories(conn.Conn())
}

func getAllTerritories(conn PgxIface) ([]*Territory, error) {
	var territories []*Territory
	err := pgxscan.Select(context.Background(), conn, &territories,
		"SELECT name, guild, acquired FROM territories")
	if err != nil {
		return nil, err
	}
	return territories, nil
}

// AddTerritory records a first sighting as baseline; reseeding an existing
// territory is a no-op so cold starts never clobber known state.
func (psqlInterface *PsqlInterface) AddTerritory(name, guild string, acquired time.Time) error {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return addTerritory(conn.Conn(), name, guild, acquired)
}

func addTerritory(conn PgxIface, name, guild string, acquired time.Time) error {
	var owner *string
	if guild != "" {
		owner = &guild
	}
	_, err := conn.Exec(context.Background(),
		"INSERT INTO territories (name, guild, acquired) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING;",
		name, owner, acquired)
	return err
}

func (psqlInterface *PsqlInterface) UpdateTerritory(name, guild string, acquired time.Time) error {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return updateTerritory(conn.Conn(), name, guild, acquired)
}

func updateTerritory(conn PgxIface, name, guild string, acquired time.Time) error {
	var owner *string
	if guild != "" {
		owner = &guild
	}
	_, err := conn.Exec(context.Background(),
		"UPDATE territories SET guild = $1, acquired = $2 WHERE name = $3;", owner, acquired, name)
	return err
}
