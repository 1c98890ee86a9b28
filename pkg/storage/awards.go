package storage

import (
	"context"

	"github.com/georgysavva/scany/pgxscan"
)

// One row per (username, cycle), created when a member is first seen within
// the cycle and updated in place afterwards.

func (psqlInterface *PsqlInterface) AddAwardStat(username, cycle string, raids, wars int, xp int64) error {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return addAwardStat(conn.Conn(), username, cycle, raids, wars, xp)
}

func addAwardStat(conn PgxIface, username, cycle string, raids, wars int, xp int64) error {
	_, err := conn.Exec(context.Background(),
		"INSERT INTO guild_award_stats (username, cycle, raids, wars, xp) VALUES ($1, $2, $3, $4, $5)"+
			" ON CONFLICT (username, cycle) DO NOTHING;",
		username, cycle, raids, wars, xp)
	return err
}

func (psqlInterface *PsqlInterface) GetAwardStatsForCycle(cycle string) ([]*AwardStat, error) {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return getAwardStatsForCycle(conn.Conn(), cycle)
}

func getAwardStatsForCycle(conn PgxIface, cycle string) ([]*AwardStat, error) {
	var stats []*AwardStat
	err := pgxscan.Select(context.Background(), conn, &stats,
		"SELECT * FROM guild_award_stats WHERE cycle = $1", cycle)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (psqlInterface *PsqlInterface) UpdateAwardRaids(username, cycle string, raids int) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE guild_award_stats SET raids = $1 WHERE username = $2 AND cycle = $3;",
		raids, username, cycle)
	return err
}

func (psqlInterface *PsqlInterface) UpdateAwardWars(username, cycle string, wars int) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE guild_award_stats SET wars = $1 WHERE username = $2 AND cycle = $3;",
		wars, username, cycle)
	return err
}

func (psqlInterface *PsqlInterface) UpdateAwardXP(username, cycle string, xp int64) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE guild_award_stats SET xp = $1 WHERE username = $2 AND cycle = $3;",
		xp, username, cycle)
	return err
}
