package storage

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4"
)

func (psqlInterface *PsqlInterface) AddTomeRequest(discordID string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO guild_tomes (discord_id) VALUES ($1);", discordID)
	return err
}

// GetPendingTomes lists users with open requests, oldest first request first.
func (psqlInterface *PsqlInterface) GetPendingTomes() ([]*TomeSummary, error) {
	var pending []*TomeSummary
	err := pgxscan.Select(context.Background(), psqlInterface.Pool, &pending,
		"SELECT discord_id, COUNT(*) AS pending, MIN(requested_at) AS first_request FROM guild_tomes"+
			" WHERE granted_at IS NULL AND denied_at IS NULL"+
			" GROUP BY discord_id ORDER BY first_request")
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// LastTomeRequestFor returns the time of the user's newest request in any
// state, nil when they never requested one.
func (psqlInterface *PsqlInterface) LastTomeRequestFor(discordID string) (*time.Time, error) {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return lastTomeRequestFor(conn.Conn(), discordID)
}

func lastTomeRequestFor(conn PgxIface, discordID string) (*time.Time, error) {
	var requested time.Time
	err := conn.QueryRow(context.Background(),
		"SELECT requested_at FROM guild_tomes WHERE discord_id = $1 ORDER BY requested_at DESC LIMIT 1",
		discordID).Scan(&requested)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &requested, nil
}

// GrantTome closes the oldest open request of the user.
func (psqlInterface *PsqlInterface) GrantTome(discordID string) error {
	return psqlInterface.closeTome(discordID, "granted_at")
}

// DenyTome rejects the oldest open request of the user.
func (psqlInterface *PsqlInterface) DenyTome(discordID string) error {
	return psqlInterface.closeTome(discordID, "denied_at")
}

func (psqlInterface *PsqlInterface) closeTome(discordID, column string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE guild_tomes SET "+column+" = CURRENT_TIMESTAMP WHERE id = ("+
			" SELECT id FROM guild_tomes"+
			" WHERE discord_id = $1 AND granted_at IS NULL AND denied_at IS NULL"+
			" ORDER BY requested_at LIMIT 1);",
		discordID)
	return err
}
