package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/pgxscan"
)

func (psqlInterface *PsqlInterface) GetAllServers() ([]*Server, error) {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return getAllServers(conn.Conn())
}

func getAllServers(conn PgxIface) ([]*Server, error) {
	var servers []*Server
	err := pgxscan.Select(context.Background(), conn, &servers, "SELECT * FROM servers")
	if err != nil {
		return nil, err
	}
	return servers, nil
}

func (psqlInterface *PsqlInterface) EnsureServerExists(serverID string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO servers (server_id) VALUES ($1) ON CONFLICT (server_id) DO NOTHING;", serverID)
	return err
}

// UpdateServerLastPing is only called when a ping was actually emitted for
// that server, so the cooldown window starts from real pings.
func (psqlInterface *PsqlInterface) UpdateServerLastPing(serverID string, t time.Time) error {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return updateServerLastPing(conn.Conn(), serverID, t)
}

func updateServerLastPing(conn PgxIface, serverID string, t time.Time) error {
	_, err := conn.Exec(context.Background(),
		"UPDATE servers SET last_ping = $1 WHERE server_id = $2;", t, serverID)
	return err
}

func (psqlInterface *PsqlInterface) GetServer(serverID string) (*Server, error) {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return getServer(conn.Conn(), serverID)
}

func getServer(conn PgxIface, serverID string) (*Server, error) {
	var server Server
	err := pgxscan.Get(context.Background(), conn, &server,
		"SELECT * FROM servers WHERE server_id = $1", serverID)
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// The tracking settings are updated one field at a time; nil clears a field
// back to the unconfigured state.

func (psqlInterface *PsqlInterface) UpdateServerTerritoryChannel(serverID string, channelID *string) error {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return updateServerTerritoryChannel(conn.Conn(), serverID, channelID)
}

func updateServerTerritoryChannel(conn PgxIface, serverID string, channelID *string) error {
	_, err := conn.Exec(context.Background(),
		"UPDATE servers SET territory_channel = $1 WHERE server_id = $2;", channelID, serverID)
	return err
}

func (psqlInterface *PsqlInterface) UpdateServerPingRole(serverID string, roleID *string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE servers SET ping_role = $1 WHERE server_id = $2;", roleID, serverID)
	return err
}

func (psqlInterface *PsqlInterface) UpdateServerPingRank(serverID string, rank *int) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE servers SET ping_rank = $1 WHERE server_id = $2;", rank, serverID)
	return err
}

func (psqlInterface *PsqlInterface) UpdateServerPingInterval(serverID string, minutes *int) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE servers SET ping_interval = $1 WHERE server_id = $2;", minutes, serverID)
	return err
}
