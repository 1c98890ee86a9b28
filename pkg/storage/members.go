package storage

import (
	"context"
	"time"

	"github.com/georgysavva/scany/pgxscan"
)

func (psqlInterface *PsqlInterface) GetAllMembers() ([]*Member, error) {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return getAllMembers(conn.Conn())
}

func getAllMembers(conn PgxIface) ([]*Member, error) {
	var members []*Member
	err := pgxscan.Select(context.Background(), conn, &members, "SELECT * FROM members")
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (psqlInterface *PsqlInterface) AddMember(uuid string, joined time.Time, name, rank string, xp int64) error {
	conn, err := psqlInterface.Pool.Acquire(context.Background())
	if err != nil {
		return err
	}
	defer conn.Release()
	return addMember(conn.Conn(), uuid, joined, name, rank, xp)
}

func addMember(conn PgxIface, uuid string, joined time.Time, name, rank string, xp int64) error {
	_, err := conn.Exec(context.Background(),
		"INSERT INTO members (uuid, name, rank, joined, xp) VALUES ($1, $2, $3, $4, $5);",
		uuid, name, rank, joined, xp)
	return err
}

func (psqlInterface *PsqlInterface) UpdateMemberName(uuid, name string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE members SET name = $1 WHERE uuid = $2;", name, uuid)
	return err
}

func (psqlInterface *PsqlInterface) UpdateMemberRank(uuid, rank string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE members SET rank = $1 WHERE uuid = $2;", rank, uuid)
	return err
}

func (psqlInterface *PsqlInterface) UpdateMemberXP(uuid string, xp int64) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE members SET xp = $1 WHERE uuid = $2;", xp, uuid)
	return err
}

func (psqlInterface *PsqlInterface) RemoveMember(uuid string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"DELETE FROM members WHERE uuid = $1;", uuid)
	return err
}
