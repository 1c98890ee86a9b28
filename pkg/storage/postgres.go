package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
)

// PgxIface is the subset of pgx used by the table helpers, so pgxmock can
// stand in for a real connection in tests.
type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	Ping(context.Context) error
}

type PsqlInterface struct {
	Pool *pgxpool.Pool
}

func ConstructPsqlConnectURL(addr, username, password string) string {
	return fmt.Sprintf("postgres://%s?user=%s&password=%s", addr, username, password)
}

func (psqlInterface *PsqlInterface) Init(addr string) error {
	dbpool, err := pgxpool.Connect(context.Background(), addr)
	if err != nil {
		return err
	}
	psqlInterface.Pool = dbpool
	return nil
}

// LoadAndExecFromFile runs a SQL file against the pool; used to apply the
// schema at startup.
func (psqlInterface *PsqlInterface) LoadAndExecFromFile(filepath string) error {
	bytes, err := os.ReadFile(filepath)
	if err != nil {
		return err
	}
	tag, err := psqlInterface.Pool.Exec(context.Background(), string(bytes))
	if err != nil {
		return err
	}
	log.Info().Str("result", tag.String()).Str("file", filepath).Msg("executed schema file")
	return nil
}

func (psqlInterface *PsqlInterface) Close() {
	psqlInterface.Pool.Close()
}

// isNotNullViolation reports whether err is a not-null constraint violation,
// which the append-only log inserts treat as a dropped write rather than a
// failure.
func isNotNullViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23502"
}
