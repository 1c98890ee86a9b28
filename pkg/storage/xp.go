package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// The guild_xp table is sparse and wide: one timestamp column plus one BIGINT
// column per member ever seen. Columns are only ever added, never dropped, so
// old snapshots keep their data when members leave.

func (psqlInterface *PsqlInterface) GetXPColumns() ([]string, error) {
	return getDynamicColumns(psqlInterface.Pool, "guild_xp", "time")
}

func getDynamicColumns(conn PgxIface, table, keyColumn string) ([]string, error) {
	rows, err := conn.Query(context.Background(),
		"SELECT column_name FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name != keyColumn {
			columns = append(columns, name)
		}
	}
	return columns, rows.Err()
}

// AddXPColumns adds a BIGINT column per previously unseen member. No-op when
// every name already has a column.
func (psqlInterface *PsqlInterface) AddXPColumns(names []string) error {
	existing, err := psqlInterface.GetXPColumns()
	if err != nil {
		return err
	}
	missing := missingColumns(names, existing)
	if len(missing) == 0 {
		return nil
	}
	clauses := make([]string, len(missing))
	for i, name := range missing {
		clauses[i] = fmt.Sprintf(`ADD COLUMN %s BIGINT`, quoteIdent(name))
	}
	_, err = psqlInterface.Pool.Exec(context.Background(),
		fmt.Sprintf("ALTER TABLE guild_xp %s;", strings.Join(clauses, ", ")))
	return err
}

// AddXPSnapshot inserts one row at the given time bucket; a second write to
// the same bucket is a no-op.
func (psqlInterface *PsqlInterface) AddXPSnapshot(bucket time.Time, data map[string]int64) error {
	if len(data) == 0 {
		return nil
	}
	columns := make([]string, 0, len(data))
	placeholders := make([]string, 0, len(data))
	args := make([]interface{}, 0, len(data)+1)
	args = append(args, bucket)
	for name, xp := range data {
		columns = append(columns, quoteIdent(name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, xp)
	}
	query := fmt.Sprintf(
		"INSERT INTO guild_xp (time, %s) VALUES ($1, %s) ON CONFLICT (time) DO NOTHING;",
		strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	_, err := psqlInterface.Pool.Exec(context.Background(), query, args...)
	return err
}

// GetLastXPSnapshots returns the most recent snapshots, newest first.
func (psqlInterface *PsqlInterface) GetLastXPSnapshots(amount int) ([]*XPSnapshot, error) {
	return psqlInterface.queryXPSnapshots(
		fmt.Sprintf("SELECT * FROM guild_xp ORDER BY time DESC LIMIT %d", amount))
}

// GetXPGainsBetween diffs the snapshot closest after start against the
// snapshot closest before end and returns the positive per-member deltas.
// A nil boundary extends the interval to the oldest or newest snapshot.
func (psqlInterface *PsqlInterface) GetXPGainsBetween(start, end *time.Time) (map[string]int64, error) {
	first, err := psqlInterface.boundaryXPSnapshot(
		"SELECT * FROM guild_xp WHERE time >= $1 ORDER BY time ASC LIMIT 1",
		"SELECT * FROM guild_xp ORDER BY time ASC LIMIT 1", start)
	if err != nil {
		return nil, err
	}
	last, err := psqlInterface.boundaryXPSnapshot(
		"SELECT * FROM guild_xp WHERE time <= $1 ORDER BY time DESC LIMIT 1",
		"SELECT * FROM guild_xp ORDER BY time DESC LIMIT 1", end)
	if err != nil {
		return nil, err
	}
	if first == nil || last == nil || !last.Time.After(first.Time) {
		return map[string]int64{}, nil
	}

	gains := make(map[string]int64)
	for name, newXP := range last.Data {
		oldXP := first.Data[name]
		if newXP == nil || oldXP == nil {
			continue
		}
		if diff := *newXP - *oldXP; diff > 0 {
			gains[name] = diff
		}
	}
	return gains, nil
}

func (psqlInterface *PsqlInterface) boundaryXPSnapshot(bounded, unbounded string, at *time.Time) (*XPSnapshot, error) {
	var snapshots []*XPSnapshot
	var err error
	if at != nil {
		snapshots, err = psqlInterface.queryXPSnapshots(bounded, *at)
	} else {
		snapshots, err = psqlInterface.queryXPSnapshots(unbounded)
	}
	if err != nil || len(snapshots) == 0 {
		return nil, err
	}
	return snapshots[0], nil
}

func (psqlInterface *PsqlInterface) queryXPSnapshots(query string, args ...interface{}) ([]*XPSnapshot, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*XPSnapshot
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		snapshot := &XPSnapshot{Data: make(map[string]*int64)}
		for i, field := range fields {
			name := string(field.Name)
			if name == "time" {
				if t, ok := values[i].(time.Time); ok {
					snapshot.Time = t
				}
				continue
			}
			if values[i] == nil {
				snapshot.Data[name] = nil
				continue
			}
			if xp, ok := values[i].(int64); ok {
				v := xp
				snapshot.Data[name] = &v
			}
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// CleanupXPSnapshots applies the coarsening retention policy: rows older
// than 7 days survive only on the hour, rows older than 14 days only at
// midnight. Running it twice removes nothing the second time.
func (psqlInterface *PsqlInterface) CleanupXPSnapshots() error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"DELETE FROM guild_xp WHERE time < (CURRENT_TIMESTAMP - '7 DAY'::interval)"+
			" AND to_char(time, 'MI') != '00';")
	if err != nil {
		return err
	}
	_, err = psqlInterface.Pool.Exec(context.Background(),
		"DELETE FROM guild_xp WHERE time < (CURRENT_TIMESTAMP - '14 DAY'::interval)"+
			" AND to_char(time, 'HH24:MI') != '00:00';")
	return err
}

func missingColumns(wanted, existing []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		have[c] = struct{}{}
	}
	var missing []string
	for _, name := range wanted {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, ``) + `"`
}
