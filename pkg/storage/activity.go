package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// guild_activity mirrors the guild_xp layout: one INTEGER column per tracked
// guild, one row per time bucket holding the online member count.

func (psqlInterface *PsqlInterface) GetActivityColumns() ([]string, error) {
	return getDynamicColumns(psqlInterface.Pool, "guild_activity", "time")
}

func (psqlInterface *PsqlInterface) AddActivityColumns(guilds []string) error {
	existing, err := psqlInterface.GetActivityColumns()
	if err != nil {
		return err
	}
	missing := missingColumns(guilds, existing)
	if len(missing) == 0 {
		return nil
	}
	clauses := make([]string, len(missing))
	for i, name := range missing {
		clauses[i] = fmt.Sprintf("ADD COLUMN %s INTEGER", quoteIdent(name))
	}
	_, err = psqlInterface.Pool.Exec(context.Background(),
		fmt.Sprintf("ALTER TABLE guild_activity %s;", strings.Join(clauses, ", ")))
	return err
}

// AddActivityRow persists one online-count-per-guild row. A nil count means
// the guild's fetch failed this tick and stores NULL.
func (psqlInterface *PsqlInterface) AddActivityRow(bucket time.Time, counts map[string]*int) error {
	if len(counts) == 0 {
		return nil
	}
	columns := make([]string, 0, len(counts))
	placeholders := make([]string, 0, len(counts))
	args := make([]interface{}, 0, len(counts)+1)
	args = append(args, bucket)
	for guild, count := range counts {
		columns = append(columns, quoteIdent(guild))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, count)
	}
	query := fmt.Sprintf(
		"INSERT INTO guild_activity (time, %s) VALUES ($1, %s) ON CONFLICT (time) DO NOTHING;",
		strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	_, err := psqlInterface.Pool.Exec(context.Background(), query, args...)
	return err
}

// GetLastActivityRows returns the most recent online-count rows, newest
// first. Counts are nil where a guild's fetch had failed for that bucket.
func (psqlInterface *PsqlInterface) GetLastActivityRows(amount int) ([]*ActivityRow, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		fmt.Sprintf("SELECT * FROM guild_activity ORDER BY time DESC LIMIT %d", amount))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*ActivityRow
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := &ActivityRow{Counts: make(map[string]*int)}
		for i, field := range fields {
			name := string(field.Name)
			if name == "time" {
				if t, ok := values[i].(time.Time); ok {
					row.Time = t
				}
				continue
			}
			if values[i] == nil {
				row.Counts[name] = nil
				continue
			}
			if count, ok := values[i].(int32); ok {
				v := int(count)
				row.Counts[name] = &v
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (psqlInterface *PsqlInterface) CleanupActivityRows() error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"DELETE FROM guild_activity WHERE time < (CURRENT_TIMESTAMP - '14 DAY'::interval)"+
			" AND to_char(time, 'MI') NOT IN ('00', '15', '30', '45');")
	return err
}

// member_activity has one INTEGER column per ISO week and one row per member;
// cells count the minutes a member was seen online during that week.

func (psqlInterface *PsqlInterface) GetActivityWeeks() ([]string, error) {
	return getDynamicColumns(psqlInterface.Pool, "member_activity", "username")
}

func (psqlInterface *PsqlInterface) getActivityUsernames() ([]string, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(), "SELECT username FROM member_activity")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetMemberActivity returns the per-member online minutes recorded for one
// week column. The caller checks the column exists via GetActivityWeeks, so
// a missing column is a query error here.
func (psqlInterface *PsqlInterface) GetMemberActivity(week string) (map[string]int, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		fmt.Sprintf("SELECT username, %s FROM member_activity", quoteIdent(week)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	minutes := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		minutes[name] = count
	}
	return minutes, rows.Err()
}

// IncrementMemberActivity bumps this week's counter for every given member,
// creating the week column and missing member rows as needed.
func (psqlInterface *PsqlInterface) IncrementMemberActivity(week string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	weeks, err := psqlInterface.GetActivityWeeks()
	if err != nil {
		return err
	}
	if len(missingColumns([]string{week}, weeks)) > 0 {
		_, err = psqlInterface.Pool.Exec(context.Background(),
			fmt.Sprintf("ALTER TABLE member_activity ADD COLUMN %s INTEGER NOT NULL DEFAULT 0;", quoteIdent(week)))
		if err != nil {
			return err
		}
	}

	known, err := psqlInterface.getActivityUsernames()
	if err != nil {
		return err
	}
	for _, name := range missingColumns(names, known) {
		_, err = psqlInterface.Pool.Exec(context.Background(),
			"INSERT INTO member_activity (username) VALUES ($1);", name)
		if err != nil {
			return err
		}
	}

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = name
	}
	col := quoteIdent(week)
	_, err = psqlInterface.Pool.Exec(context.Background(),
		fmt.Sprintf("UPDATE member_activity SET %s = %s + 1 WHERE username IN (%s);",
			col, col, strings.Join(placeholders, ", ")), args...)
	return err
}
