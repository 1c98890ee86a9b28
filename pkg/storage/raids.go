package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// XPMilestone is the contributed-XP step that earns a milestone bonus.
	XPMilestone = int64(1_000_000_000)

	// Reset operations keep the remainder below one distribution unit so
	// rewards earned between the admin reading the value and resetting it
	// are not lost.
	pendingRaidUnit  = 4096
	xpEmeraldUnit    = 4096
	pendingAspectCap = 2
)

func (psqlInterface *PsqlInterface) GetRaidMembers() (map[string]int64, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(), "SELECT uuid, xp FROM raid_members")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make(map[string]int64)
	for rows.Next() {
		var uuid string
		var xp int64
		if err := rows.Scan(&uuid, &xp); err != nil {
			return nil, err
		}
		members[uuid] = xp
	}
	return members, rows.Err()
}

func (psqlInterface *PsqlInterface) AddRaidMember(uuid string, xp int64) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO raid_members (uuid, xp) VALUES ($1, $2) ON CONFLICT (uuid) DO NOTHING;", uuid, xp)
	return err
}

func (psqlInterface *PsqlInterface) UpdateRaidMemberXP(uuid string, xp int64) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE raid_members SET xp = $1 WHERE uuid = $2;", xp, uuid)
	return err
}

func (psqlInterface *PsqlInterface) RemoveRaidMember(uuid string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"DELETE FROM raid_members WHERE uuid = $1;", uuid)
	return err
}

// GetPlayerRaids returns the per-raid completion counters of one member.
func (psqlInterface *PsqlInterface) GetPlayerRaids(uuid string) (map[string]int, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		"SELECT raid, amount FROM raids WHERE uuid = $1", uuid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raids := make(map[string]int)
	for rows.Next() {
		var raid string
		var amount int
		if err := rows.Scan(&raid, &amount); err != nil {
			return nil, err
		}
		raids[raid] = amount
	}
	return raids, rows.Err()
}

func (psqlInterface *PsqlInterface) SetPlayerRaid(uuid, raid string, amount int) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO raids (uuid, raid, amount) VALUES ($1, $2, $3)"+
			" ON CONFLICT (uuid, raid) DO UPDATE SET amount = EXCLUDED.amount;",
		uuid, raid, amount)
	return err
}

// AddRaidLog appends one detected completion. An unknown raid name violates
// the raid_names foreign key; the write is dropped and logged, not retried.
func (psqlInterface *PsqlInterface) AddRaidLog(uuid, raid string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO raid_log (uuid, raid_id) VALUES ($1, (SELECT id FROM raid_names WHERE name = $2));",
		uuid, raid)
	if isNotNullViolation(err) {
		log.Warn().Str("uuid", uuid).Str("raid", raid).Msg("dropped raid log entry for unknown raid")
		return nil
	}
	return err
}

// GetRaidCountsBetween returns per-member raid completions recorded in
// [start, end), keyed by member name.
func (psqlInterface *PsqlInterface) GetRaidCountsBetween(start, end time.Time) (map[string]int, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		"SELECT m.name, count(*) FROM members m, raid_log l"+
			" WHERE m.uuid = l.uuid AND l.timestamp >= $1 AND l.timestamp < $2 GROUP BY m.name",
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

func (psqlInterface *PsqlInterface) AddWarLog(uuid string) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"INSERT INTO war_log (uuid) VALUES ($1);", uuid)
	if isNotNullViolation(err) {
		log.Warn().Str("uuid", uuid).Msg("dropped war log entry")
		return nil
	}
	return err
}

func (psqlInterface *PsqlInterface) GetWarCountsBetween(start, end time.Time) (map[string]int, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		"SELECT m.name, count(*) FROM members m, war_log l"+
			" WHERE m.uuid = l.uuid AND l.timestamp >= $1 AND l.timestamp < $2 GROUP BY m.name",
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

// AddPendingRaid credits one detected completion: emeralds owed plus one
// aspect token. A negative aspect balance marks a member blocked from
// aspect rewards and stays negative.
func (psqlInterface *PsqlInterface) AddPendingRaid(username string, emeraldsPerRaid int) error {
	_, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE raid_members SET pending_raids = pending_raids + $1,"+
			" pending_aspects = CASE WHEN pending_aspects < 0 THEN -1 ELSE pending_aspects + 1 END"+
			" WHERE uuid = (SELECT uuid FROM members WHERE name = $2);",
		emeraldsPerRaid, username)
	return err
}

// AddPendingXP accumulates contributed XP and pays the milestone bonus for
// every XPMilestone boundary the new total crosses.
func (psqlInterface *PsqlInterface) AddPendingXP(uuid string, amount int64, emeraldsPerMilestone int) error {
	var old int64
	err := psqlInterface.Pool.QueryRow(context.Background(),
		"SELECT pending_xp FROM raid_members WHERE uuid = $1", uuid).Scan(&old)
	if err != nil {
		return err
	}
	bonus := ((old+amount)/XPMilestone - old/XPMilestone) * int64(emeraldsPerMilestone)
	_, err = psqlInterface.Pool.Exec(context.Background(),
		"UPDATE raid_members SET pending_xp = pending_xp + $1, xp_ems = xp_ems + $2 WHERE uuid = $3;",
		amount, bonus, uuid)
	return err
}

// GetPendingRaids lists members owed raid emeralds, keyed by name.
func (psqlInterface *PsqlInterface) GetPendingRaids() (map[string]int64, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		"SELECT name, pending_raids FROM members m, raid_members r"+
			" WHERE m.uuid = r.uuid AND pending_raids > 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make(map[string]int64)
	for rows.Next() {
		var name string
		var amount int64
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, err
		}
		pending[name] = amount
	}
	return pending, rows.Err()
}

func (psqlInterface *PsqlInterface) GetPendingAspects() (map[string]int, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		"SELECT name, pending_aspects FROM members m, raid_members r"+
			" WHERE m.uuid = r.uuid AND pending_aspects > 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make(map[string]int)
	for rows.Next() {
		var name string
		var amount int
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, err
		}
		pending[name] = amount
	}
	return pending, rows.Err()
}

func (psqlInterface *PsqlInterface) GetPendingXPEmeralds() (map[string]int, error) {
	rows, err := psqlInterface.Pool.Query(context.Background(),
		"SELECT name, xp_ems FROM members m, raid_members r"+
			" WHERE m.uuid = r.uuid AND xp_ems > 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make(map[string]int)
	for rows.Next() {
		var name string
		var amount int
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, err
		}
		pending[name] = amount
	}
	return pending, rows.Err()
}

func (psqlInterface *PsqlInterface) ResetPendingRaids(username string) (bool, error) {
	tag, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE raid_members SET pending_raids = MOD(pending_raids, $1)"+
			" WHERE uuid = (SELECT uuid FROM members WHERE name ILIKE $2);",
		pendingRaidUnit, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (psqlInterface *PsqlInterface) ResetPendingAspects(username string) (bool, error) {
	tag, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE raid_members SET pending_aspects = MOD(pending_aspects, $1)"+
			" WHERE uuid = (SELECT uuid FROM members WHERE name ILIKE $2);",
		pendingAspectCap, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (psqlInterface *PsqlInterface) ResetPendingXP(username string) (bool, error) {
	tag, err := psqlInterface.Pool.Exec(context.Background(),
		"UPDATE raid_members SET pending_xp = MOD(pending_xp, $1), xp_ems = MOD(xp_ems, $2)"+
			" WHERE uuid = (SELECT uuid FROM members WHERE name ILIKE $3);",
		XPMilestone, xpEmeraldUnit, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
