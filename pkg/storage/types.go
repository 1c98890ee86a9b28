package storage

import "time"

// Member is one row of the guild roster mirror.
type Member struct {
	UUID          string    `db:"uuid"`
	Name          string    `db:"name"`
	Rank          string    `db:"rank"`
	Joined        time.Time `db:"joined"`
	ContributedXP int64     `db:"xp"`
}

// AwardStat is the per-member baseline for one award cycle.
type AwardStat struct {
	Username  string `db:"username"`
	Cycle     string `db:"cycle"`
	RaidCount int    `db:"raids"`
	Wars      int    `db:"wars"`
	XP        int64  `db:"xp"`
}

// RaidMember carries the last-known cumulative XP used for raid detection,
// plus the pending reward accumulators awaiting manual distribution.
type RaidMember struct {
	UUID           string `db:"uuid"`
	XP             int64  `db:"xp"`
	PendingRaids   int64  `db:"pending_raids"`
	PendingAspects int    `db:"pending_aspects"`
	PendingXP      int64  `db:"pending_xp"`
	XPEmeralds     int    `db:"xp_ems"`
}

type Territory struct {
	Name     string    `db:"name"`
	Guild    *string   `db:"guild"`
	Acquired time.Time `db:"acquired"`
}

// GuildName returns the owning guild, empty when unclaimed.
func (t *Territory) GuildName() string {
	if t.Guild == nil {
		return ""
	}
	return *t.Guild
}

type World struct {
	Name      string    `db:"name"`
	FirstSeen time.Time `db:"first_seen"`
}

type Player struct {
	UUID     string    `db:"uuid"`
	LastSeen time.Time `db:"last_seen"`
}

// Server is the per-Discord-server configuration.
type Server struct {
	ServerID            string     `db:"server_id"`
	Prefix              string     `db:"prefix"`
	TerritoryLogChannel *string    `db:"territory_channel"`
	PingRole            *string    `db:"ping_role"`
	PingRank            *int       `db:"ping_rank"`
	LastPing            *time.Time `db:"last_ping"`
	PingIntervalMinutes *int       `db:"ping_interval"`
}

// RewardConfig is a versioned configuration record; the newest row wins.
type RewardConfig struct {
	ID                  int       `db:"id"`
	EmeraldsPerRaid     int       `db:"emeralds_per_raid"`
	EmeraldsPerXPReward int       `db:"emeralds_per_xp_reward"`
	CreatedAt           time.Time `db:"created_at"`
}

// XPSnapshot is one row of the sparse guild_xp table; Data maps member name
// to contributed XP, nil when the member column was added after this row.
type XPSnapshot struct {
	Time time.Time
	Data map[string]*int64
}

// ActivityRow is one row of the guild_activity table; Counts maps tracked
// guild name to online members, nil when that guild's fetch failed.
type ActivityRow struct {
	Time   time.Time       `json:"time"`
	Counts map[string]*int `json:"counts"`
}

// TomeSummary aggregates the pending tome requests of one Discord user.
type TomeSummary struct {
	DiscordID    string    `db:"discord_id"`
	Pending      int       `db:"pending"`
	FirstRequest time.Time `db:"first_request"`
}
