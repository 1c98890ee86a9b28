// Package task contains the periodic reconciliation jobs: each one fetches
// current state from the Wynncraft API, diffs it against what Postgres last
// saw, persists the delta and notifies Discord on interesting transitions.
package task

import (
	"context"
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/eden-guild/pianobot/pkg/settings"
	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

// API is the slice of the Wynncraft client the jobs consume.
type API interface {
	Guild(ctx context.Context, name string) (*wynn.Guild, error)
	Player(ctx context.Context, uuid string) (*wynn.Player, error)
	PlayerUncached(ctx context.Context, uuid string) (*wynn.Player, int, error)
	OnlinePlayers(ctx context.Context) (*wynn.OnlinePlayers, error)
	OnlinePlayersByUUID(ctx context.Context) (*wynn.OnlinePlayers, error)
	Territories(ctx context.Context) (map[string]wynn.Territory, error)
}

// Store is the slice of the persistence layer the jobs consume, satisfied by
// *storage.PsqlInterface. Tests embed it in a fake and override what they need.
type Store interface {
	GetAllMembers() ([]*storage.Member, error)
	AddMember(uuid string, joined time.Time, name, rank string, xp int64) error
	UpdateMemberName(uuid, name string) error
	UpdateMemberRank(uuid, rank string) error
	UpdateMemberXP(uuid string, xp int64) error
	RemoveMember(uuid string) error

	AddAwardStat(username, cycle string, raids, wars int, xp int64) error
	GetAwardStatsForCycle(cycle string) ([]*storage.AwardStat, error)
	UpdateAwardRaids(username, cycle string, raids int) error
	UpdateAwardWars(username, cycle string, wars int) error
	UpdateAwardXP(username, cycle string, xp int64) error

	GetRaidMembers() (map[string]int64, error)
	AddRaidMember(uuid string, xp int64) error
	UpdateRaidMemberXP(uuid string, xp int64) error
	RemoveRaidMember(uuid string) error
	GetPlayerRaids(uuid string) (map[string]int, error)
	SetPlayerRaid(uuid, raid string, amount int) error
	AddRaidLog(uuid, raid string) error
	GetRaidCountsBetween(start, end time.Time) (map[string]int, error)
	AddWarLog(uuid string) error
	AddPendingRaid(username string, emeraldsPerRaid int) error
	AddPendingXP(uuid string, amount int64, emeraldsPerMilestone int) error
	GetRewardConfig() (*storage.RewardConfig, error)

	AddXPColumns(names []string) error
	AddXPSnapshot(bucket time.Time, data map[string]int64) error
	GetLastXPSnapshots(amount int) ([]*storage.XPSnapshot, error)
	CleanupXPSnapshots() error

	AddActivityColumns(guilds []string) error
	AddActivityRow(bucket time.Time, counts map[string]*int) error
	CleanupActivityRows() error
	IncrementMemberActivity(week string, names []string) error

	GetSelectedPlayers(uuids []string) ([]*storage.Player, error)
	AddPlayers(uuids []string) error
	UpdatePlayersLastSeen(uuids []string) error

	GetAllTerritories() ([]*storage.Territory, error)
	AddTerritory(name, guild string, acquired time.Time) error
	UpdateTerritory(name, guild string, acquired time.Time) error

	GetAllWorlds() ([]*storage.World, error)
	AddWorld(name string) error
	RemoveWorld(name string) error

	GetAllServers() ([]*storage.Server, error)
	UpdateServerLastPing(serverID string, t time.Time) error
}

// Notifier posts into Discord. Fire-and-forget per the sink contract.
type Notifier interface {
	SendChannel(channelID, content string, embed *discordgo.MessageEmbed, pingRole string)
	SendWebhook(url, username, content string, embed *discordgo.MessageEmbed)
}

// Env bundles the collaborators every job needs. It is constructed once in
// main and passed explicitly; jobs hold no global state.
type Env struct {
	API    API
	Store  Store
	Notify Notifier
	Conf   *settings.Config
	Squads *SquadProcessor

	// Now and Rand are overridable for tests; nil means real time and a
	// time-seeded source.
	Now  func() time.Time
	Rand *rand.Rand
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Env) rand() *rand.Rand {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e.Rand
}
