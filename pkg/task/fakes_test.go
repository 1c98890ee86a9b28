package task

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

// fakeAPI serves canned payloads. The embedded interface panics on anything
// a test did not set up, which is exactly what we want.
type fakeAPI struct {
	API

	guild       *wynn.Guild
	guildErr    error
	players     map[string]*wynn.Player
	playerAges  map[string]int
	online      *wynn.OnlinePlayers
	territories map[string]wynn.Territory
}

func (f *fakeAPI) Guild(_ context.Context, _ string) (*wynn.Guild, error) {
	return f.guild, f.guildErr
}

func (f *fakeAPI) Player(_ context.Context, uuid string) (*wynn.Player, error) {
	player, ok := f.players[uuid]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", uuid, wynn.ErrBadRequest)
	}
	return player, nil
}

func (f *fakeAPI) PlayerUncached(ctx context.Context, uuid string) (*wynn.Player, int, error) {
	player, err := f.Player(ctx, uuid)
	return player, f.playerAges[uuid], err
}

func (f *fakeAPI) OnlinePlayers(_ context.Context) (*wynn.OnlinePlayers, error) {
	return f.online, nil
}

func (f *fakeAPI) OnlinePlayersByUUID(_ context.Context) (*wynn.OnlinePlayers, error) {
	return f.online, nil
}

func (f *fakeAPI) Territories(_ context.Context) (map[string]wynn.Territory, error) {
	return f.territories, nil
}

// fakeStore keeps everything in maps and records mutations for assertions.
type fakeStore struct {
	Store

	members     []*storage.Member
	added       []*storage.Member
	removed     []string
	nameUpdates map[string]string
	rankUpdates map[string]string
	xpUpdates   map[string]int64

	raidBaselines    map[string]int64
	baselinesAdded   map[string]int64
	baselinesRemoved []string
	baselineXPSet    map[string]int64
	playerRaids      map[string]map[string]int
	raidLogs         []string
	pendingRaids     []string

	territories []*storage.Territory
	terrAdded   map[string]string
	terrUpdated map[string]string
	servers     []*storage.Server
	lastPings   map[string]time.Time

	worlds        []*storage.World
	worldsAdded   []string
	worldsRemoved []string

	awardStats   map[string][]*storage.AwardStat
	raidCounts   map[string]int
	warLogs      []string
	pendingXP    map[string]int64
	awardUpdates []string

	players       []*storage.Player
	playersAdded  []string
	playersBumped []string

	activityIncrements []activityIncrement
}

type activityIncrement struct {
	week  string
	names []string
}

func (f *fakeStore) GetSelectedPlayers(_ []string) ([]*storage.Player, error) {
	return f.players, nil
}

func (f *fakeStore) AddPlayers(uuids []string) error {
	f.playersAdded = append(f.playersAdded, uuids...)
	return nil
}

func (f *fakeStore) UpdatePlayersLastSeen(uuids []string) error {
	f.playersBumped = append(f.playersBumped, uuids...)
	return nil
}

func (f *fakeStore) IncrementMemberActivity(week string, names []string) error {
	f.activityIncrements = append(f.activityIncrements, activityIncrement{week, names})
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nameUpdates:    map[string]string{},
		rankUpdates:    map[string]string{},
		xpUpdates:      map[string]int64{},
		raidBaselines:  map[string]int64{},
		baselinesAdded: map[string]int64{},
		baselineXPSet:  map[string]int64{},
		playerRaids:    map[string]map[string]int{},
		terrAdded:      map[string]string{},
		terrUpdated:    map[string]string{},
		lastPings:      map[string]time.Time{},
		awardStats:     map[string][]*storage.AwardStat{},
		raidCounts:     map[string]int{},
		pendingXP:      map[string]int64{},
	}
}

func (f *fakeStore) GetAwardStatsForCycle(cycle string) ([]*storage.AwardStat, error) {
	return f.awardStats[cycle], nil
}

func (f *fakeStore) AddAwardStat(username, cycle string, raids, wars int, xp int64) error {
	f.awardStats[cycle] = append(f.awardStats[cycle], &storage.AwardStat{
		Username: username, Cycle: cycle, RaidCount: raids, Wars: wars, XP: xp,
	})
	return nil
}

func (f *fakeStore) UpdateAwardRaids(username, cycle string, raids int) error {
	f.awardUpdates = append(f.awardUpdates, fmt.Sprintf("raids:%s:%s:%d", username, cycle, raids))
	return nil
}

func (f *fakeStore) UpdateAwardWars(username, cycle string, wars int) error {
	f.awardUpdates = append(f.awardUpdates, fmt.Sprintf("wars:%s:%s:%d", username, cycle, wars))
	return nil
}

func (f *fakeStore) UpdateAwardXP(username, cycle string, xp int64) error {
	f.awardUpdates = append(f.awardUpdates, fmt.Sprintf("xp:%s:%s:%d", username, cycle, xp))
	return nil
}

func (f *fakeStore) AddWarLog(uuid string) error {
	f.warLogs = append(f.warLogs, uuid)
	return nil
}

func (f *fakeStore) AddPendingXP(uuid string, amount int64, _ int) error {
	f.pendingXP[uuid] += amount
	return nil
}

func (f *fakeStore) GetRaidCountsBetween(_, _ time.Time) (map[string]int, error) {
	return f.raidCounts, nil
}

func (f *fakeStore) GetAllMembers() ([]*storage.Member, error) { return f.members, nil }

func (f *fakeStore) AddMember(uuid string, joined time.Time, name, rank string, xp int64) error {
	f.added = append(f.added, &storage.Member{UUID: uuid, Name: name, Rank: rank, Joined: joined, ContributedXP: xp})
	return nil
}

func (f *fakeStore) UpdateMemberName(uuid, name string) error {
	f.nameUpdates[uuid] = name
	return nil
}

func (f *fakeStore) UpdateMemberRank(uuid, rank string) error {
	f.rankUpdates[uuid] = rank
	return nil
}

func (f *fakeStore) UpdateMemberXP(uuid string, xp int64) error {
	f.xpUpdates[uuid] = xp
	return nil
}

func (f *fakeStore) RemoveMember(uuid string) error {
	f.removed = append(f.removed, uuid)
	return nil
}

func (f *fakeStore) GetRaidMembers() (map[string]int64, error) { return f.raidBaselines, nil }

func (f *fakeStore) AddRaidMember(uuid string, xp int64) error {
	f.baselinesAdded[uuid] = xp
	return nil
}

func (f *fakeStore) UpdateRaidMemberXP(uuid string, xp int64) error {
	f.baselineXPSet[uuid] = xp
	return nil
}

func (f *fakeStore) RemoveRaidMember(uuid string) error {
	f.baselinesRemoved = append(f.baselinesRemoved, uuid)
	return nil
}

func (f *fakeStore) GetPlayerRaids(uuid string) (map[string]int, error) {
	return f.playerRaids[uuid], nil
}

func (f *fakeStore) SetPlayerRaid(uuid, raid string, amount int) error {
	if f.playerRaids[uuid] == nil {
		f.playerRaids[uuid] = map[string]int{}
	}
	f.playerRaids[uuid][raid] = amount
	return nil
}

func (f *fakeStore) AddRaidLog(uuid, raid string) error {
	f.raidLogs = append(f.raidLogs, uuid+"/"+raid)
	return nil
}

func (f *fakeStore) AddPendingRaid(username string, _ int) error {
	f.pendingRaids = append(f.pendingRaids, username)
	return nil
}

func (f *fakeStore) GetRewardConfig() (*storage.RewardConfig, error) {
	return &storage.RewardConfig{EmeraldsPerRaid: 2048, EmeraldsPerXPReward: 4096}, nil
}

func (f *fakeStore) GetAllTerritories() ([]*storage.Territory, error) { return f.territories, nil }

func (f *fakeStore) AddTerritory(name, guild string, _ time.Time) error {
	f.terrAdded[name] = guild
	return nil
}

func (f *fakeStore) UpdateTerritory(name, guild string, _ time.Time) error {
	f.terrUpdated[name] = guild
	return nil
}

func (f *fakeStore) GetAllServers() ([]*storage.Server, error) { return f.servers, nil }

func (f *fakeStore) UpdateServerLastPing(serverID string, t time.Time) error {
	f.lastPings[serverID] = t
	return nil
}

func (f *fakeStore) GetAllWorlds() ([]*storage.World, error) { return f.worlds, nil }

func (f *fakeStore) AddWorld(name string) error {
	f.worldsAdded = append(f.worldsAdded, name)
	return nil
}

func (f *fakeStore) RemoveWorld(name string) error {
	f.worldsRemoved = append(f.worldsRemoved, name)
	return nil
}

type channelSend struct {
	channelID string
	content   string
	embed     *discordgo.MessageEmbed
	pingRole  string
}

type webhookSend struct {
	url      string
	username string
	content  string
	embed    *discordgo.MessageEmbed
}

type fakeNotifier struct {
	channelSends []channelSend
	webhookSends []webhookSend
}

func (f *fakeNotifier) SendChannel(channelID, content string, embed *discordgo.MessageEmbed, pingRole string) {
	f.channelSends = append(f.channelSends, channelSend{channelID, content, embed, pingRole})
}

func (f *fakeNotifier) SendWebhook(url, username, content string, embed *discordgo.MessageEmbed) {
	f.webhookSends = append(f.webhookSends, webhookSend{url, username, content, embed})
}
