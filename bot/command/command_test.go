package command

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eden-guild/pianobot/pkg/storage"
)

func subCommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) []*discordgo.ApplicationCommandInteractionDataOption {
	return []*discordgo.ApplicationCommandInteractionDataOption{{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	}}
}

func TestGetAwardsParams(t *testing.T) {
	assert.Equal(t, "raids", GetAwardsParams(nil))
	assert.Equal(t, "wars", GetAwardsParams([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: Sort, Type: discordgo.ApplicationCommandOptionString, Value: "wars"},
	}))
}

func TestGetGXPParams(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	start, end := GetGXPParams(nil, now)
	assert.Nil(t, start)
	assert.Nil(t, end)

	start, end = GetGXPParams([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: DaysStart, Type: discordgo.ApplicationCommandOptionNumber, Value: 7.0},
		{Name: DaysEnd, Type: discordgo.ApplicationCommandOptionNumber, Value: 0.5},
	}, now)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, now.Add(-7*24*time.Hour), *start)
	assert.Equal(t, now.Add(-12*time.Hour), *end)
}

func TestGetRewardsParams(t *testing.T) {
	action, raids, xp, member := GetRewardsParams(nil)
	assert.Equal(t, RewardsView, action)
	assert.Zero(t, raids)
	assert.Zero(t, xp)
	assert.Empty(t, member)

	action, raids, xp, _ = GetRewardsParams(subCommand(RewardsSet,
		&discordgo.ApplicationCommandInteractionDataOption{
			Name: RaidEmeralds, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2048),
		},
		&discordgo.ApplicationCommandInteractionDataOption{
			Name: XPEmeralds, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(4096),
		},
	))
	assert.Equal(t, RewardsSet, action)
	assert.Equal(t, 2048, raids)
	assert.Equal(t, 4096, xp)

	action, _, _, member = GetRewardsParams(subCommand(RewardsReset,
		&discordgo.ApplicationCommandInteractionDataOption{
			Name: RewardMember, Type: discordgo.ApplicationCommandOptionString, Value: "Ann",
		},
	))
	assert.Equal(t, RewardsReset, action)
	assert.Equal(t, "Ann", member)
}

func TestGetTomeAction(t *testing.T) {
	assert.Equal(t, TomeList, GetTomeAction(nil))
	assert.Equal(t, TomeJoin, GetTomeAction(subCommand(TomeJoin)))
}

func TestMonoTable(t *testing.T) {
	table := MonoTable([]Column{{"Name", 8}, {"Count", 6}}, [][]string{
		{"Ann", "3"},
		{"Bartholomew", "12"},
	})

	assert.True(t, strings.HasPrefix(table, "```\n"))
	assert.True(t, strings.HasSuffix(table, "```"))
	assert.Contains(t, table, "Ann     3")
	// overlong cells are truncated to the column width
	assert.Contains(t, table, "Barthol 12")
	assert.Contains(t, table, strings.Repeat("-", 14))
}

func TestLimitRows(t *testing.T) {
	rows := make([][]string, pageRows+5)
	for i := range rows {
		rows[i] = []string{"x"}
	}
	assert.Len(t, limitRows(rows), pageRows)
	assert.Len(t, limitRows(rows[:3]), 3)
}

func TestWorldRegion(t *testing.T) {
	assert.Equal(t, "North America", worldRegion("NA12"))
	assert.Equal(t, "Europe", worldRegion("EU3"))
	assert.Equal(t, "Unknown", worldRegion("AS1"))
}

func TestWorldsResponseSortsShortestUptimeFirst(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	resp := WorldsResponse([]*storage.World{
		{Name: "NA1", FirstSeen: now.Add(-26 * time.Hour)},
		{Name: "EU2", FirstSeen: now.Add(-90 * time.Minute)},
	}, now)

	content := resp.Data.Content
	assert.Less(t, strings.Index(content, "EU2"), strings.Index(content, "NA1"))
	assert.Contains(t, content, "01:30 hours")
	assert.Contains(t, content, "26:00 hours")
}

func TestTerritoriesResponseTruncatesToOnePage(t *testing.T) {
	guild := "Eden"
	territories := make([]*storage.Territory, 30)
	for i := range territories {
		territories[i] = &storage.Territory{Name: string(rune('A'+i)) + " Plains", Guild: &guild}
	}

	resp := TerritoriesResponse(territories)
	assert.Contains(t, resp.Data.Content, "Showing 20 of 30 territories.")
}

func TestTomeListResponseButtonsTargetHeadOfQueue(t *testing.T) {
	resp := TomeListResponse([]*storage.TomeSummary{
		{DiscordID: "111", Pending: 2, FirstRequest: time.Unix(1700000000, 0)},
		{DiscordID: "222", Pending: 1, FirstRequest: time.Unix(1700005000, 0)},
	})

	require.Len(t, resp.Data.Components, 1)
	row, ok := resp.Data.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	grant := row.Components[0].(discordgo.Button)
	deny := row.Components[1].(discordgo.Button)
	assert.Equal(t, TomeGrantButton+"111", grant.CustomID)
	assert.Equal(t, TomeDenyButton+"111", deny.CustomID)
	assert.Contains(t, resp.Data.Content, "<@111>")
	assert.Contains(t, resp.Data.Content, "(×2)")
}

func TestGetTrackingParams(t *testing.T) {
	action, interval, roleID, rank := GetTrackingParams(nil)
	assert.Equal(t, TrackingOverview, action)
	assert.Nil(t, interval)
	assert.Empty(t, roleID)
	assert.Nil(t, rank)

	action, interval, _, _ = GetTrackingParams(subCommand(TrackingPing,
		&discordgo.ApplicationCommandInteractionDataOption{
			Name: TrackingIntervalOption, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(15),
		},
	))
	assert.Equal(t, TrackingPing, action)
	require.NotNil(t, interval)
	assert.Equal(t, 15, *interval)

	action, _, roleID, _ = GetTrackingParams(subCommand(TrackingRole,
		&discordgo.ApplicationCommandInteractionDataOption{
			Name: TrackingRoleOption, Type: discordgo.ApplicationCommandOptionRole, Value: "role-9",
		},
	))
	assert.Equal(t, TrackingRole, action)
	assert.Equal(t, "role-9", roleID)

	action, _, _, rank = GetTrackingParams(subCommand(TrackingRank,
		&discordgo.ApplicationCommandInteractionDataOption{
			Name: TrackingRankOption, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(-1),
		},
	))
	assert.Equal(t, TrackingRank, action)
	require.NotNil(t, rank)
	assert.Equal(t, -1, *rank)
}

func TestTrackingOverviewResponse(t *testing.T) {
	inactive := TrackingOverviewResponse(&storage.Server{ServerID: "g1"})
	require.Len(t, inactive.Data.Embeds, 1)
	assert.Contains(t, inactive.Data.Embeds[0].Description, "Not active at the moment")
	assert.Equal(t, "Pings disabled", inactive.Data.Embeds[0].Fields[0].Name)
	assert.Equal(t, "Pings regardless of online members", inactive.Data.Embeds[0].Fields[1].Name)

	channel := "chan-1"
	role := "role-9"
	rank := 2
	minutes := 15
	active := TrackingOverviewResponse(&storage.Server{
		ServerID:            "g1",
		TerritoryLogChannel: &channel,
		PingRole:            &role,
		PingRank:            &rank,
		PingIntervalMinutes: &minutes,
	})
	embed := active.Data.Embeds[0]
	assert.Contains(t, embed.Description, "<#chan-1>")
	assert.Contains(t, embed.Description, "<@&role-9>")
	assert.Equal(t, "Ping cooldown: 15 minutes", embed.Fields[0].Name)
	assert.Equal(t, "Pings unless a Captain is online", embed.Fields[1].Name)
}

func TestTrackingSettingResponses(t *testing.T) {
	assert.Contains(t, TrackingChannelResponse("chan-1", true).Data.Content, "<#chan-1>")
	assert.Equal(t, "Territory tracking toggled off.", TrackingChannelResponse("", false).Data.Content)

	minutes := 30
	assert.Equal(t, "Territory ping cooldown changed to 30 minutes.", TrackingPingResponse(&minutes, true).Data.Content)
	assert.Equal(t, "Territory ping toggled off.", TrackingPingResponse(nil, true).Data.Content)
	assert.Equal(t, "Territory ping is currently disabled.", TrackingPingResponse(nil, false).Data.Content)

	rank := 4
	assert.Contains(t, TrackingRankResponse(&rank, true).Data.Content, "Chief")
	assert.Equal(t, "Pings are now always active.", TrackingRankResponse(nil, true).Data.Content)
}

func TestGetActivityParams(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-24", GetActivityParams(nil, now))

	week := GetActivityParams([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: ActivityWeek, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		{Name: ActivityYear, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(2023)},
	}, now)
	assert.Equal(t, "2023-3", week)
}

func TestActivityResponseSortsLeastActiveFirst(t *testing.T) {
	resp := ActivityResponse("2024-24", []ActivityEntry{
		{Username: "Ann", Rank: "Chief", Minutes: 90},
		{Username: "Bob", Rank: "Recruit", Minutes: 45},
	})

	content := resp.Data.Content
	assert.Contains(t, content, "week `2024-24`")
	assert.Less(t, strings.Index(content, "Bob"), strings.Index(content, "Ann"))
	assert.Contains(t, content, "45 minutes")
	assert.Contains(t, content, "01:30 hours")
}

func TestActivityResponseWithoutData(t *testing.T) {
	resp := ActivityResponse("2019-7", nil)
	assert.Equal(t, "No data available for the specified interval!", resp.Data.Content)
}

func TestWarsResponse(t *testing.T) {
	empty := WarsResponse(nil, nil, nil)
	assert.Equal(t, "No guild wars in this interval.", empty.Data.Content)

	start := time.Unix(1700000000, 0)
	resp := WarsResponse(&start, nil, map[string]int{"Ann": 3, "Bob": 12})
	content := resp.Data.Content
	assert.Contains(t, content, "since <t:1700000000:D>")
	assert.Less(t, strings.Index(content, "Bob"), strings.Index(content, "Ann"))
}

func TestTomeJoinResponseEchoesOpenRequest(t *testing.T) {
	fresh := TomeJoinResponse(false, nil)
	assert.Equal(t, "You have been added to the tome queue!", fresh.Data.Content)

	last := time.Unix(1700000000, 0)
	dup := TomeJoinResponse(true, &last)
	assert.Contains(t, dup.Data.Content, "already have a pending tome request")
	assert.Contains(t, dup.Data.Content, "<t:1700000000:R>")
}
