package wynn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guildPayload = `{
	"name": "Eden",
	"prefix": "Edn",
	"level": 96,
	"members": {
		"total": 3,
		"owner": {
			"Salted": {"uuid": "aaa-111", "online": true, "server": "WC1", "contributed": 500000, "joined": "2020-01-02T10:00:00.000Z"}
		},
		"chief": {},
		"strategist": {},
		"captain": {
			"Ann": {"uuid": "bbb-222", "online": false, "server": null, "contributed": 1234, "joined": "2021-06-07T08:09:10.000Z"}
		},
		"recruiter": {},
		"recruit": {
			"Bob": {"uuid": "ccc-333", "online": false, "server": null, "contributed": 0, "joined": "2024-02-03T04:05:06.000Z"}
		}
	}
}`

func TestGuildParsesRosterGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guild/Eden", r.URL.Path)
		w.Write([]byte(guildPayload))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, nil)
	guild, err := client.Guild(context.Background(), "Eden")
	require.NoError(t, err)

	assert.Equal(t, "Eden", guild.Name)
	assert.Equal(t, 96, guild.Level)
	require.Len(t, guild.Members, 3)

	byName := map[string]Member{}
	for _, m := range guild.Members {
		byName[m.Username] = m
	}
	assert.Equal(t, Owner, byName["Salted"].Rank)
	assert.Equal(t, Captain, byName["Ann"].Rank)
	assert.Equal(t, Recruit, byName["Bob"].Rank)
	assert.True(t, byName["Salted"].Online)
	assert.EqualValues(t, 1234, byName["Ann"].ContributedXP)
	assert.Equal(t, 2021, byName["Ann"].Joined.Year())
}

func TestPlayerUncachedReportsAge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Age", "87")
		w.Write([]byte(`{
			"uuid": "aaa-111",
			"username": "Salted",
			"online": true,
			"firstJoin": "2015-05-06T07:08:09.000Z",
			"playtime": 120.5,
			"globalData": {"wars": 12, "totalLevel": 300, "raids": {"total": 5, "list": {"The Canyon Colossus": 5}}},
			"guild": {"contributed": 99}
		}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, nil)
	player, age, err := client.PlayerUncached(context.Background(), "aaa-111")
	require.NoError(t, err)
	assert.Equal(t, 87, age)
	assert.Equal(t, 12, player.Wars)
	assert.Equal(t, 5, player.RaidTotal)
	assert.Equal(t, 5, player.Raids["The Canyon Colossus"])
	assert.EqualValues(t, 99, player.ContributedXP)
}

func TestBadRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, nil)
	_, err := client.Player(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestTerritoriesNormalizesNobody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Detlas": {"guild": {"name": "Eden"}, "acquired": "2024-03-04T05:06:07.000Z"},
			"Ragni": {"guild": null, "acquired": "2024-03-04T05:06:07.000Z"},
			"Almuj": {"guild": {"name": "Nobody"}, "acquired": "2024-03-04T05:06:07.000Z"}
		}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, nil)
	territories, err := client.Territories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Eden", territories["Detlas"].Guild)
	assert.Empty(t, territories["Ragni"].Guild)
	assert.Empty(t, territories["Almuj"].Guild)
}

func TestParseRank(t *testing.T) {
	r, err := ParseRank("chief")
	require.NoError(t, err)
	assert.Equal(t, Chief, r)

	_, err = ParseRank("emperor")
	assert.Error(t, err)
}
