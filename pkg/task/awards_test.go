package task

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eden-guild/pianobot/pkg/wynn"
)

func TestGuildAwardsSeedsBaselines(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC) // cycle 2406B
	api := &fakeAPI{
		guild: &wynn.Guild{
			Name:    "Eden",
			Members: []wynn.Member{{UUID: "1", Username: "Ann", ContributedXP: 100}},
		},
		players: map[string]*wynn.Player{
			"1": {UUID: "1", Wars: 5, RaidTotal: 3, Raids: map[string]int{"The Canyon Colossus": 3}},
		},
	}
	store := newFakeStore()
	env := &Env{API: api, Store: store, Notify: &fakeNotifier{}, Conf: testConf(), Now: func() time.Time { return now }}

	require.NoError(t, GuildAwards(context.Background(), env))

	require.Len(t, store.awardStats["2406B"], 1)
	stat := store.awardStats["2406B"][0]
	assert.Equal(t, "Ann", stat.Username)
	assert.Equal(t, 3, stat.RaidCount)
	assert.Equal(t, 5, stat.Wars)
	assert.Equal(t, int64(100), stat.XP)
	// absent from the previous cycle, so the baseline is backfilled there too
	require.Len(t, store.awardStats["2406A"], 1)
}

func TestGuildAwardsRefreshesChangedMembers(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		guild: &wynn.Guild{
			Name:    "Eden",
			Members: []wynn.Member{{UUID: "1", Username: "Ann", Online: true, ContributedXP: 900}},
		},
		players: map[string]*wynn.Player{
			"1": {UUID: "1", Wars: 7, RaidTotal: 4, Raids: map[string]int{"The Canyon Colossus": 4}},
		},
	}
	store := newFakeStore()
	require.NoError(t, store.AddAwardStat("Ann", "2406B", 3, 5, 500))
	env := &Env{API: api, Store: store, Notify: &fakeNotifier{}, Conf: testConf(), Now: func() time.Time { return now }}

	require.NoError(t, GuildAwards(context.Background(), env))

	assert.Contains(t, store.awardUpdates, "raids:Ann:2406B:4")
	assert.Contains(t, store.awardUpdates, "wars:Ann:2406B:7")
	assert.Contains(t, store.awardUpdates, "xp:Ann:2406B:900")
	// two new wars, two log rows
	assert.Equal(t, []string{"1", "1"}, store.warLogs)
	// the 400 XP gained goes toward the milestone accumulator
	assert.Equal(t, int64(400), store.pendingXP["1"])
}

func TestGuildAwardsXPWithdrawalResetsBaselineSilently(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		guild: &wynn.Guild{
			Name:    "Eden",
			Members: []wynn.Member{{UUID: "1", Username: "Ann", ContributedXP: 100}},
		},
		players: map[string]*wynn.Player{"1": {UUID: "1"}},
	}
	store := newFakeStore()
	require.NoError(t, store.AddAwardStat("Ann", "2406B", 0, 0, 500))
	env := &Env{API: api, Store: store, Notify: &fakeNotifier{}, Conf: testConf(), Now: func() time.Time { return now }}

	require.NoError(t, GuildAwards(context.Background(), env))

	assert.Contains(t, store.awardUpdates, "xp:Ann:2406B:100")
	assert.Zero(t, store.pendingXP["1"], "an apparent XP drop must not award pending XP")
}

func TestGuildAwardsFinalizesOnRollover(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 2, 0, 0, time.UTC)
	api := &fakeAPI{guild: &wynn.Guild{Name: "Eden"}}
	store := newFakeStore()
	// closing cycle 2406A, baseline cycle 2405B
	require.NoError(t, store.AddAwardStat("Ann", "2406A", 0, 8, 900))
	require.NoError(t, store.AddAwardStat("Ann", "2405B", 0, 5, 400))
	store.raidCounts = map[string]int{"Ann": 9, "Bob": 1}

	notifier := &fakeNotifier{}
	env := &Env{
		API: api, Store: store, Notify: notifier, Conf: testConf(),
		Now:  func() time.Time { return now },
		Rand: rand.New(rand.NewSource(1)),
	}

	require.NoError(t, GuildAwards(context.Background(), env))

	require.Len(t, notifier.webhookSends, 1)
	send := notifier.webhookSends[0]
	assert.Equal(t, "Eden Awards", send.username)
	assert.Equal(t, "Final award results for promotion cycle  `2406A`", send.embed.Title)
	require.Len(t, send.embed.Fields, 4)
	assert.True(t, strings.HasPrefix(send.embed.Fields[0].Value, "```gss\n1. Ann (+9)\n"),
		"raid ranking should lead with Ann, got %q", send.embed.Fields[0].Value)
	assert.Contains(t, send.embed.Fields[1].Value, "Ann (+3)", "war delta against the 2405B baseline")
	assert.Contains(t, send.embed.Fields[3].Value, "Total tickets: 4", "ceil(sqrt(9)) + ceil(sqrt(1))")
}
