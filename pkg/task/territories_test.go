package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestTerritoriesInsertsBaselineSilently(t *testing.T) {
	acquired := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		guild:       &wynn.Guild{Name: "Eden"},
		territories: map[string]wynn.Territory{"Detlas": {Guild: "Eden", Acquired: acquired}},
	}
	store := newFakeStore()
	notifier := &fakeNotifier{}
	env := &Env{API: api, Store: store, Notify: notifier, Conf: testConf()}

	require.NoError(t, Territories(context.Background(), env))

	assert.Equal(t, "Eden", store.terrAdded["Detlas"])
	assert.Empty(t, notifier.channelSends, "cold start must not notify")
}

func TestTerritoriesAnnouncesLossWithHeldDuration(t *testing.T) {
	lost := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	held := 2 * 24 * time.Hour
	api := &fakeAPI{
		guild: &wynn.Guild{Name: "Eden"},
		territories: map[string]wynn.Territory{
			"Forest": {Guild: "Rival", Acquired: lost},
			"Plains": {Guild: "Rival", Acquired: lost.Add(-time.Hour)},
			"Detlas": {Guild: "Eden", Acquired: lost.Add(-time.Hour)},
		},
	}
	store := newFakeStore()
	store.territories = []*storage.Territory{
		{Name: "Forest", Guild: strPtr("Eden"), Acquired: lost.Add(-held)},
	}
	store.servers = []*storage.Server{{ServerID: "s1", TerritoryLogChannel: strPtr("c1")}}
	notifier := &fakeNotifier{}
	env := &Env{API: api, Store: store, Notify: notifier, Conf: testConf()}

	require.NoError(t, Territories(context.Background(), env))

	assert.Equal(t, "Rival", store.terrUpdated["Forest"])
	require.Len(t, notifier.channelSends, 1)
	send := notifier.channelSends[0]
	assert.Equal(t, "c1", send.channelID)
	assert.Empty(t, send.pingRole, "no ping configured")
	assert.Equal(t, "Forest", send.embed.Author.Name)
	// held 2 days renders in hours per the <3 days rule
	assert.Equal(t, "Held for 48 hours", send.embed.Footer.Text)
	// Eden held Forest+Detlas before, Rival now holds Forest+Plains
	assert.Equal(t, "Eden (1)\n:arrow_forward:  Rival (2)", send.embed.Description)
}

func TestTerritoriesIgnoresChangesBetweenOtherGuilds(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		guild:       &wynn.Guild{Name: "Eden"},
		territories: map[string]wynn.Territory{"Forest": {Guild: "Other", Acquired: now}},
	}
	store := newFakeStore()
	store.territories = []*storage.Territory{
		{Name: "Forest", Guild: strPtr("Rival"), Acquired: now.Add(-time.Hour)},
	}
	store.servers = []*storage.Server{{ServerID: "s1", TerritoryLogChannel: strPtr("c1")}}
	notifier := &fakeNotifier{}
	env := &Env{API: api, Store: store, Notify: notifier, Conf: testConf()}

	require.NoError(t, Territories(context.Background(), env))

	assert.Equal(t, "Other", store.terrUpdated["Forest"], "ownership still tracked")
	assert.Empty(t, notifier.channelSends)
}

func TestShouldPingSuppression(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	interval := intPtr(30)
	role := strPtr("r1")

	// chief online (ordinal 4) with default threshold 6: still pings
	assert.True(t, shouldPing(interval, role, nil, nil, now, int(wynn.Chief)))
	// owner online with threshold 5: suppressed
	assert.False(t, shouldPing(interval, role, intPtr(5), nil, now, int(wynn.Owner)))
	// cooldown not elapsed
	recent := now.Add(-10 * time.Minute)
	assert.False(t, shouldPing(interval, role, nil, &recent, now, -1))
	// cooldown elapsed
	old := now.Add(-31 * time.Minute)
	assert.True(t, shouldPing(interval, role, nil, &old, now, -1))
	// unconfigured
	assert.False(t, shouldPing(nil, role, nil, nil, now, -1))
	assert.False(t, shouldPing(interval, nil, nil, nil, now, -1))
}

func TestTerritoriesPingUpdatesCooldownOnlyWhenPinged(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		guild:       &wynn.Guild{Name: "Eden"},
		territories: map[string]wynn.Territory{"Forest": {Guild: "Rival", Acquired: now}},
	}
	store := newFakeStore()
	store.territories = []*storage.Territory{
		{Name: "Forest", Guild: strPtr("Eden"), Acquired: now.Add(-time.Hour)},
	}
	recent := now.Add(-time.Minute)
	store.servers = []*storage.Server{
		{ServerID: "pings", TerritoryLogChannel: strPtr("c1"), PingRole: strPtr("r1"), PingIntervalMinutes: intPtr(30)},
		{ServerID: "cooling", TerritoryLogChannel: strPtr("c2"), PingRole: strPtr("r2"), PingIntervalMinutes: intPtr(30), LastPing: &recent},
	}
	notifier := &fakeNotifier{}
	env := &Env{API: api, Store: store, Notify: notifier, Conf: testConf(), Now: func() time.Time { return now }}

	require.NoError(t, Territories(context.Background(), env))

	require.Len(t, notifier.channelSends, 2)
	assert.Equal(t, "r1", notifier.channelSends[0].pingRole)
	assert.Empty(t, notifier.channelSends[1].pingRole)
	_, pinged := store.lastPings["pings"]
	assert.True(t, pinged)
	_, cooled := store.lastPings["cooling"]
	assert.False(t, cooled, "cooldown must only move when a ping went out")
}
