package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

func TestWorldsReconcilesSets(t *testing.T) {
	api := &fakeAPI{
		online: &wynn.OnlinePlayers{Players: map[string]string{
			"Ann": "WC1",
			"Bob": "WC3",
		}},
	}
	store := newFakeStore()
	store.worlds = []*storage.World{{Name: "WC1"}, {Name: "WC2"}}
	env := &Env{API: api, Store: store, Notify: &fakeNotifier{}, Conf: testConf()}

	require.NoError(t, Worlds(context.Background(), env))

	assert.Equal(t, []string{"WC3"}, store.worldsAdded)
	assert.Equal(t, []string{"WC2"}, store.worldsRemoved)
}

func TestPlayersSplitsNewAndKnown(t *testing.T) {
	api := &fakeAPI{
		online: &wynn.OnlinePlayers{Players: map[string]string{
			"uuid-a": "WC1",
			"uuid-b": "WC2",
		}},
	}
	store := newFakeStore()
	store.players = []*storage.Player{{UUID: "uuid-a"}}
	env := &Env{API: api, Store: store, Notify: &fakeNotifier{}, Conf: testConf()}

	require.NoError(t, Players(context.Background(), env))

	assert.Equal(t, []string{"uuid-b"}, store.playersAdded)
	assert.Equal(t, []string{"uuid-a"}, store.playersBumped)
}

func TestMemberActivityCountsOnlyOnlineMembers(t *testing.T) {
	api := &fakeAPI{
		guild: &wynn.Guild{
			Name: "Eden",
			Members: []wynn.Member{
				{UUID: "1", Username: "Ann"},
				{UUID: "2", Username: "Bob"},
			},
		},
		online: &wynn.OnlinePlayers{Players: map[string]string{"Ann": "WC1", "Zed": "WC2"}},
	}
	store := newFakeStore()
	env := &Env{API: api, Store: store, Notify: &fakeNotifier{}, Conf: testConf()}

	require.NoError(t, MemberActivity(context.Background(), env))

	require.Len(t, store.activityIncrements, 1)
	assert.Equal(t, []string{"Ann"}, store.activityIncrements[0].names)
}
