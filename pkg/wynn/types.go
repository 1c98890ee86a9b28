package wynn

import (
	"fmt"
	"strings"
	"time"
)

// Rank is a guild rank, ordered from lowest to highest.
type Rank int

const (
	Recruit Rank = iota
	Recruiter
	Captain
	Strategist
	Chief
	Owner
)

var rankNames = []string{"Recruit", "Recruiter", "Captain", "Strategist", "Chief", "Owner"}

func (r Rank) String() string {
	if r < Recruit || r > Owner {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// ParseRank resolves a rank by its case-insensitive name.
func ParseRank(s string) (Rank, error) {
	for i, name := range rankNames {
		if strings.EqualFold(s, name) {
			return Rank(i), nil
		}
	}
	return Recruit, fmt.Errorf("unknown guild rank %q", s)
}

// Member is one guild roster entry.
type Member struct {
	UUID          string
	Username      string
	Rank          Rank
	Joined        time.Time
	ContributedXP int64
	Online        bool
	Server        string
}

// Guild is the full guild statistics payload.
type Guild struct {
	Name    string
	Prefix  string
	Level   int
	Members []Member
}

// OnlineCount returns how many roster members are in the given online set.
func (g *Guild) OnlineCount(online map[string]struct{}) int {
	count := 0
	for _, m := range g.Members {
		if _, ok := online[m.Username]; ok {
			count++
		}
	}
	return count
}

// Player is the global player profile, reduced to the fields the jobs consume.
type Player struct {
	UUID      string
	Username  string
	Online    bool
	FirstJoin time.Time
	LastJoin  time.Time
	// Playtime is reported by the API in its own unit; multiply by
	// PlaytimeHourFactor for wall-clock hours.
	Playtime      float64
	TotalLevel    int
	Wars          int
	RaidTotal     int
	Raids         map[string]int
	ContributedXP int64
}

// PlaytimeHourFactor converts the API playtime unit to hours.
const PlaytimeHourFactor = 4.7

// OnlinePlayers is the world-wide online list: player identifier to world name.
type OnlinePlayers struct {
	Total   int
	Players map[string]string
}

// Names returns the set of online player identifiers.
func (o *OnlinePlayers) Names() map[string]struct{} {
	names := make(map[string]struct{}, len(o.Players))
	for p := range o.Players {
		names[p] = struct{}{}
	}
	return names
}

// Worlds returns the set of world names with at least one player.
func (o *OnlinePlayers) Worlds() map[string]struct{} {
	worlds := make(map[string]struct{})
	for _, w := range o.Players {
		if w != "" {
			worlds[w] = struct{}{}
		}
	}
	return worlds
}

// Territory is one entry of the live territory feed. Guild is empty when
// the territory is unclaimed.
type Territory struct {
	Guild    string
	Acquired time.Time
}
