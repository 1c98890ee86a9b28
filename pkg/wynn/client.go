package wynn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

const (
	DefaultBaseURL = "https://api.wynncraft.com/v3"
	DefaultTimeout = 10 * time.Second
)

// Cache stores raw API payloads for a short TTL so that jobs running on
// overlapping intervals share fetches. A nil cache disables caching.
type Cache interface {
	GetPayload(ctx context.Context, key string) ([]byte, bool)
	SetPayload(ctx context.Context, key string, payload []byte, ttl time.Duration)
}

type Client struct {
	http    *http.Client
	baseURL string
	cache   Cache
}

func NewClient(cache Cache) *Client {
	return &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: DefaultBaseURL,
		cache:   cache,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string, cache Cache) *Client {
	c := NewClient(cache)
	c.baseURL = baseURL
	return c
}

// Guild fetches guild statistics, including the full roster.
func (c *Client) Guild(ctx context.Context, name string) (*Guild, error) {
	body, _, err := c.get(ctx, "/guild/"+url.PathEscape(name), "guild:"+name, 25*time.Second)
	if err != nil {
		return nil, err
	}
	return parseGuild(body)
}

// Player fetches the global player profile by UUID.
func (c *Client) Player(ctx context.Context, uuid string) (*Player, error) {
	body, _, err := c.get(ctx, "/player/"+url.PathEscape(uuid), "", 0)
	if err != nil {
		return nil, err
	}
	return parsePlayer(body)
}

// PlayerUncached fetches the player profile bypassing the cache and returns
// the server-reported Age header in seconds, which callers use to wait out
// the API's own response caching before re-polling.
func (c *Client) PlayerUncached(ctx context.Context, uuid string) (*Player, int, error) {
	body, age, err := c.get(ctx, "/player/"+url.PathEscape(uuid), "", 0)
	if err != nil {
		return nil, 0, err
	}
	player, err := parsePlayer(body)
	return player, age, err
}

// OnlinePlayers fetches the world-wide online player list.
func (c *Client) OnlinePlayers(ctx context.Context) (*OnlinePlayers, error) {
	body, _, err := c.get(ctx, "/player", "online", 25*time.Second)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Total   int               `json:"total"`
		Players map[string]string `json:"players"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding online players: %w", err)
	}
	return &OnlinePlayers{Total: raw.Total, Players: raw.Players}, nil
}

// OnlinePlayersByUUID is like OnlinePlayers but keys the result by player UUID.
func (c *Client) OnlinePlayersByUUID(ctx context.Context) (*OnlinePlayers, error) {
	body, _, err := c.get(ctx, "/player?identifier=uuid", "online:uuid", 25*time.Second)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Total   int               `json:"total"`
		Players map[string]string `json:"players"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding online players: %w", err)
	}
	return &OnlinePlayers{Total: raw.Total, Players: raw.Players}, nil
}

// Territories fetches the live territory feed. Unclaimed territories have an
// empty guild name.
func (c *Client) Territories(ctx context.Context) (map[string]Territory, error) {
	body, _, err := c.get(ctx, "/guild/list/territory", "territories", 25*time.Second)
	if err != nil {
		return nil, err
	}
	var raw map[string]struct {
		Guild *struct {
			Name string `json:"name"`
		} `json:"guild"`
		Acquired string `json:"acquired"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding territories: %w", err)
	}
	territories := make(map[string]Territory, len(raw))
	for name, t := range raw {
		guild := ""
		if t.Guild != nil && t.Guild.Name != "Nobody" {
			guild = t.Guild.Name
		}
		territories[name] = Territory{
			Guild:    guild,
			Acquired: parseTime(t.Acquired),
		}
	}
	return territories, nil
}

func (c *Client) get(ctx context.Context, path, cacheKey string, ttl time.Duration) ([]byte, int, error) {
	if c.cache != nil && cacheKey != "" {
		if body, ok := c.cache.GetPayload(ctx, cacheKey); ok {
			return body, 0, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, 0, fmt.Errorf("%w: GET %s", ErrTimeout, path)
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, 0, fmt.Errorf("%w: GET %s returned %d", ErrBadRequest, path, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, 0, fmt.Errorf("GET %s returned unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	age, _ := strconv.Atoi(resp.Header.Get("Age"))

	if c.cache != nil && cacheKey != "" {
		c.cache.SetPayload(ctx, cacheKey, body, ttl)
	}
	return body, age, nil
}

type rawMember struct {
	UUID        string `json:"uuid"`
	Online      bool   `json:"online"`
	Server      string `json:"server"`
	Contributed int64  `json:"contributed"`
	Joined      string `json:"joined"`
}

func parseGuild(body []byte) (*Guild, error) {
	var raw struct {
		Name    string                     `json:"name"`
		Prefix  string                     `json:"prefix"`
		Level   int                        `json:"level"`
		Members map[string]json.RawMessage `json:"members"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding guild: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: guild payload has no name", ErrBadRequest)
	}

	guild := &Guild{Name: raw.Name, Prefix: raw.Prefix, Level: raw.Level}
	// the roster is grouped by lowercase rank name, plus a "total" count
	for rankKey, groupRaw := range raw.Members {
		if rankKey == "total" {
			continue
		}
		rank, err := ParseRank(rankKey)
		if err != nil {
			return nil, fmt.Errorf("guild %s: %w", raw.Name, err)
		}
		var group map[string]rawMember
		if err := json.Unmarshal(groupRaw, &group); err != nil {
			return nil, fmt.Errorf("decoding %s members of guild %s: %w", rankKey, raw.Name, err)
		}
		for username, m := range group {
			guild.Members = append(guild.Members, Member{
				UUID:          m.UUID,
				Username:      username,
				Rank:          rank,
				Joined:        parseTime(m.Joined),
				ContributedXP: m.Contributed,
				Online:        m.Online,
				Server:        m.Server,
			})
		}
	}
	return guild, nil
}

func parsePlayer(body []byte) (*Player, error) {
	var raw struct {
		UUID       string  `json:"uuid"`
		Username   string  `json:"username"`
		Online     bool    `json:"online"`
		FirstJoin  string  `json:"firstJoin"`
		LastJoin   string  `json:"lastJoin"`
		Playtime   float64 `json:"playtime"`
		GlobalData struct {
			Wars       int `json:"wars"`
			TotalLevel int `json:"totalLevel"`
			Raids      struct {
				Total int            `json:"total"`
				List  map[string]int `json:"list"`
			} `json:"raids"`
		} `json:"globalData"`
		Guild struct {
			Contributed int64 `json:"contributed"`
		} `json:"guild"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding player: %w", err)
	}
	if raw.UUID == "" {
		return nil, fmt.Errorf("%w: player payload has no uuid", ErrBadRequest)
	}
	raids := raw.GlobalData.Raids.List
	if raids == nil {
		raids = map[string]int{}
	}
	return &Player{
		UUID:          raw.UUID,
		Username:      raw.Username,
		Online:        raw.Online,
		FirstJoin:     parseTime(raw.FirstJoin),
		LastJoin:      parseTime(raw.LastJoin),
		Playtime:      raw.Playtime,
		TotalLevel:    raw.GlobalData.TotalLevel,
		Wars:          raw.GlobalData.Wars,
		RaidTotal:     raw.GlobalData.Raids.Total,
		Raids:         raids,
		ContributedXP: raw.Guild.Contributed,
	}, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
