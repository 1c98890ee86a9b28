// Package settings loads process configuration from the environment with an
// optional YAML file underneath, plus the operator-editable tracked-guilds
// file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PIANOBOT_"

type Config struct {
	DiscordToken string `koanf:"discord_token"`

	PostgresAddr string `koanf:"postgres_addr"`
	PostgresUser string `koanf:"postgres_user"`
	PostgresPass string `koanf:"postgres_pass"`
	// SkipSchemaExec disables running postgres.sql at startup, for deployments
	// that manage the schema externally.
	SkipSchemaExec bool `koanf:"skip_schema_exec"`

	RedisAddr string `koanf:"redis_addr"`
	RedisPass string `koanf:"redis_pass"`

	APIPort string `koanf:"api_port"`

	// HomeGuild is the guild whose roster, raids and territories are
	// reconciled. Tag is its in-game prefix.
	HomeGuild    string `koanf:"home_guild"`
	HomeGuildTag string `koanf:"home_guild_tag"`

	// Notification destinations. Webhook URLs or channel IDs depending on
	// the sink operation.
	MemberWebhook  string `koanf:"member_webhook"`
	XPWebhook      string `koanf:"xp_webhook"`
	RaidWebhook    string `koanf:"raid_webhook"`
	LogChannelID   string `koanf:"log_channel_id"`
	EnableTracking bool   `koanf:"enable_tracking"`

	TrackedGuildsFile string `koanf:"tracked_guilds_file"`

	Debug bool `koanf:"debug"`
}

// Load reads configPath (if non-empty) and then overlays PIANOBOT_* env vars.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env config: %w", err)
	}

	cfg := &Config{
		HomeGuild:         "Eden",
		HomeGuildTag:      "Edn",
		APIPort:           "5000",
		TrackedGuildsFile: "tracked_guilds.toml",
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New("no discord_token provided")
	}
	if cfg.PostgresAddr == "" || cfg.PostgresUser == "" || cfg.PostgresPass == "" {
		return nil, errors.New("incomplete postgres configuration")
	}
	if cfg.RedisAddr == "" {
		return nil, errors.New("no redis_addr specified")
	}
	return cfg, nil
}

type trackedGuildsFile struct {
	Guilds map[string]string `toml:"guilds"`
}

// TrackedGuilds reads the guild-name to tag mapping fresh from disk, so
// operators can edit the file while the bot runs. A missing file means no
// tracked guilds beyond the home guild.
func (c *Config) TrackedGuilds() (map[string]string, error) {
	data, err := os.ReadFile(c.TrackedGuildsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	var parsed trackedGuildsFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.TrackedGuildsFile, err)
	}
	if parsed.Guilds == nil {
		parsed.Guilds = map[string]string{}
	}
	return parsed.Guilds, nil
}
