package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DiscordConfig holds the bot credentials.
type DiscordConfig struct {
	Token string `yaml:"token" envconfig:"DISCORD_TOKEN"`
	// AppID overrides the application ID read from the ready event.
	AppID string `yaml:"app_id" envconfig:"DISCORD_APP_ID"`
	// GuildIDs restricts the example cogs to these guilds; empty means global.
	GuildIDs []string `yaml:"guild_ids" envconfig:"DISCORD_GUILD_IDS"`
}

// SyncConfig controls how commands are registered with Discord.
type SyncConfig struct {
	Enabled      bool `yaml:"enabled" envconfig:"SLASH_SYNC_COMMANDS"`
	DeleteUnused bool `yaml:"delete_unused" envconfig:"SLASH_DELETE_UNUSED"`
	// IntervalMS is the minimum delay between registration calls.
	IntervalMS int `yaml:"interval_ms" envconfig:"SLASH_SYNC_INTERVAL_MS"`
}

// DatabaseConfig points at the postgres command hash cache. An empty URL
// keeps the cache in memory.
type DatabaseConfig struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// RateLimitConfig limits command invocations per user and command.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" envconfig:"RATE_LIMIT_PER_MINUTE"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Config aggregates the bot configuration.
type Config struct {
	Discord   DiscordConfig   `yaml:"discord"`
	Sync      SyncConfig      `yaml:"sync"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Sync:      SyncConfig{Enabled: true, IntervalMS: 25},
		RateLimit: RateLimitConfig{PerMinute: 15},
		Logging:   LoggingConfig{Level: "info", Format: FormatText},
	}
}

// Load reads .env (if present), the optional YAML file at path and the
// environment, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}
	// Sections are processed one by one so the envconfig tags are used
	// verbatim instead of being prefixed with the section name.
	sections := []interface{}{&cfg.Discord, &cfg.Sync, &cfg.Database, &cfg.RateLimit, &cfg.Logging}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to process env: %w", err)
		}
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if strings.TrimSpace(cfg.Discord.Token) == "" {
		return fmt.Errorf("DISCORD_TOKEN is not set")
	}

	ids := cfg.Discord.GuildIDs[:0]
	for _, id := range cfg.Discord.GuildIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	cfg.Discord.GuildIDs = ids

	if cfg.Sync.IntervalMS < 0 {
		return fmt.Errorf("sync.interval_ms must be >= 0")
	}
	if cfg.RateLimit.PerMinute < 0 {
		return fmt.Errorf("rate_limit.per_minute must be >= 0")
	}
	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 5
	}

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	format := strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid logging.format %q; allowed: text, json", cfg.Logging.Format)
	}
	cfg.Logging.Format = format
	return nil
}
