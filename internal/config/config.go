// Package config loads pipeline configuration from a TOML file and the
// process environment. The access token is taken from the environment
// only, never from the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/firefox-exe/repolang/pkg/github"
)

// TokenEnvVar is the environment variable holding the GitHub access token.
const TokenEnvVar = "TOKEN_GITHUB"

// Config is the pipeline configuration.
type Config struct {
	// Username is the GitHub account that owns the target repository.
	Username string `toml:"username"`

	// TargetRepo is the repository the CSV files are uploaded into.
	TargetRepo string `toml:"target_repo"`

	// Orgs are the users/organizations whose repositories are extracted.
	Orgs []string `toml:"orgs"`

	// DataDir is where CSV files are written (default: "data").
	DataDir string `toml:"data_dir"`

	// PerPage is the listing page size, capped at 100 (default: 100).
	PerPage int `toml:"per_page"`

	// PageDelayMS is the courtesy pause between page fetches (default: 500).
	PageDelayMS int `toml:"page_delay_ms"`

	Redis RedisConfig `toml:"redis"`
	Log   LogConfig   `toml:"log"`
}

// RedisConfig configures the optional cross-run snapshot cache.
type RedisConfig struct {
	// Enabled turns the snapshot cache on.
	Enabled bool `toml:"enabled"`

	// Addr is the Redis address (default: "localhost:6379").
	Addr string `toml:"addr"`

	// DB is the Redis database number.
	DB int `toml:"db"`

	// TTLMinutes is the snapshot lifetime (default: 15).
	TTLMinutes int `toml:"ttl_minutes"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// Default returns a configuration with all defaults applied.
func Default() Config {
	return Config{
		DataDir:     "data",
		PerPage:     100,
		PageDelayMS: 500,
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			TTLMinutes: 15,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML configuration file and applies defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.PerPage <= 0 {
		c.PerPage = 100
	}
	if c.PageDelayMS < 0 {
		c.PageDelayMS = 500
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.TTLMinutes <= 0 {
		c.Redis.TTLMinutes = 15
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all required fields are present and in range.
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.TargetRepo == "" {
		return fmt.Errorf("target_repo is required")
	}
	if len(c.Orgs) == 0 {
		return fmt.Errorf("at least one org is required")
	}
	if c.PerPage > 100 {
		return fmt.Errorf("per_page must be <= 100 (got %d)", c.PerPage)
	}
	return nil
}

// Token reads the access token from the environment. A missing token is a
// fatal configuration error, surfaced before any network call.
func Token() (string, error) {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return "", github.ErrMissingToken
	}
	return token, nil
}

// PageDelay returns the courtesy pause as a duration.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// SnapshotTTL returns the snapshot cache lifetime as a duration.
func (c *RedisConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
