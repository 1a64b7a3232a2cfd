package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefox-exe/repolang/pkg/github"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repolang.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
username = "firefox-exe"
target_repo = "company-repositories-languages"
orgs = ["amzn", "netflix", "spotify"]

[redis]
enabled = true
addr = "redis:6379"
ttl_minutes = 30

[log]
level = "debug"
pretty = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Username != "firefox-exe" {
		t.Errorf("Username = %q", cfg.Username)
	}
	if cfg.TargetRepo != "company-repositories-languages" {
		t.Errorf("TargetRepo = %q", cfg.TargetRepo)
	}
	if len(cfg.Orgs) != 3 || cfg.Orgs[1] != "netflix" {
		t.Errorf("Orgs = %v", cfg.Orgs)
	}

	// Defaults fill the unset fields.
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.PerPage != 100 {
		t.Errorf("PerPage = %d, want 100", cfg.PerPage)
	}
	if cfg.PageDelay() != 500*time.Millisecond {
		t.Errorf("PageDelay() = %v, want 500ms", cfg.PageDelay())
	}

	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Redis.SnapshotTTL() != 30*time.Minute {
		t.Errorf("SnapshotTTL() = %v, want 30m", cfg.Redis.SnapshotTTL())
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load(missing) error = nil, want error")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Username:   "me",
		TargetRepo: "langs",
		Orgs:       []string{"acme"},
		PerPage:    100,
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing username", mutate: func(c *Config) { c.Username = "" }, expectError: true},
		{name: "missing target repo", mutate: func(c *Config) { c.TargetRepo = "" }, expectError: true},
		{name: "no orgs", mutate: func(c *Config) { c.Orgs = nil }, expectError: true},
		{name: "per_page too large", mutate: func(c *Config) { c.PerPage = 150 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("Validate() error = nil, want error")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestToken(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "ghp_test")

		token, err := Token()
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if token != "ghp_test" {
			t.Errorf("Token() = %q", token)
		}
	})

	t.Run("missing is a fatal configuration error", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")

		_, err := Token()
		if !errors.Is(err, github.ErrMissingToken) {
			t.Fatalf("Token() error = %v, want ErrMissingToken", err)
		}
	})
}
