package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: http://localhost:9999/api/v1
collector:
  selection: mixed
  player_limit: 60
cache:
  max_age: 5m
storage:
  driver: postgres
  postgres:
    host: localhost
    port: 5432
    name: streaks
    user: testuser
    password: testpass
http:
  allowed_origins:
    - http://localhost:3000
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:9999/api/v1" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://localhost:9999/api/v1")
	}
	if cfg.Collector.Selection != "mixed" {
		t.Errorf("Collector.Selection = %q, want %q", cfg.Collector.Selection, "mixed")
	}
	if cfg.Cache.MaxAge != 5*time.Minute {
		t.Errorf("Cache.MaxAge = %v, want %v", cfg.Cache.MaxAge, 5*time.Minute)
	}
	if cfg.Storage.Postgres.Host != "localhost" {
		t.Errorf("Storage.Postgres.Host = %q, want %q", cfg.Storage.Postgres.Host, "localhost")
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("HTTP.AllowedOrigins = %v, want [http://localhost:3000]", cfg.HTTP.AllowedOrigins)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
storage:
  driver: postgres
  postgres:
    host: localhost
    name: streaks
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Postgres.Password != "secret123" {
		t.Errorf("Storage.Postgres.Password = %q, want %q", cfg.Storage.Postgres.Password, "secret123")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("STREAKS_CACHE_MAX_AGE", "90s")
	t.Setenv("STREAKS_STORAGE_POSTGRES_PASSWORD", "fromenv")
	t.Setenv("STREAKS_HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	yaml := `
cache:
  max_age: 1h
storage:
  postgres:
    password: fromfile
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cache.MaxAge != 90*time.Second {
		t.Errorf("Cache.MaxAge = %v, want %v", cfg.Cache.MaxAge, 90*time.Second)
	}
	if cfg.Storage.Postgres.Password != "fromenv" {
		t.Errorf("Storage.Postgres.Password = %q, want %q", cfg.Storage.Postgres.Password, "fromenv")
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("HTTP.AllowedOrigins = %v, want 2 entries", cfg.HTTP.AllowedOrigins)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("STREAKS_HTTP_ADDR", ":9000")

	cfg, err := LoadAndValidate("")
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, ":9000")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "read config file") {
		t.Errorf("error = %v, want read config file error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "log:\n  level: debug\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("API.Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Collector.PlayerLimit != DefaultPlayerLimit {
		t.Errorf("Collector.PlayerLimit = %d, want default %d", cfg.Collector.PlayerLimit, DefaultPlayerLimit)
	}
	if cfg.Cache.MaxAge != DefaultMaxAge {
		t.Errorf("Cache.MaxAge = %v, want default %v", cfg.Cache.MaxAge, DefaultMaxAge)
	}
	if cfg.Storage.Driver != DriverNone {
		t.Errorf("Storage.Driver = %q, want default %q", cfg.Storage.Driver, DriverNone)
	}
	if cfg.Storage.Postgres.Port != DefaultDBPort {
		t.Errorf("Storage.Postgres.Port = %d, want default %d", cfg.Storage.Postgres.Port, DefaultDBPort)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestApplyDefaultsMixedSelection(t *testing.T) {
	cfg := Config{Collector: CollectorConfig{Selection: "mixed"}}
	cfg.ApplyDefaults()

	if cfg.Collector.PlayerLimit != DefaultMixedPlayerLimit {
		t.Errorf("Collector.PlayerLimit = %d, want %d", cfg.Collector.PlayerLimit, DefaultMixedPlayerLimit)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			modify:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "unknown selection",
			modify:  func(c *Config) { c.Collector.Selection = "random" },
			wantErr: `collector.selection must be hits or mixed, got "random"`,
		},
		{
			name:    "failure ratio out of range",
			modify:  func(c *Config) { c.Collector.MaxFailureRatio = 1.5 },
			wantErr: "collector.max_failure_ratio must be between 0 and 1, got 1.5",
		},
		{
			name:    "negative max age",
			modify:  func(c *Config) { c.Cache.MaxAge = -time.Second },
			wantErr: "cache.max_age must be >= 0",
		},
		{
			name:    "unknown storage driver",
			modify:  func(c *Config) { c.Storage.Driver = "redis" },
			wantErr: `storage.driver must be none, sqlite, or postgres, got "redis"`,
		},
		{
			name:    "missing postgres host",
			modify:  func(c *Config) { c.Storage.Driver = DriverPostgres },
			wantErr: "storage.postgres.host is required",
		},
		{
			name: "missing postgres password",
			modify: func(c *Config) {
				c.Storage.Driver = DriverPostgres
				c.Storage.Postgres.Host = "localhost"
				c.Storage.Postgres.Name = "db"
				c.Storage.Postgres.User = "user"
			},
			wantErr: "storage.postgres.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			modify: func(c *Config) {
				c.Storage.Driver = DriverPostgres
				c.Storage.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "storage.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "sqlite without path",
			modify:  func(c *Config) { c.Storage.Driver = DriverSQLite; c.Storage.SQLitePath = "" },
			wantErr: "storage.sqlite_path is required",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: `log.level must be debug, info, warn, or error, got "verbose"`,
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: `log.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("output = %s, want JSON warn record", out)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
