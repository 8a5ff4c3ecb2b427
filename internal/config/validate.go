package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if !slices.Contains([]string{"hits", "mixed"}, c.Collector.Selection) {
		return fmt.Errorf("collector.selection must be hits or mixed, got %q", c.Collector.Selection)
	}
	if c.Collector.PlayerLimit < 1 {
		return errors.New("collector.player_limit must be >= 1")
	}
	if c.Collector.Concurrency < 1 {
		return errors.New("collector.concurrency must be >= 1")
	}
	if c.Collector.MaxFailureRatio < 0 || c.Collector.MaxFailureRatio > 1 {
		return fmt.Errorf("collector.max_failure_ratio must be between 0 and 1, got %v", c.Collector.MaxFailureRatio)
	}

	if c.Cache.MaxAge < 0 {
		return errors.New("cache.max_age must be >= 0")
	}
	if c.Cache.FetchTimeout <= 0 {
		return errors.New("cache.fetch_timeout must be > 0")
	}

	switch c.Storage.Driver {
	case DriverNone:
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required")
		}
		if c.Storage.Keep < 1 {
			return errors.New("storage.keep must be >= 1")
		}
	case DriverPostgres:
		if err := c.Storage.Postgres.validate("storage.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage.driver must be none, sqlite, or postgres, got %q", c.Storage.Driver)
	}

	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
