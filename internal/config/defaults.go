package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL          = "https://statsapi.mlb.com/api/v1"
	DefaultUserAgent        = "hitstreak/1"
	DefaultAPITimeout       = 10 * time.Second
	DefaultMaxRetries       = 2
	DefaultRetryBackoff     = 500 * time.Millisecond
	DefaultSelection        = "hits"
	DefaultPlayerLimit      = 40
	DefaultConcurrency      = 8
	DefaultGameLogTimeout   = 5 * time.Second
	DefaultMaxFailureRatio  = 0.25
	DefaultMaxAge           = time.Hour
	DefaultFetchTimeout     = 2 * time.Minute
	DefaultStorageDriver    = DriverNone
	DefaultSQLitePath       = "hitstreak.db"
	DefaultKeep             = 48
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 4
	DefaultMinConns         = 1
	DefaultHTTPAddr         = ":8080"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultMixedPlayerLimit = 100
)

// ApplyDefaults fills unset fields with default values.
func (c *Config) ApplyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Collector defaults
	if c.Collector.Selection == "" {
		c.Collector.Selection = DefaultSelection
	}
	if c.Collector.PlayerLimit == 0 {
		c.Collector.PlayerLimit = DefaultPlayerLimit
		if c.Collector.Selection == "mixed" {
			c.Collector.PlayerLimit = DefaultMixedPlayerLimit
		}
	}
	if c.Collector.Concurrency == 0 {
		c.Collector.Concurrency = DefaultConcurrency
	}
	if c.Collector.Timeout == 0 {
		c.Collector.Timeout = DefaultGameLogTimeout
	}
	if c.Collector.MaxFailureRatio == 0 {
		c.Collector.MaxFailureRatio = DefaultMaxFailureRatio
	}

	// Cache defaults
	if c.Cache.MaxAge == 0 {
		c.Cache.MaxAge = DefaultMaxAge
	}
	if c.Cache.FetchTimeout == 0 {
		c.Cache.FetchTimeout = DefaultFetchTimeout
	}

	// Storage defaults
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = DefaultSQLitePath
	}
	if c.Storage.Keep == 0 {
		c.Storage.Keep = DefaultKeep
	}
	applyDBDefaults(&c.Storage.Postgres)

	// HTTP defaults
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
