package config

import "time"

// Config is the root configuration for the dashboard and CLI.
type Config struct {
	API       APIConfig       `yaml:"api" envPrefix:"API_"`
	Collector CollectorConfig `yaml:"collector" envPrefix:"COLLECTOR_"`
	Cache     CacheConfig     `yaml:"cache" envPrefix:"CACHE_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	HTTP      HTTPConfig      `yaml:"http" envPrefix:"HTTP_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

// APIConfig holds MLB Stats API settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" env:"BASE_URL"`
	UserAgent    string        `yaml:"user_agent" env:"USER_AGENT"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries   int           `yaml:"max_retries" env:"MAX_RETRIES"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"RETRY_BACKOFF"`
}

// CollectorConfig holds fetch cycle settings.
type CollectorConfig struct {
	Season          int           `yaml:"season" env:"SEASON"` // 0 = current season
	Selection       string        `yaml:"selection" env:"SELECTION"`
	PlayerLimit     int           `yaml:"player_limit" env:"PLAYER_LIMIT"`
	Concurrency     int           `yaml:"concurrency" env:"CONCURRENCY"`
	Timeout         time.Duration `yaml:"timeout" env:"TIMEOUT"` // Per game log
	MaxFailureRatio float64       `yaml:"max_failure_ratio" env:"MAX_FAILURE_RATIO"`
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	MaxAge       time.Duration `yaml:"max_age" env:"MAX_AGE"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
}

// Storage drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig selects where snapshots are persisted.
type StorageConfig struct {
	Driver     string   `yaml:"driver" env:"DRIVER"`
	SQLitePath string   `yaml:"sqlite_path" env:"SQLITE_PATH"`
	Keep       int      `yaml:"keep" env:"KEEP"` // Snapshots retained by the SQLite store
	Postgres   DBConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Name     string `yaml:"name" env:"NAME"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxConns int    `yaml:"max_conns" env:"MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"MIN_CONNS"`
}

// HTTPConfig holds dashboard server settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // text, json
}
