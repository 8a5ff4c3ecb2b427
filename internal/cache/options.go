package cache

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rickgao/hitstreak/internal/metrics"
	"github.com/rickgao/hitstreak/internal/model"
	"github.com/rickgao/hitstreak/internal/store"
)

// DefaultFetchTimeout bounds a single fetch cycle.
const DefaultFetchTimeout = 2 * time.Minute

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used for snapshot timestamps and age checks.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFetchTimeout bounds each fetch cycle.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithStore persists every new snapshot to s and enables Restore.
func WithStore(s store.SnapshotStore) Option {
	return func(c *Cache) {
		c.store = s
	}
}

// WithListener registers fn to be called after each new snapshot is stored.
func WithListener(fn func(model.Snapshot)) Option {
	return func(c *Cache) {
		c.listeners = append(c.listeners, fn)
	}
}

// WithMetrics records lookups and fetches on m.
func WithMetrics(m *metrics.Cache) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}
