package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the meter name used for all instruments.
const InstrumentationName = "github.com/rickgao/hitstreak"

// Meter returns the meter from the global provider.
func Meter() metric.Meter {
	return otel.GetMeterProvider().Meter(InstrumentationName)
}

// Cache holds the snapshot cache instruments.
// A nil *Cache records nothing.
type Cache struct {
	lookups       metric.Int64Counter
	fetches       metric.Int64Counter
	fetchDuration metric.Float64Histogram
	records       metric.Int64Gauge
}

// Lookup outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeStale = "stale" // Fetch failed, previous snapshot served
	OutcomeEmpty = "empty" // Fetch failed, nothing to serve
)

// NewCache creates the cache instruments on m.
func NewCache(m metric.Meter) (*Cache, error) {
	var (
		c   Cache
		err error
	)

	c.lookups, err = m.Int64Counter(
		"cache.lookups",
		metric.WithDescription("The number of snapshot lookups, by outcome."),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	c.fetches, err = m.Int64Counter(
		"cache.fetches",
		metric.WithDescription("The number of upstream fetch cycles, by result."),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	c.fetchDuration, err = m.Float64Histogram(
		"cache.fetch.duration",
		metric.WithDescription("The time taken by upstream fetch cycles."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	c.records, err = m.Int64Gauge(
		"cache.records",
		metric.WithDescription("The number of records in the current snapshot."),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Lookup records a GetSnapshot outcome.
func (c *Cache) Lookup(ctx context.Context, outcome string) {
	if c == nil {
		return
	}
	c.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Fetch records a completed fetch cycle.
func (c *Cache) Fetch(ctx context.Context, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := attribute.String("result", "ok")
	if err != nil {
		result = attribute.String("result", "error")
	}
	c.fetches.Add(ctx, 1, metric.WithAttributes(result))
	c.fetchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(result))
}

// Records records the size of the current snapshot.
func (c *Cache) Records(ctx context.Context, n int) {
	if c == nil {
		return
	}
	c.records.Record(ctx, int64(n))
}

// Live holds the live-update hub instruments.
// A nil *Live records nothing.
type Live struct {
	clients    metric.Int64UpDownCounter
	broadcasts metric.Int64Counter
}

// NewLive creates the live hub instruments on m.
func NewLive(m metric.Meter) (*Live, error) {
	var (
		l   Live
		err error
	)

	l.clients, err = m.Int64UpDownCounter(
		"live.clients",
		metric.WithDescription("The number of connected live-update clients."),
		metric.WithUnit("{client}"),
	)
	if err != nil {
		return nil, err
	}

	l.broadcasts, err = m.Int64Counter(
		"live.broadcasts",
		metric.WithDescription("The number of events broadcast to live-update clients."),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// ClientConnected adjusts the connected client count by delta.
func (l *Live) ClientConnected(ctx context.Context, delta int) {
	if l == nil {
		return
	}
	l.clients.Add(ctx, int64(delta))
}

// Broadcast records one broadcast event.
func (l *Live) Broadcast(ctx context.Context) {
	if l == nil {
		return
	}
	l.broadcasts.Add(ctx, 1)
}
