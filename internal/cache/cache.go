package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/hitstreak/internal/metrics"
	"github.com/rickgao/hitstreak/internal/model"
	"github.com/rickgao/hitstreak/internal/store"
)

// persistTimeout bounds saving a snapshot to the store.
const persistTimeout = 30 * time.Second

// snapshotKey is the singleflight key shared by every fetch.
const snapshotKey = "snapshot"

// Fetcher produces a full set of streak records. The cache sorts them into
// display order before storing, so Snapshot.Leader is the first record.
type Fetcher interface {
	FetchStreaks(ctx context.Context) ([]model.PlayerStreakRecord, error)
}

// FetcherFunc is a function adapter for Fetcher.
type FetcherFunc func(ctx context.Context) ([]model.PlayerStreakRecord, error)

func (f FetcherFunc) FetchStreaks(ctx context.Context) ([]model.PlayerStreakRecord, error) {
	return f(ctx)
}

// fetchOutcome is the result of one shared fetch.
type fetchOutcome struct {
	snap  model.Snapshot
	gen   uint64 // Generation current when the fetch started
	stale bool   // Fetch failed and snap is the previous snapshot
}

// Cache holds the current snapshot and refreshes it lazily.
type Cache struct {
	fetcher      Fetcher
	clock        clockwork.Clock
	logger       *slog.Logger
	fetchTimeout time.Duration
	store        store.SnapshotStore
	listeners    []func(model.Snapshot)
	metrics      *metrics.Cache

	group singleflight.Group
	wg    sync.WaitGroup // In-flight fetches and saves

	mu      sync.RWMutex
	snap    *model.Snapshot
	snapGen uint64 // Generation snap was fetched in
	gen     uint64 // Bumped by Invalidate
	closed  bool
}

// New creates a new Cache around fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:      fetcher,
		clock:        clockwork.NewRealClock(),
		logger:       slog.Default(),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSnapshot returns the current snapshot if it is no older than maxAge and
// has not been invalidated. Otherwise it fetches a new one, sharing the fetch
// with any concurrent callers.
//
// At most one fetch runs at a time. A caller that invalidated the cache while
// a fetch was in flight waits for it, then shares a single follow-up fetch
// with every other caller in the same position.
//
// If the fetch fails the previous snapshot is returned with a nil error. If
// there is no previous snapshot the error wraps ErrNoDataAvailable and the
// fetch error.
//
// A cancelled ctx stops the caller waiting; the fetch itself continues for
// other callers, bounded by the fetch timeout.
func (c *Cache) GetSnapshot(ctx context.Context, maxAge time.Duration) (model.Snapshot, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return model.Snapshot{}, ErrClosed
	}
	if c.freshLocked(maxAge) {
		snap := *c.snap
		c.mu.RUnlock()
		c.metrics.Lookup(ctx, metrics.OutcomeHit)
		return snap, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	for first := true; ; first = false {
		if !first {
			// A follow-up may already have landed while this caller was
			// woken from the previous fetch.
			if snap, ok := c.coveredSince(gen); ok {
				c.metrics.Lookup(ctx, metrics.OutcomeMiss)
				return snap, nil
			}
		}

		ch := c.group.DoChan(snapshotKey, func() (any, error) {
			return c.refresh(context.WithoutCancel(ctx))
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return model.Snapshot{}, ctx.Err()
		}

		out := res.Val.(fetchOutcome)
		if out.gen < gen {
			// The fetch started before this caller's Invalidate.
			continue
		}

		if res.Err != nil {
			if errors.Is(res.Err, ErrNoDataAvailable) {
				c.metrics.Lookup(ctx, metrics.OutcomeEmpty)
			}
			return model.Snapshot{}, res.Err
		}

		outcome := metrics.OutcomeMiss
		if out.stale {
			outcome = metrics.OutcomeStale
		}
		c.metrics.Lookup(ctx, outcome)
		return out.snap, nil
	}
}

// Invalidate forces the next GetSnapshot to fetch regardless of age.
// The current snapshot is kept so it can still be served if that fetch fails.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.logger.Debug("snapshot invalidated", "generation", gen)
}

// Refresh invalidates the cache and fetches a new snapshot.
func (c *Cache) Refresh(ctx context.Context) (model.Snapshot, error) {
	c.Invalidate()
	return c.GetSnapshot(ctx, 0)
}

// Current returns the stored snapshot without fetching, regardless of age.
func (c *Cache) Current() (model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap == nil {
		return model.Snapshot{}, false
	}
	return *c.snap, true
}

// Restore seeds an empty cache with the latest stored snapshot.
// The snapshot keeps its original fetch time, so it is refetched once older
// than the caller's max age. A missing store or empty store is not an error.
func (c *Cache) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	snap, err := c.store.Latest(ctx)
	if errors.Is(err, store.ErrNotFound) {
		c.logger.Info("no stored snapshot to restore")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	snap.Source = model.SourceStore

	c.mu.Lock()
	if c.snap != nil {
		c.mu.Unlock()
		return nil
	}
	c.snap = &snap
	c.snapGen = c.gen
	c.mu.Unlock()

	c.metrics.Records(ctx, len(snap.Records))
	c.logger.Info("snapshot restored",
		"snapshot_id", snap.ID,
		"fetched_at", snap.FetchedAt,
		"records", len(snap.Records),
	)
	return nil
}

// Close rejects further calls and waits for in-flight fetches and saves.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("snapshot cache closed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// freshLocked reports whether the stored snapshot can be served. c.mu must be held.
func (c *Cache) freshLocked(maxAge time.Duration) bool {
	if c.snap == nil || c.snapGen != c.gen {
		return false
	}
	return c.clock.Since(c.snap.FetchedAt) <= maxAge
}

// coveredSince returns the stored snapshot if it was fetched in generation gen
// or later.
func (c *Cache) coveredSince(gen uint64) (model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap == nil || c.snapGen < gen {
		return model.Snapshot{}, false
	}
	return *c.snap, true
}

// refresh runs one fetch in the current generation. It is only called through
// the singleflight group, so fetches never overlap.
func (c *Cache) refresh(ctx context.Context) (fetchOutcome, error) {
	c.mu.Lock()
	gen := c.gen
	if c.closed {
		c.mu.Unlock()
		return fetchOutcome{gen: gen}, ErrClosed
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := c.clock.Now()
	records, err := c.fetcher.FetchStreaks(fetchCtx)
	c.metrics.Fetch(ctx, c.clock.Since(start), err)

	if err != nil {
		prev, fallbackErr := c.fallback(err)
		return fetchOutcome{snap: prev, gen: gen, stale: fallbackErr == nil}, fallbackErr
	}

	records = slices.Clone(records)
	if records == nil {
		records = []model.PlayerStreakRecord{}
	}
	model.SortRecords(records)

	snap := model.NewSnapshot(records, c.clock.Now())

	c.mu.Lock()
	if c.snap != nil && gen < c.snapGen {
		// A snapshot from a later generation already landed.
		current := *c.snap
		c.mu.Unlock()
		return fetchOutcome{snap: current, gen: gen}, nil
	}
	c.snap = &snap
	c.snapGen = gen
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.persist(ctx, snap)
	}()

	c.metrics.Records(ctx, len(snap.Records))
	c.logger.Info("snapshot refreshed",
		"snapshot_id", snap.ID,
		"generation", gen,
		"records", len(snap.Records),
		"duration", c.clock.Since(start),
	)

	for _, fn := range c.listeners {
		fn(snap)
	}

	return fetchOutcome{snap: snap, gen: gen}, nil
}

// fallback serves the previous snapshot after a failed fetch.
func (c *Cache) fallback(err error) (model.Snapshot, error) {
	prev, ok := c.Current()
	if !ok {
		c.logger.Error("fetch failed with no snapshot to serve", "error", err)
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrNoDataAvailable, err)
	}

	c.logger.Warn("fetch failed, serving previous snapshot",
		"error", err,
		"snapshot_id", prev.ID,
		"age", prev.Age(c.clock.Now()),
	)
	return prev, nil
}

// persist saves snap to the store. Failures are logged.
func (c *Cache) persist(ctx context.Context, snap model.Snapshot) {
	if c.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := c.store.Save(ctx, snap); err != nil {
		c.logger.Warn("failed to persist snapshot",
			"snapshot_id", snap.ID,
			"error", err,
		)
	}
}
