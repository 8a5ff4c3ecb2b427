package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/hitstreak/internal/api"
	"github.com/rickgao/hitstreak/internal/cache"
	"github.com/rickgao/hitstreak/internal/model"
)

// Selection strategies.
const (
	SelectHits  = "hits"  // Top players by season hits
	SelectMixed = "mixed" // 60% by hits, 30% by average, 10% random
)

// StatsSource is the subset of the MLB Stats API the collector needs.
type StatsSource interface {
	GetSeasonHitting(ctx context.Context, opts api.SeasonHittingOptions) (*api.SeasonHittingResponse, error)
	GetGameLog(ctx context.Context, playerID, season int) (*api.GameLogResponse, error)
}

// Config holds collector configuration.
type Config struct {
	Season          int           // 0 = current season
	Selection       string        // SelectHits or SelectMixed
	PlayerLimit     int           // Players to evaluate (default: 40)
	Concurrency     int           // Max concurrent game log requests (default: 8)
	Timeout         time.Duration // Per game log timeout (default: 5s)
	MaxFailureRatio float64       // Share of game logs allowed to fail (default: 0.25)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Selection:       SelectHits,
		PlayerLimit:     40,
		Concurrency:     8,
		Timeout:         5 * time.Second,
		MaxFailureRatio: 0.25,
	}
}

// Option configures a Collector.
type Option func(*Collector)

// WithRand sets the random source used by the mixed selection.
func WithRand(r *rand.Rand) Option {
	return func(c *Collector) {
		c.rand = r
	}
}

// Collector fetches season stats and game logs and turns them into streak records.
type Collector struct {
	cfg    Config
	client StatsSource
	logger *slog.Logger
	rand   *rand.Rand
}

// New creates a new Collector.
func New(cfg Config, client StatsSource, logger *slog.Logger, opts ...Option) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Selection == "" {
		cfg.Selection = def.Selection
	}
	if cfg.PlayerLimit <= 0 {
		cfg.PlayerLimit = def.PlayerLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	c := &Collector{
		cfg:    cfg,
		client: client,
		logger: logger,
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchStreaks runs one fetch cycle and returns records sorted for display.
// It returns an error wrapping cache.ErrParseFailed when any body is malformed,
// and cache.ErrFetchFailed for transport failures.
func (c *Collector) FetchStreaks(ctx context.Context) ([]model.PlayerStreakRecord, error) {
	start := time.Now()

	resp, err := c.client.GetSeasonHitting(ctx, api.SeasonHittingOptions{Season: c.cfg.Season})
	if err != nil {
		return nil, classify("fetch season stats", err)
	}

	splits := resp.Splits()
	candidates := make([]model.PlayerStreakRecord, 0, len(splits))
	for i := range splits {
		rec, err := splits[i].ToRecord()
		if err != nil {
			return nil, classify("convert season stats", err)
		}
		candidates = append(candidates, rec)
	}

	selected := c.selectPlayers(candidates)
	if len(selected) == 0 {
		c.logger.Info("no players to evaluate", "season_splits", len(splits))
		return []model.PlayerStreakRecord{}, nil
	}

	results := make([]*model.PlayerStreakRecord, len(selected))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i, rec := range selected {
		g.Go(func() error {
			evaluated, err := c.evaluate(gctx, rec)
			if err != nil {
				if errors.Is(err, api.ErrMalformedResponse) || ctx.Err() != nil {
					return err
				}
				c.logger.Warn("dropping player",
					"player_id", rec.PlayerID,
					"name", rec.Name,
					"error", err,
				)
				failed.Add(1)
				return nil
			}
			results[i] = &evaluated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, classify("fetch game logs", err)
	}

	nFailed := int(failed.Load())
	if float64(nFailed)/float64(len(selected)) > c.cfg.MaxFailureRatio {
		return nil, fmt.Errorf("fetch game logs: %w: %d of %d failed", cache.ErrFetchFailed, nFailed, len(selected))
	}

	records := make([]model.PlayerStreakRecord, 0, len(selected)-nFailed)
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	model.SortRecords(records)

	c.logger.Info("fetch cycle complete",
		"candidates", len(candidates),
		"selected", len(selected),
		"records", len(records),
		"failed", nFailed,
		"duration", time.Since(start),
	)

	return records, nil
}

// evaluate fills in streak fields for one player from their game log.
func (c *Collector) evaluate(ctx context.Context, rec model.PlayerStreakRecord) (model.PlayerStreakRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.GetGameLog(ctx, rec.PlayerID, c.cfg.Season)
	if err != nil {
		return rec, err
	}

	games, err := api.GameResults(resp)
	if err != nil {
		return rec, fmt.Errorf("game log %d: %w", rec.PlayerID, err)
	}

	s := ComputeStreaks(games)
	rec.CurrentStreak = s.Current
	rec.SeasonBest = s.Best
	rec.GamesWithHit = s.GamesWithHit
	rec.Last15 = s.Last15
	rec.GamesLogged = s.Games

	return rec, nil
}

// classify wraps err with the cache error kind it belongs to.
func classify(op string, err error) error {
	kind := cache.ErrFetchFailed
	if errors.Is(err, api.ErrMalformedResponse) {
		kind = cache.ErrParseFailed
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
