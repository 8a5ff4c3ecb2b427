// Command streaks fetches MLB hit streaks once and prints them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/rickgao/hitstreak/internal/api"
	"github.com/rickgao/hitstreak/internal/cache"
	"github.com/rickgao/hitstreak/internal/collector"
	"github.com/rickgao/hitstreak/internal/config"
	"github.com/rickgao/hitstreak/internal/filter"
	"github.com/rickgao/hitstreak/internal/history"
	"github.com/rickgao/hitstreak/internal/store"
	"github.com/rickgao/hitstreak/internal/version"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Path to config file." short:"c" type:"path"`
	Plain  bool   `help:"Plain text output even if stdout is a TTY."`
}

// CLI is the top-level command structure.
type CLI struct {
	Globals

	Version   kong.VersionFlag `help:"Show version." short:"V"`
	Fetch     FetchCmd         `cmd:"" help:"Fetch current hit streaks and print them." default:"withargs"`
	History   HistoryCmd       `cmd:"" help:"Show famous hit streaks."`
	Snapshots SnapshotsCmd     `cmd:"" help:"List stored snapshots."`
}

// FetchCmd prints the current leaderboard.
type FetchCmd struct {
	MinStreak int      `help:"Minimum current streak." default:"0"`
	MinLast15 int      `help:"Minimum games with a hit in the last 15." name:"min-last15" default:"0"`
	Query     string   `help:"Search players by name." short:"q"`
	Player    []string `help:"Only show these players (ignored with --query)." short:"p"`
	Team      string   `help:"Team abbreviation." short:"t"`
	Sort      string   `help:"Sort order." enum:"streak,last15,best,avg" default:"streak"`
	Limit     int      `help:"Maximum rows to print." short:"n" default:"25"`
	Fresh     bool     `help:"Ignore any stored snapshot and fetch from the API."`
	JSON      bool     `help:"Print JSON."`
}

// Run executes the fetch command.
func (c *FetchCmd) Run(g *Globals) error {
	opts := filter.Options{
		MinStreak: c.MinStreak,
		MinLast15: c.MinLast15,
		Query:     c.Query,
		Players:   c.Player,
		Team:      c.Team,
		Sort:      c.Sort,
		Limit:     c.Limit,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	cfg, err := config.LoadAndValidate(g.Config)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snapshots, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	client := api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithUserAgent(cfg.API.UserAgent),
	)
	coll := collector.New(collector.Config{
		Season:          cfg.Collector.Season,
		Selection:       cfg.Collector.Selection,
		PlayerLimit:     cfg.Collector.PlayerLimit,
		Concurrency:     cfg.Collector.Concurrency,
		Timeout:         cfg.Collector.Timeout,
		MaxFailureRatio: cfg.Collector.MaxFailureRatio,
	}, client, logger)

	cacheOpts := []cache.Option{
		cache.WithLogger(logger),
		cache.WithFetchTimeout(cfg.Cache.FetchTimeout),
	}
	if snapshots != nil {
		defer snapshots.Close()
		cacheOpts = append(cacheOpts, cache.WithStore(snapshots))
	}
	sc := cache.New(coll, cacheOpts...)
	defer sc.Close(context.Background())

	if !c.Fresh {
		if err := sc.Restore(ctx); err != nil {
			logger.Warn("failed to restore snapshot", "error", err)
		}
	}

	snap, err := sc.GetSnapshot(ctx, cfg.Cache.MaxAge)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	records := filter.Apply(snap.Records, opts)
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	out := newPrinter(os.Stdout, !g.Plain && isTerminal(os.Stdout))
	out.leaderboard(records, snap)
	if leader, ok := snap.Leader(); ok {
		out.comparison(leader, history.Compare(leader.CurrentStreak))
	}
	return out.err
}

// HistoryCmd prints the famous streaks list.
type HistoryCmd struct {
	Streak int `arg:"" optional:"" help:"Compare this streak length with the list."`
}

// Run executes the history command.
func (c *HistoryCmd) Run(g *Globals) error {
	if c.Streak < 0 {
		return fmt.Errorf("history: streak must not be negative")
	}

	out := newPrinter(os.Stdout, !g.Plain && isTerminal(os.Stdout))
	out.famous(history.Famous())
	if c.Streak > 0 {
		out.streakComparison(history.Compare(c.Streak))
	}
	return out.err
}

// SnapshotsCmd lists stored snapshots.
type SnapshotsCmd struct {
	Limit int `help:"Maximum snapshots to list." short:"n" default:"20"`
}

// Run executes the snapshots command.
func (c *SnapshotsCmd) Run(g *Globals) error {
	cfg, err := config.LoadAndValidate(g.Config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snapshots, err := store.Open(ctx, cfg.Storage, cfg.Log.NewLogger(io.Discard))
	if err != nil {
		return fmt.Errorf("snapshots: %w", err)
	}
	if snapshots == nil {
		return fmt.Errorf("snapshots: storage is disabled (storage.driver is %q)", cfg.Storage.Driver)
	}
	defer snapshots.Close()

	infos, err := snapshots.List(ctx, c.Limit)
	if err != nil {
		return fmt.Errorf("snapshots: %w", err)
	}

	out := newPrinter(os.Stdout, !g.Plain && isTerminal(os.Stdout))
	out.snapshots(infos)
	return out.err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("streaks"),
		kong.Description("MLB hit streak leaderboard."),
		kong.Vars{"version": version.String()},
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
