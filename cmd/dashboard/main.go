package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/hitstreak/internal/api"
	"github.com/rickgao/hitstreak/internal/cache"
	"github.com/rickgao/hitstreak/internal/collector"
	"github.com/rickgao/hitstreak/internal/config"
	"github.com/rickgao/hitstreak/internal/live"
	"github.com/rickgao/hitstreak/internal/metrics"
	"github.com/rickgao/hitstreak/internal/store"
	"github.com/rickgao/hitstreak/internal/version"
	"github.com/rickgao/hitstreak/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("dashboard failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}

	// Set up structured logging
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting dashboard",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open snapshot storage
	snapshots, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	// Create API client and collector
	apiClient := api.NewClient(
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
	}, apiClient, logger)

	// Instruments
	meter := metrics.Meter()
	cacheMetrics, err := metrics.NewCache(meter)
	if err != nil {
		return err
	}
	liveMetrics, err := metrics.NewLive(meter)
	if err != nil {
		return err
	}

	hub := live.NewHub(logger, liveMetrics, cfg.HTTP.AllowedOrigins)
	go hub.Run(ctx)

	cacheOpts := []cache.Option{
		cache.WithLogger(logger),
		cache.WithFetchTimeout(cfg.Cache.FetchTimeout),
		cache.WithMetrics(cacheMetrics),
		cache.WithListener(hub.Publish),
	}
	if snapshots != nil {
		cacheOpts = append(cacheOpts, cache.WithStore(snapshots))
	}

	snapshotCache := cache.New(coll, cacheOpts...)
	if err := snapshotCache.Restore(ctx); err != nil {
		logger.Warn("failed to restore snapshot", "error", err)
	}

	webOpts := []web.Option{
		web.WithLogger(logger),
		web.WithLive(hub),
	}
	if snapshots != nil {
		webOpts = append(webOpts, web.WithStore(snapshots))
	}
	server := web.NewServer(web.Config{
		MaxAge:         cfg.Cache.MaxAge,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, snapshotCache, webOpts...)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("dashboard running",
		"max_age", cfg.Cache.MaxAge,
		"selection", cfg.Collector.Selection,
		"player_limit", cfg.Collector.PlayerLimit,
	)

	// Wait for shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("http server error", "error", err)
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}
	if err := snapshotCache.Close(shutdownCtx); err != nil {
		logger.Warn("snapshot cache shutdown", "error", err)
	}

	logger.Info("dashboard stopped")
	return nil
}
