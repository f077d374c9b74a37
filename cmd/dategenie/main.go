// Package main is the entry point for the venue search server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/CelebrityPunks/date-genie/config"
	"github.com/CelebrityPunks/date-genie/internal/analytics"
	"github.com/CelebrityPunks/date-genie/internal/cache"
	"github.com/CelebrityPunks/date-genie/internal/pitch"
	"github.com/CelebrityPunks/date-genie/internal/places"
	"github.com/CelebrityPunks/date-genie/internal/search"
	"github.com/CelebrityPunks/date-genie/internal/server"
	"github.com/CelebrityPunks/date-genie/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Config errors before the logger is configured still need to be visible,
	// so load config first with the default logger and reconfigure after.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log))

	slog.Info("starting dategenie",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	store := newStore(cfg.Redis)
	defer store.Close()

	placesClient := places.New(cfg.Places.APIKey)

	var textProvider pitch.TextProvider
	if cfg.OpenAI.APIKey != "" {
		openaiClient := pitch.NewOpenAIClient(cfg.OpenAI.APIKey)
		openaiClient.SetModel(cfg.OpenAI.Model)
		textProvider = openaiClient
		slog.Info("pitch generation enabled", "model", cfg.OpenAI.Model)
	} else {
		slog.Info("OPENAI_API_KEY not set, serving fallback pitches")
	}
	pitchGenerator := pitch.New(store, textProvider)

	analyticsClient := analytics.New(cfg.Analytics.PostHogAPIKey)
	if analyticsClient.Enabled() {
		analyticsClient.SetEndpoint(strings.TrimRight(cfg.Analytics.PostHogHost, "/") + "/capture/")
		slog.Info("analytics enabled", "host", cfg.Analytics.PostHogHost)
	} else {
		slog.Info("analytics disabled")
	}

	orchestrator := search.NewWithOptions(store, placesClient, pitchGenerator, analyticsClient, search.Options{
		CacheTTL:            cfg.Search.CacheTTL,
		ProviderCallSpacing: cfg.Search.ProviderCallSpacing,
	})

	serverCfg := &server.Config{
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
	}
	srv := server.New(orchestrator, serverCfg)

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	slog.Info("starting server", "address", addr)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}

// newLogger builds the process logger: colorized text for local runs, JSON
// for log aggregation.
func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
}

// newStore connects to Redis when configured, otherwise falls back to the
// in-process store. The fallback is fine for a single instance; multi-instance
// deployments want Redis so instances share one cache.
func newStore(cfg config.RedisConfig) cache.Store {
	if cfg.URL == "" {
		slog.Info("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryStore()
	}

	store, err := cache.NewRedisStore(cache.RedisConfig{URL: cfg.URL})
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	return store
}
