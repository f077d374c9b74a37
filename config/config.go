// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Places    PlacesConfig
	OpenAI    OpenAIConfig
	Analytics AnalyticsConfig
	Search    SearchConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// RedisConfig holds cache backend configuration. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL string
}

// PlacesConfig holds Google Places API configuration
type PlacesConfig struct {
	APIKey string
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// AnalyticsConfig holds product analytics configuration
type AnalyticsConfig struct {
	PostHogAPIKey string
	PostHogHost   string
}

// SearchConfig holds cache and pacing tunables for the search orchestrator
type SearchConfig struct {
	CacheTTL            time.Duration
	ProviderCallSpacing time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string // "text" or "json"
	Level  string
}

// MetricsConfig holds Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	// Optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getString("PORT", "8080"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL: getString("REDIS_URL", ""),
		},
		Places: PlacesConfig{
			APIKey: getString("GOOGLE_PLACES_API_KEY", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey: getString("OPENAI_API_KEY", ""),
			Model:  getString("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Analytics: AnalyticsConfig{
			PostHogAPIKey: getString("POSTHOG_API_KEY", ""),
			PostHogHost:   getString("POSTHOG_HOST", "https://us.i.posthog.com"),
		},
		Search: SearchConfig{
			CacheTTL:            getDuration("SEARCH_CACHE_TTL", 7*24*time.Hour),
			ProviderCallSpacing: getDuration("PROVIDER_CALL_SPACING", 100*time.Millisecond),
		},
		Log: LogConfig{
			Format: getString("LOG_FORMAT", "text"),
			Level:  getString("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Enabled:  getBool("METRICS_ENABLED", false),
			Endpoint: getString("METRICS_ENDPOINT", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Places.APIKey == "" {
		return fmt.Errorf("GOOGLE_PLACES_API_KEY is required")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	if c.Search.ProviderCallSpacing < 0 {
		return fmt.Errorf("PROVIDER_CALL_SPACING must not be negative")
	}
	return nil
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
