/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/friendsincode/smartalarm/internal/randomizer"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// KVBackend selects where the play history and learning model live.
type KVBackend string

const (
	KVMemory KVBackend = "memory"
	KVGorm   KVBackend = "gorm"
	KVRedis  KVBackend = "redis"
	// KVTiered reads through redis and writes to both redis and the database.
	KVTiered KVBackend = "tiered"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	DBBackend   DatabaseBackend
	DBDSN       string
	Timezone    string
	Location    *time.Location

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Persistence of the play history and learning model
	KVBackend     KVBackend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// NATS; an empty URL runs the device headless
	NATSURL       string
	NATSToken     string
	NATSPrefix    string
	DeviceTimeout time.Duration

	// Spotify catalog
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyBaseURL      string
	SpotifyTokenURL     string
	SpotifyMarket       string
	SpotifyMaxRetries   int
	SpotifyTimeout      time.Duration

	// Google Calendar; optional
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	GoogleCalendarID   string

	// Radio directory
	RadioDirectoryURL string
	RadioCountry      string

	// Selection tuning
	MusicDBFile           string
	SearchStrategyTimeout time.Duration
	SearchQueryLimit      int
	SearchMaxResults      int
	QuickDetectThreshold  float64
	VarietyMode           bool
	ReplayWindow          time.Duration
	MaxRecentTracks       int
	VarietyBonus          float64
	TopK                  int
	HistoryLimit          int

	// Alarms
	AlarmTickInterval time.Duration
	TriggerQueueSize  int
	FadeIn            time.Duration

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	// Replay window and bonus default from the variety mode; an explicit
	// zero is kept.
	varietyMode := getEnvBoolAny([]string{"SMARTALARM_VARIETY_MODE"}, false)
	variety := randomizer.DefaultConfig()
	if varietyMode {
		variety = randomizer.VarietyConfig()
	}

	cfg := &Config{
		Environment: getEnvAny([]string{"SMARTALARM_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"SMARTALARM_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:    getEnvIntAny([]string{"SMARTALARM_HTTP_PORT", "PORT"}, 8080),
		DBBackend:   DatabaseBackend(getEnvAny([]string{"SMARTALARM_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:       getEnvAny([]string{"SMARTALARM_DB_DSN", "DATABASE_URL"}, ""),
		Timezone:    getEnvAny([]string{"SMARTALARM_TIMEZONE", "TZ"}, "Local"),

		// Tracing configuration
		TracingEnabled:    getEnvBoolAny([]string{"SMARTALARM_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"SMARTALARM_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"SMARTALARM_TRACING_SAMPLE_RATE"}, 1.0),

		KVBackend:     KVBackend(getEnvAny([]string{"SMARTALARM_KV_BACKEND"}, string(KVGorm))),
		RedisAddr:     getEnvAny([]string{"SMARTALARM_REDIS_ADDR", "REDIS_URL"}, "localhost:6379"),
		RedisPassword: getEnvAny([]string{"SMARTALARM_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"SMARTALARM_REDIS_DB"}, 0),
		RedisTTL:      getEnvDurationAny([]string{"SMARTALARM_REDIS_TTL"}, 0),

		NATSURL:       getEnvAny([]string{"SMARTALARM_NATS_URL", "NATS_URL"}, ""),
		NATSToken:     getEnvAny([]string{"SMARTALARM_NATS_TOKEN", "NATS_TOKEN"}, ""),
		NATSPrefix:    getEnvAny([]string{"SMARTALARM_NATS_PREFIX"}, "smartalarm"),
		DeviceTimeout: getEnvDurationAny([]string{"SMARTALARM_DEVICE_TIMEOUT"}, 5*time.Second),

		SpotifyClientID:     getEnvAny([]string{"SMARTALARM_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID"}, ""),
		SpotifyClientSecret: getEnvAny([]string{"SMARTALARM_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET"}, ""),
		SpotifyBaseURL:      getEnvAny([]string{"SMARTALARM_SPOTIFY_BASE_URL"}, ""),
		SpotifyTokenURL:     getEnvAny([]string{"SMARTALARM_SPOTIFY_TOKEN_URL"}, ""),
		SpotifyMarket:       getEnvAny([]string{"SMARTALARM_SPOTIFY_MARKET"}, "US"),
		SpotifyMaxRetries:   getEnvIntAny([]string{"SMARTALARM_SPOTIFY_MAX_RETRIES"}, 3),
		SpotifyTimeout:      getEnvDurationAny([]string{"SMARTALARM_SPOTIFY_TIMEOUT"}, 10*time.Second),

		GoogleClientID:     getEnvAny([]string{"SMARTALARM_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID"}, ""),
		GoogleClientSecret: getEnvAny([]string{"SMARTALARM_GOOGLE_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"}, ""),
		GoogleRefreshToken: getEnvAny([]string{"SMARTALARM_GOOGLE_REFRESH_TOKEN", "GOOGLE_REFRESH_TOKEN"}, ""),
		GoogleCalendarID:   getEnvAny([]string{"SMARTALARM_GOOGLE_CALENDAR_ID"}, "primary"),

		RadioDirectoryURL: getEnvAny([]string{"SMARTALARM_RADIO_DIRECTORY_URL"}, ""),
		RadioCountry:      getEnvAny([]string{"SMARTALARM_RADIO_COUNTRY"}, ""),

		MusicDBFile:           getEnvAny([]string{"SMARTALARM_MUSICDB_FILE"}, ""),
		SearchStrategyTimeout: getEnvDurationAny([]string{"SMARTALARM_SEARCH_STRATEGY_TIMEOUT"}, 8*time.Second),
		SearchQueryLimit:      getEnvIntAny([]string{"SMARTALARM_SEARCH_QUERY_LIMIT"}, 20),
		SearchMaxResults:      getEnvIntAny([]string{"SMARTALARM_SEARCH_MAX_RESULTS"}, 20),
		QuickDetectThreshold:  getEnvFloatAny([]string{"SMARTALARM_QUICK_DETECT_THRESHOLD"}, 60),
		VarietyMode:           varietyMode,
		ReplayWindow:          getEnvDurationAny([]string{"SMARTALARM_REPLAY_WINDOW"}, variety.MinTimeBetweenReplays),
		MaxRecentTracks:       getEnvIntAny([]string{"SMARTALARM_MAX_RECENT_TRACKS"}, variety.MaxRecentTracks),
		VarietyBonus:          getEnvFloatAny([]string{"SMARTALARM_VARIETY_BONUS"}, variety.VarietyBonus),
		TopK:                  getEnvIntAny([]string{"SMARTALARM_TOP_K"}, variety.TopK),
		HistoryLimit:          getEnvIntAny([]string{"SMARTALARM_HISTORY_LIMIT"}, randomizer.DefaultHistoryLimit),

		AlarmTickInterval: getEnvDurationAny([]string{"SMARTALARM_ALARM_TICK_INTERVAL"}, 10*time.Second),
		TriggerQueueSize:  getEnvIntAny([]string{"SMARTALARM_TRIGGER_QUEUE_SIZE"}, 8),
		FadeIn:            getEnvDurationAny([]string{"SMARTALARM_FADE_IN"}, 2*time.Second),
	}


	switch cfg.DBBackend {
	case DatabasePostgres, DatabaseMySQL:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("SMARTALARM_DB_DSN or DATABASE_URL must be provided for %s", cfg.DBBackend)
		}
	case DatabaseSQLite:
		if cfg.DBDSN == "" {
			cfg.DBDSN = "smartalarm.db"
		}
	default:
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	switch cfg.KVBackend {
	case KVMemory, KVGorm, KVRedis, KVTiered:
	default:
		return nil, fmt.Errorf("unsupported kv backend %q", cfg.KVBackend)
	}
	cfg.RedisAddr = strings.TrimPrefix(cfg.RedisAddr, "redis://")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SMARTALARM_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.QuickDetectThreshold < 0 || cfg.QuickDetectThreshold > 100 {
		return nil, fmt.Errorf("SMARTALARM_QUICK_DETECT_THRESHOLD must be within 0-100, got %v", cfg.QuickDetectThreshold)
	}
	if cfg.ReplayWindow < 0 || cfg.VarietyBonus < 0 || cfg.MaxRecentTracks < 0 {
		return nil, fmt.Errorf("SMARTALARM_REPLAY_WINDOW, SMARTALARM_VARIETY_BONUS and SMARTALARM_MAX_RECENT_TRACKS must not be negative")
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("SMARTALARM_HISTORY_LIMIT must be positive")
	}
	if cfg.TriggerQueueSize <= 0 {
		return nil, fmt.Errorf("SMARTALARM_TRIGGER_QUEUE_SIZE must be positive")
	}
	if cfg.FadeIn < 0 {
		return nil, fmt.Errorf("SMARTALARM_FADE_IN must not be negative")
	}

	if (cfg.SpotifyClientID == "") != (cfg.SpotifyClientSecret == "") {
		return nil, fmt.Errorf("SMARTALARM_SPOTIFY_CLIENT_ID and SMARTALARM_SPOTIFY_CLIENT_SECRET must be set together")
	}
	if cfg.GoogleEnabled() && (cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRefreshToken == "") {
		return nil, fmt.Errorf("google calendar needs SMARTALARM_GOOGLE_CLIENT_ID, SMARTALARM_GOOGLE_CLIENT_SECRET and SMARTALARM_GOOGLE_REFRESH_TOKEN")
	}

	if strings.EqualFold(cfg.Environment, "production") {
		if !cfg.SpotifyEnabled() {
			return nil, fmt.Errorf("SMARTALARM_SPOTIFY_CLIENT_ID and SMARTALARM_SPOTIFY_CLIENT_SECRET are required in production")
		}
		if cfg.KVBackend == KVMemory {
			return nil, fmt.Errorf("SMARTALARM_KV_BACKEND=memory loses state on restart and is not allowed in production")
		}
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

// SpotifyEnabled reports whether catalog credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// GoogleEnabled reports whether any Google Calendar setting is present.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" || c.GoogleClientSecret != "" || c.GoogleRefreshToken != ""
}

// NATSEnabled reports whether the device is reached over NATS.
func (c *Config) NATSEnabled() bool {
	return c.NATSURL != ""
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"ENVIRONMENT":         "use SMARTALARM_ENV",
		"TRACING_ENABLED":     "use SMARTALARM_TRACING_ENABLED",
		"OTLP_ENDPOINT":       "use SMARTALARM_OTLP_ENDPOINT",
		"TRACING_SAMPLE_RATE": "use SMARTALARM_TRACING_SAMPLE_RATE",
		"VARIETY_MODE":        "use SMARTALARM_VARIETY_MODE",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvDurationAny returns the first set duration from keys, or def.
// Bare integers are read as seconds.
func getEnvDurationAny(keys []string, def time.Duration) time.Duration {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				return parsed
			}
			if secs, err := strconv.Atoi(v); err == nil {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return def
}
