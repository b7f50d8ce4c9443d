/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"testing"
	"time"

	"github.com/friendsincode/smartalarm/internal/randomizer"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SMARTALARM_DB_BACKEND", "")
	t.Setenv("SMARTALARM_DB_DSN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SMARTALARM_VARIETY_MODE", "")
	t.Setenv("SMARTALARM_REPLAY_WINDOW", "")
	t.Setenv("SMARTALARM_VARIETY_BONUS", "")
	t.Setenv("SMARTALARM_HISTORY_LIMIT", "")
	t.Setenv("SMARTALARM_FADE_IN", "")
	t.Setenv("SMARTALARM_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBBackend != DatabaseSQLite || cfg.DBDSN != "smartalarm.db" {
		t.Errorf("db = %s %q, want sqlite smartalarm.db", cfg.DBBackend, cfg.DBDSN)
	}
	if cfg.KVBackend != KVGorm {
		t.Errorf("kv backend = %s, want gorm", cfg.KVBackend)
	}
	if cfg.ReplayWindow != 4*time.Hour || cfg.VarietyBonus != 50 {
		t.Errorf("randomizer = %v/%v, want 4h/50", cfg.ReplayWindow, cfg.VarietyBonus)
	}
	if cfg.HistoryLimit != randomizer.DefaultHistoryLimit {
		t.Errorf("history limit = %d, want %d", cfg.HistoryLimit, randomizer.DefaultHistoryLimit)
	}
	if cfg.HistoryLimit != 200 {
		t.Errorf("history limit = %d, want 200", cfg.HistoryLimit)
	}
	if cfg.MaxRecentTracks != 20 || cfg.TopK != 8 {
		t.Errorf("recent/topK = %d/%d, want 20/8", cfg.MaxRecentTracks, cfg.TopK)
	}
	if cfg.Location != time.UTC {
		t.Errorf("location = %v, want UTC", cfg.Location)
	}
	if cfg.FadeIn != 2*time.Second {
		t.Errorf("fade in = %v, want 2s", cfg.FadeIn)
	}
	if cfg.SpotifyEnabled() || cfg.GoogleEnabled() {
		t.Error("integrations enabled without credentials")
	}
}

func TestLoadVarietyMode(t *testing.T) {
	t.Setenv("SMARTALARM_VARIETY_MODE", "true")
	t.Setenv("SMARTALARM_REPLAY_WINDOW", "")
	t.Setenv("SMARTALARM_VARIETY_BONUS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ReplayWindow != 24*time.Hour || cfg.VarietyBonus != 100 {
		t.Errorf("variety mode = %v/%v, want 24h/100", cfg.ReplayWindow, cfg.VarietyBonus)
	}

	t.Setenv("SMARTALARM_REPLAY_WINDOW", "2h")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ReplayWindow != 2*time.Hour {
		t.Errorf("explicit replay window = %v, want 2h", cfg.ReplayWindow)
	}
}

func TestLoadKeepsExplicitZeroVariety(t *testing.T) {
	t.Setenv("SMARTALARM_VARIETY_MODE", "true")
	t.Setenv("SMARTALARM_VARIETY_BONUS", "0")
	t.Setenv("SMARTALARM_REPLAY_WINDOW", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.VarietyBonus != 0 || cfg.ReplayWindow != 0 {
		t.Errorf("explicit zero = %v/%v, want 0/0", cfg.ReplayWindow, cfg.VarietyBonus)
	}
}

func TestLoadReadsAlternateKeys(t *testing.T) {
	t.Setenv("SMARTALARM_DB_BACKEND", "postgres")
	t.Setenv("SMARTALARM_DB_DSN", "")
	t.Setenv("DATABASE_URL", "postgres://alarm@db/alarm")
	t.Setenv("SMARTALARM_REDIS_ADDR", "")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("SMARTALARM_NATS_URL", "")
	t.Setenv("NATS_URL", "nats://bus:4222")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDSN != "postgres://alarm@db/alarm" {
		t.Errorf("dsn = %q", cfg.DBDSN)
	}
	if cfg.RedisAddr != "cache:6379" {
		t.Errorf("redis addr = %q, want cache:6379", cfg.RedisAddr)
	}
	if !cfg.NATSEnabled() || cfg.NATSURL != "nats://bus:4222" {
		t.Errorf("nats url = %q", cfg.NATSURL)
	}
	if !cfg.SpotifyEnabled() {
		t.Error("spotify not enabled from alternate keys")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown db backend", map[string]string{"SMARTALARM_DB_BACKEND": "oracle"}},
		{"postgres without dsn", map[string]string{"SMARTALARM_DB_BACKEND": "postgres", "SMARTALARM_DB_DSN": "", "DATABASE_URL": ""}},
		{"unknown kv backend", map[string]string{"SMARTALARM_KV_BACKEND": "etcd"}},
		{"bad timezone", map[string]string{"SMARTALARM_TIMEZONE": "Mars/Olympus"}},
		{"spotify id without secret", map[string]string{"SMARTALARM_SPOTIFY_CLIENT_ID": "id", "SMARTALARM_SPOTIFY_CLIENT_SECRET": "", "SPOTIFY_CLIENT_SECRET": ""}},
		{"partial google", map[string]string{"SMARTALARM_GOOGLE_CLIENT_ID": "id", "SMARTALARM_GOOGLE_REFRESH_TOKEN": ""}},
		{"negative variety bonus", map[string]string{"SMARTALARM_VARIETY_BONUS": "-5"}},
		{"zero history limit", map[string]string{"SMARTALARM_HISTORY_LIMIT": "0"}},
		{"negative fade in", map[string]string{"SMARTALARM_FADE_IN": "-1s"}},
		{"threshold out of range", map[string]string{"SMARTALARM_QUICK_DETECT_THRESHOLD": "150"}},
		{"production without spotify", map[string]string{"SMARTALARM_ENV": "production", "SMARTALARM_SPOTIFY_CLIENT_ID": "", "SPOTIFY_CLIENT_ID": ""}},
		{"production with memory kv", map[string]string{
			"SMARTALARM_ENV":                   "production",
			"SMARTALARM_SPOTIFY_CLIENT_ID":     "id",
			"SMARTALARM_SPOTIFY_CLIENT_SECRET": "secret",
			"SMARTALARM_KV_BACKEND":            "memory",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %v", tt.env)
			}
		})
	}
}

func TestLoadReportsLegacyEnvWarnings(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("VARIETY_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) < 2 {
		t.Fatalf("warnings = %v, want at least 2", cfg.LegacyEnvWarnings)
	}
}

func TestGetEnvDurationAny(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"90s", 90 * time.Second},
		{"2h30m", 150 * time.Minute},
		{"45", 45 * time.Second},
		{"soon", time.Minute},
		{"", time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("SMARTALARM_TEST_DURATION", tt.value)
		if got := getEnvDurationAny([]string{"SMARTALARM_TEST_DURATION"}, time.Minute); got != tt.want {
			t.Errorf("getEnvDurationAny(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
