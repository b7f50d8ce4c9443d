/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package randomizer

import "time"

// Config tunes variety-aware selection. Zero values are honoured: a zero
// replay window or recent cap turns off replay protection and a zero bonus
// gives unplayed tracks no edge. Start from DefaultConfig to keep them.
type Config struct {
	MinTimeBetweenReplays time.Duration `json:"min_time_between_replays"`
	MaxRecentTracks       int           `json:"max_recent_tracks"`
	VarietyBonus          float64       `json:"variety_bonus"`
	// QualityThreshold is reported in decisions but does not filter.
	QualityThreshold float64 `json:"quality_threshold"`
	TopK             int     `json:"top_k"`
	FallbackPool     int     `json:"fallback_pool"`
}

// DefaultConfig avoids replays for four hours.
func DefaultConfig() Config {
	return Config{
		MinTimeBetweenReplays: 4 * time.Hour,
		MaxRecentTracks:       20,
		VarietyBonus:          50,
		QualityThreshold:      60,
		TopK:                  8,
		FallbackPool:          5,
	}
}

// VarietyConfig is the high-variety mode: a day between replays and a
// doubled bonus for unplayed tracks.
func VarietyConfig() Config {
	cfg := DefaultConfig()
	cfg.MinTimeBetweenReplays = 24 * time.Hour
	cfg.VarietyBonus = 100
	return cfg
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MinTimeBetweenReplays < 0 {
		c.MinTimeBetweenReplays = 0
	}
	if c.MaxRecentTracks < 0 {
		c.MaxRecentTracks = 0
	}
	if c.TopK <= 0 {
		c.TopK = def.TopK
	}
	if c.FallbackPool <= 0 {
		c.FallbackPool = def.FallbackPool
	}
	return c
}
