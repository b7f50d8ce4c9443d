/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package search runs tiered catalog queries for a mood and language
// request and returns the deduplicated candidates.
package search

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/musicdb"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// Catalog is the external track search capability.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]models.Track, error)
}

// Result records one strategy execution.
type Result struct {
	Strategy Strategy       `json:"strategy"`
	Tracks   []models.Track `json:"tracks"`
	Success  bool           `json:"success"`
	Duration time.Duration  `json:"execution_time"`
	Error    string         `json:"error,omitempty"`
}

// Outcome is the orchestrator's answer. Success is true iff Tracks is non-empty.
type Outcome struct {
	Tracks  []models.Track `json:"tracks"`
	Log     []Result       `json:"search_log"`
	Success bool           `json:"success"`
}

// Config tunes the orchestrator.
type Config struct {
	QueryLimit         int
	StrategyTimeout    time.Duration
	ArtistsPerLanguage int
	DefaultMaxResults  int

	// EmergencyFloor triggers tier 3 when fewer unique tracks were found;
	// EmergencyTarget stops tier 3 once reached.
	EmergencyFloor  int
	EmergencyTarget int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		QueryLimit:         20,
		StrategyTimeout:    8 * time.Second,
		ArtistsPerLanguage: 3,
		DefaultMaxResults:  20,
		EmergencyFloor:     5,
		EmergencyTarget:    10,
	}
}

// Orchestrator executes strategies tier by tier against a Catalog.
type Orchestrator struct {
	catalog Catalog
	db      *musicdb.Database
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates an orchestrator. Zero config fields take their defaults.
func New(catalog Catalog, db *musicdb.Database, cfg Config, logger zerolog.Logger) *Orchestrator {
	def := DefaultConfig()
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = def.QueryLimit
	}
	if cfg.StrategyTimeout <= 0 {
		cfg.StrategyTimeout = def.StrategyTimeout
	}
	if cfg.ArtistsPerLanguage <= 0 {
		cfg.ArtistsPerLanguage = def.ArtistsPerLanguage
	}
	if cfg.DefaultMaxResults <= 0 {
		cfg.DefaultMaxResults = def.DefaultMaxResults
	}
	if cfg.EmergencyFloor <= 0 {
		cfg.EmergencyFloor = def.EmergencyFloor
	}
	if cfg.EmergencyTarget <= 0 {
		cfg.EmergencyTarget = def.EmergencyTarget
	}
	return &Orchestrator{
		catalog: catalog,
		db:      db,
		cfg:     cfg,
		logger:  logger.With().Str("component", "search").Logger(),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for year windows.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Search runs the tiers in order:
//   - primary until maxResults unique tracks are collected;
//   - secondary only if primary under-filled;
//   - emergency only if fewer than EmergencyFloor tracks remain, until EmergencyTarget.
//
// Strategy failures are recorded in the log and never abort the search.
func (o *Orchestrator) Search(ctx context.Context, mood models.Mood, langs []models.Language, maxResults int) Outcome {
	if maxResults <= 0 {
		maxResults = o.cfg.DefaultMaxResults
	}
	langs = models.NormalizeLanguages(langs)
	year := o.now().Year()

	ctx, span := telemetry.StartStage(ctx, "search", map[string]any{
		"mood":        string(mood),
		"primary":     string(langs[0]),
		"max_results": maxResults,
	})
	defer span.End()

	found := newCollector()
	var log []Result

	run := func(strategies []Strategy, stopAt int) {
		for _, s := range strategies {
			if found.len() >= stopAt {
				return
			}
			res := o.execute(ctx, s)
			log = append(log, res)
			found.add(res.Tracks)
		}
	}

	run(Primary(o.db, mood, langs, o.cfg.ArtistsPerLanguage, year), maxResults)

	if found.len() < maxResults {
		o.logger.Debug().Int("found", found.len()).Int("want", maxResults).Msg("primary tier under-filled")
		run(Secondary(o.db, mood, langs, year), maxResults)
	}

	if found.len() < o.cfg.EmergencyFloor {
		o.logger.Info().Int("found", found.len()).Msg("activating emergency search tier")
		run(Emergency(o.db, mood, langs, year), o.cfg.EmergencyTarget)
	}

	out := Outcome{Tracks: found.tracks, Log: log, Success: found.len() > 0}
	if out.Tracks == nil {
		out.Tracks = []models.Track{}
	}

	telemetry.AddSpanAttributes(span, map[string]any{
		"strategies": len(log),
		"tracks":     len(out.Tracks),
	})
	o.logger.Debug().
		Str("mood", string(mood)).
		Int("strategies", len(log)).
		Int("tracks", len(out.Tracks)).
		Msg("search complete")

	return out
}

// execute runs one strategy with its own timeout. Errors become a failed Result.
func (o *Orchestrator) execute(ctx context.Context, s Strategy) Result {
	start := time.Now()
	sctx, cancel := context.WithTimeout(ctx, o.cfg.StrategyTimeout)
	defer cancel()

	// The call runs on its own goroutine so a catalog that ignores ctx
	// still cannot hold the search past the strategy deadline.
	done := make(chan catalogReply, 1)
	go func() {
		tracks, err := o.searchCatalog(sctx, s.Query)
		done <- catalogReply{tracks: tracks, err: err}
	}()

	var reply catalogReply
	select {
	case reply = <-done:
	case <-sctx.Done():
	}
	tracks, err := reply.tracks, reply.err
	if err == nil && sctx.Err() != nil {
		tracks, err = nil, sctx.Err()
	}
	res := Result{Strategy: s, Duration: time.Since(start)}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			res.Error = "timeout after " + o.cfg.StrategyTimeout.String()
		} else {
			res.Error = err.Error()
		}
		res.Tracks = []models.Track{}
	} else {
		res.Tracks = tracks
		if res.Tracks == nil {
			res.Tracks = []models.Track{}
		}
		res.Success = len(tracks) > 0
	}

	outcome := "empty"
	switch {
	case res.Error != "":
		outcome = "error"
	case res.Success:
		outcome = "success"
	}
	telemetry.SearchStrategiesTotal.WithLabelValues(s.Tier.String(), outcome).Inc()
	telemetry.SearchStrategyDuration.WithLabelValues(s.Tier.String()).Observe(res.Duration.Seconds())

	o.logger.Debug().
		Str("strategy", s.Name).
		Str("query", s.Query).
		Str("outcome", outcome).
		Int("tracks", len(res.Tracks)).
		Dur("took", res.Duration).
		Str("error", res.Error).
		Msg("strategy executed")

	return res
}

type catalogReply struct {
	tracks []models.Track
	err    error
}

// searchCatalog converts a catalog panic into an error so one broken
// adapter call cannot take down the request.
func (o *Orchestrator) searchCatalog(ctx context.Context, query string) (tracks []models.Track, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("catalog panic")
			o.logger.Error().Interface("panic", r).Str("query", query).Msg("catalog search panicked")
		}
	}()
	return o.catalog.Search(ctx, query, o.cfg.QueryLimit)
}
