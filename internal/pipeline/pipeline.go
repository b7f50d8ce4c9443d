/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package pipeline chains catalog search, scoring and the variety
// randomizer into a single track selection.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/learning"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/randomizer"
	"github.com/friendsincode/smartalarm/internal/scoring"
	"github.com/friendsincode/smartalarm/internal/search"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// Outcomes reported in metrics and traces.
const (
	OutcomeSelected     = "selected"
	OutcomeFallback     = "fallback"
	OutcomeNoCandidates = "no_candidates"
)

const topScoresInTrace = 5

// Request asks for one track.
type Request struct {
	Mood       models.Mood       `json:"mood"`
	Languages  []models.Language `json:"languages"`
	MaxResults int               `json:"max_results,omitempty"`
}

// StrategyTrace is one search strategy as reported in a Trace.
type StrategyTrace struct {
	Name     string          `json:"name"`
	Query    string          `json:"query"`
	Tier     string          `json:"tier"`
	Priority int             `json:"priority"`
	Language models.Language `json:"language"`
	Found    int             `json:"found"`
	Success  bool            `json:"success"`
	Duration time.Duration   `json:"duration"`
	Error    string          `json:"error,omitempty"`
}

// Trace explains how a selection was reached.
type Trace struct {
	Mood        models.Mood          `json:"mood"`
	Languages   []models.Language    `json:"languages"`
	Strategies  []StrategyTrace      `json:"strategies"`
	Performance search.Performance   `json:"performance"`
	Candidates  int                  `json:"candidates"`
	TopScores   []scoring.TrackScore `json:"top_scores"`
	Decision    randomizer.Decision  `json:"decision"`
	Outcome     string               `json:"outcome"`
	Duration    time.Duration        `json:"duration"`
}

// Result is the pipeline answer. Track is nil when the catalog produced
// nothing; callers fall back to another media mode.
type Result struct {
	Track *models.Track `json:"track"`
	Score float64       `json:"score,omitempty"`
	Trace Trace         `json:"trace"`
}

// Pipeline runs search, scoring and randomization in sequence.
type Pipeline struct {
	search     *search.Orchestrator
	scorer     *scoring.Scorer
	randomizer *randomizer.Randomizer
	learning   *learning.Store
	variety    randomizer.Config
	logger     zerolog.Logger
}

// New assembles a pipeline. learning may be nil, in which case the user
// preference dimension stays neutral.
func New(orch *search.Orchestrator, scorer *scoring.Scorer, rnd *randomizer.Randomizer, store *learning.Store, variety randomizer.Config, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		search:     orch,
		scorer:     scorer,
		randomizer: rnd,
		learning:   store,
		variety:    variety,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Select runs the pipeline once. Only an invalid request is an error;
// search failures and empty catalogs come back as a nil Track.
func (p *Pipeline) Select(ctx context.Context, req Request) (Result, error) {
	if !req.Mood.Valid() {
		return Result{}, fmt.Errorf("%w: %q", models.ErrInvalidMood, req.Mood)
	}
	langs := models.NormalizeLanguages(req.Languages)
	primary := langs[0]
	start := time.Now()

	ctx, span := telemetry.StartStage(ctx, "pipeline.select", map[string]any{
		"mood":      string(req.Mood),
		"languages": languageStrings(langs),
	})
	defer span.End()

	found := p.search.Search(ctx, req.Mood, langs, req.MaxResults)

	var snapshot *models.LearningModel
	if p.learning != nil {
		snapshot = p.learning.Snapshot()
	}
	_, scoreSpan := telemetry.StartStage(ctx, "pipeline.score", map[string]any{"candidates": len(found.Tracks)})
	scored := p.scorer.ScoreAll(found.Tracks, req.Mood, langs, snapshot)
	scoreSpan.End()

	decision := p.randomizer.Select(ctx, scored, req.Mood, primary, p.variety)

	trace := Trace{
		Mood:        req.Mood,
		Languages:   langs,
		Strategies:  strategyTraces(found.Log),
		Performance: search.AnalyzePerformance(found.Log),
		Candidates:  len(scored),
		TopScores:   scored[:min(topScoresInTrace, len(scored))],
		Decision:    decision,
		Outcome:     outcomeOf(decision),
		Duration:    time.Since(start),
	}
	res := Result{Track: decision.Track, Trace: trace}
	if decision.Chosen != nil {
		res.Score = decision.Chosen.TotalScore
	}

	telemetry.SelectionsTotal.WithLabelValues(string(req.Mood), string(primary), trace.Outcome).Inc()
	telemetry.SelectionDuration.Observe(trace.Duration.Seconds())
	telemetry.AddSpanAttributes(span, map[string]any{
		"outcome":    trace.Outcome,
		"candidates": trace.Candidates,
		"strategies": len(trace.Strategies),
	})

	if res.Track == nil {
		p.logger.Warn().
			Str("mood", string(req.Mood)).
			Strs("languages", languageStrings(langs)).
			Int("strategies", len(found.Log)).
			Msg("no track available for selection")
		return res, nil
	}
	p.logger.Info().
		Str("mood", string(req.Mood)).
		Str("language", string(primary)).
		Str("track", res.Track.Name).
		Str("artist", res.Track.Artist).
		Float64("score", res.Score).
		Str("reason", decision.Reason).
		Int("candidates", trace.Candidates).
		Dur("duration", trace.Duration).
		Msg("track selected")
	return res, nil
}

func outcomeOf(d randomizer.Decision) string {
	switch d.Reason {
	case randomizer.ReasonEmpty:
		return OutcomeNoCandidates
	case randomizer.ReasonFallback:
		return OutcomeFallback
	default:
		return OutcomeSelected
	}
}

func strategyTraces(log []search.Result) []StrategyTrace {
	out := make([]StrategyTrace, 0, len(log))
	for _, r := range log {
		out = append(out, StrategyTrace{
			Name:     r.Strategy.Name,
			Query:    r.Strategy.Query,
			Tier:     r.Strategy.Tier.String(),
			Priority: r.Strategy.Priority,
			Language: r.Strategy.Language,
			Found:    len(r.Tracks),
			Success:  r.Success,
			Duration: r.Duration,
			Error:    r.Error,
		})
	}
	return out
}

func languageStrings(langs []models.Language) []string {
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = string(l)
	}
	return out
}
