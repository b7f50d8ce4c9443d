/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package randomizer picks one track from a ranked list while steering
// away from recent repeats, and remembers what it picked.
package randomizer

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/scoring"
)

// Selection reasons.
const (
	ReasonWeighted = "weighted"
	ReasonFallback = "all_recent_fallback"
	ReasonEmpty    = "no_candidates"
)

const maxTimeBonus = 30.0

// Candidate is a scored track after the variety adjustment.
type Candidate struct {
	Track             models.Track `json:"track"`
	TotalScore        float64      `json:"total_score"`
	VarietyAdjustment float64      `json:"variety_adjustment"`
	FinalScore        float64      `json:"final_score"`
	PlayCount         int          `json:"play_count"`
}

// Decision explains one selection. Track is nil only for empty input.
type Decision struct {
	Track            *models.Track `json:"track"`
	Reason           string        `json:"reason"`
	Offered          int           `json:"offered"`
	RecentlyPlayed   int           `json:"recently_played"`
	Available        int           `json:"available"`
	Considered       []Candidate   `json:"considered"`
	Chosen           *Candidate    `json:"chosen,omitempty"`
	BelowQuality     bool          `json:"below_quality"`
	QualityThreshold float64       `json:"quality_threshold"`
}

// Randomizer draws from the top candidates with weights proportional to
// their final score.
type Randomizer struct {
	history *History
	logger  zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a randomizer over history. A nil rng is seeded from the clock.
func New(history *History, rng *rand.Rand, logger zerolog.Logger) *Randomizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Randomizer{
		history: history,
		rng:     rng,
		logger:  logger.With().Str("component", "randomizer").Logger(),
	}
}

// History returns the play history the randomizer records into.
func (r *Randomizer) History() *History {
	return r.history
}

// Select picks a track from scored (expected sorted best first) and
// records it in the play history. For non-empty input the returned
// decision always carries a track. Only TopK and FallbackPool fall back to
// their defaults when unset; see Config.
func (r *Randomizer) Select(ctx context.Context, scored []scoring.TrackScore, mood models.Mood, lang models.Language, cfg Config) Decision {
	cfg = cfg.withDefaults()
	d := Decision{Offered: len(scored), QualityThreshold: cfg.QualityThreshold}
	if len(scored) == 0 {
		d.Reason = ReasonEmpty
		d.Considered = []Candidate{}
		return d
	}

	h := r.history
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	recent := h.recentLocked(mood, lang, cfg.MinTimeBetweenReplays, cfg.MaxRecentTracks)
	d.RecentlyPlayed = len(recent)

	candidates := make([]Candidate, 0, len(scored))
	for _, s := range scored {
		if playedIn(recent, s.Track) {
			continue
		}
		candidates = append(candidates, r.adjust(s, cfg, now))
	}
	d.Available = len(candidates)

	var chosen Candidate
	if len(candidates) == 0 {
		pool := min(cfg.FallbackPool, len(scored))
		pick := scored[r.randIntn(pool)]
		chosen = Candidate{Track: pick.Track, TotalScore: pick.TotalScore, FinalScore: pick.TotalScore}
		d.Reason = ReasonFallback
		d.Considered = []Candidate{}
		r.logger.Info().Int("offered", len(scored)).Msg("every candidate recently played, picking from top of unfiltered list")
	} else {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].FinalScore > candidates[j].FinalScore
		})
		top := candidates[:min(cfg.TopK, len(candidates))]
		chosen = r.weightedPick(top)
		d.Reason = ReasonWeighted
		d.Considered = append([]Candidate(nil), top...)
	}

	entry := h.recordLocked(chosen.Track, mood, lang)
	h.persistLocked(ctx)

	chosen.PlayCount = entry.PlayCount
	track := chosen.Track
	d.Track = &track
	d.Chosen = &chosen
	d.BelowQuality = chosen.TotalScore < cfg.QualityThreshold

	r.logger.Debug().
		Str("track", track.Name).
		Str("artist", track.Artist).
		Float64("quality", chosen.TotalScore).
		Float64("variety", chosen.VarietyAdjustment).
		Str("reason", d.Reason).
		Msg("track selected")
	return d
}

// adjust adds the variety bonus for unplayed tracks, or a time-since-play
// bonus minus a repeat penalty for tracks played more than three times.
func (r *Randomizer) adjust(s scoring.TrackScore, cfg Config, now time.Time) Candidate {
	c := Candidate{Track: s.Track, TotalScore: s.TotalScore}
	e, ok := r.history.lookupLocked(s.Track)
	if !ok {
		c.VarietyAdjustment = cfg.VarietyBonus
	} else {
		c.PlayCount = e.PlayCount
		minutes := float64(now.UnixMilli()-e.LastPlayed) / float64(time.Minute/time.Millisecond)
		c.VarietyAdjustment = math.Min(maxTimeBonus, minutes/10)
		if e.PlayCount > 3 {
			c.VarietyAdjustment -= float64(e.PlayCount * 5)
		}
	}
	c.FinalScore = c.TotalScore + c.VarietyAdjustment
	return c
}

// weightedPick draws one candidate with weight max(1, FinalScore).
func (r *Randomizer) weightedPick(top []Candidate) Candidate {
	total := 0.0
	for _, c := range top {
		total += math.Max(1, c.FinalScore)
	}
	roll := r.randFloat() * total
	for _, c := range top {
		roll -= math.Max(1, c.FinalScore)
		if roll <= 0 {
			return c
		}
	}
	return top[0]
}

func (r *Randomizer) randIntn(n int) int {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Intn(n)
}

func (r *Randomizer) randFloat() float64 {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Float64()
}

func playedIn(recent []models.PlayHistoryEntry, t models.Track) bool {
	for _, e := range recent {
		if e.Matches(t) {
			return true
		}
	}
	return false
}
