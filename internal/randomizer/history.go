/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package randomizer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/kvstore"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// DefaultHistoryLimit caps the number of remembered tracks.
const DefaultHistoryLimit = 200

var (
	// ErrNotInHistory is returned when rating a track that was never selected.
	ErrNotInHistory = errors.New("track not in play history")
	// ErrInvalidRating is returned for ratings outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// History is the persisted play history. Every mutation holds mu from
// read to save, so concurrent selections never interleave.
type History struct {
	mu      sync.Mutex
	entries []models.PlayHistoryEntry
	store   kvstore.Store
	limit   int
	logger  zerolog.Logger
	now     func() time.Time
}

// NewHistory creates an empty history backed by store. Call Load to read
// the persisted blob.
func NewHistory(store kvstore.Store, limit int, logger zerolog.Logger) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		store:  store,
		limit:  limit,
		logger: logger.With().Str("component", "play_history").Logger(),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for timestamps and replay windows.
func (h *History) WithClock(now func() time.Time) *History {
	h.mu.Lock()
	h.now = now
	h.mu.Unlock()
	return h
}

// Load reads the persisted history. A missing key starts empty. An
// unreadable blob also starts empty and is reported to the caller.
func (h *History) Load(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var entries []models.PlayHistoryEntry
	err := kvstore.GetJSON(ctx, h.store, kvstore.KeyPlayHistory, &entries)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		h.entries = nil
		h.logger.Info().Msg("new play history initialized")
		return nil
	case err != nil:
		h.entries = nil
		telemetry.PersistenceErrorsTotal.WithLabelValues("play_history", "load").Inc()
		return fmt.Errorf("load play history: %w", err)
	}

	h.entries = entries
	h.sortAndTrimLocked()
	h.logger.Info().Int("tracks", len(h.entries)).Msg("play history loaded")
	return nil
}

// Entries returns a copy, most recent first.
func (h *History) Entries() []models.PlayHistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.PlayHistoryEntry(nil), h.entries...)
}

// Lookup finds the entry for t, if any.
func (h *History) Lookup(t models.Track) (models.PlayHistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.lookupLocked(t)
	if !ok {
		return models.PlayHistoryEntry{}, false
	}
	return *e, true
}

// Record counts a play of t and persists.
func (h *History) Record(ctx context.Context, t models.Track, mood models.Mood, lang models.Language) models.PlayHistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.recordLocked(t, mood, lang)
	h.persistLocked(ctx)
	return e
}

// Rate stores a 1-5 user rating on the entry for t.
func (h *History) Rate(ctx context.Context, t models.Track, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.lookupLocked(t)
	if !ok {
		return ErrNotInHistory
	}
	e.UserRating = rating
	h.persistLocked(ctx)
	return nil
}

// Reset clears the history and persists the empty list.
func (h *History) Reset(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	if err := kvstore.SetJSON(ctx, h.store, kvstore.KeyPlayHistory, []models.PlayHistoryEntry{}); err != nil {
		return fmt.Errorf("reset play history: %w", err)
	}
	h.logger.Info().Msg("play history reset")
	return nil
}

// recentLocked returns entries for (mood, lang) played inside window,
// most recent first, capped at max.
func (h *History) recentLocked(mood models.Mood, lang models.Language, window time.Duration, max int) []models.PlayHistoryEntry {
	cutoff := h.now().Add(-window).UnixMilli()
	var out []models.PlayHistoryEntry
	for _, e := range h.entries {
		if len(out) >= max {
			break
		}
		if e.Mood == mood && e.Language == lang && e.LastPlayed > cutoff {
			out = append(out, e)
		}
	}
	return out
}

func (h *History) lookupLocked(t models.Track) (*models.PlayHistoryEntry, bool) {
	for i := range h.entries {
		if h.entries[i].Matches(t) {
			return &h.entries[i], true
		}
	}
	return nil, false
}

func (h *History) recordLocked(t models.Track, mood models.Mood, lang models.Language) models.PlayHistoryEntry {
	now := h.now().UnixMilli()
	if e, ok := h.lookupLocked(t); ok {
		e.PlayCount++
		e.LastPlayed = now
		out := *e
		h.sortAndTrimLocked()
		return out
	}

	e := models.PlayHistoryEntry{
		TrackID:    t.ID,
		TrackName:  t.Name,
		Artist:     t.Artist,
		Mood:       mood,
		Language:   lang,
		PlayCount:  1,
		LastPlayed: now,
	}
	h.entries = append(h.entries, e)
	h.sortAndTrimLocked()
	return e
}

func (h *History) sortAndTrimLocked() {
	sort.SliceStable(h.entries, func(i, j int) bool {
		return h.entries[i].LastPlayed > h.entries[j].LastPlayed
	})
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

// persistLocked saves the history. Failures are logged, not returned: the
// in-memory history stays authoritative and the next write retries.
func (h *History) persistLocked(ctx context.Context) {
	entries := h.entries
	if entries == nil {
		entries = []models.PlayHistoryEntry{}
	}
	if err := kvstore.SetJSON(ctx, h.store, kvstore.KeyPlayHistory, entries); err != nil {
		telemetry.PersistenceErrorsTotal.WithLabelValues("play_history", "save").Inc()
		h.logger.Warn().Err(err).Msg("failed to save play history")
	}
}
