/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package learning keeps the persisted preference model that user
// interactions update and the scorer reads.
package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/kvstore"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// Store owns the single learning model. All mutations are serialized
// and each one is written back before the lock is released.
type Store struct {
	mu     sync.Mutex
	model  *models.LearningModel
	kv     kvstore.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore creates a store holding an empty model.
func NewStore(kv kvstore.Store, logger zerolog.Logger) *Store {
	return &Store{
		model:  models.NewLearningModel(time.Now()),
		kv:     kv,
		logger: logger.With().Str("component", "learning").Logger(),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	s.now = now
	s.model = models.NewLearningModel(now())
	s.mu.Unlock()
	return s
}

// Load reads the persisted model. A missing key creates and saves an
// empty model. An unreadable blob leaves an empty model in place and is
// reported to the caller; the next interaction overwrites it.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m models.LearningModel
	err := kvstore.GetJSON(ctx, s.kv, kvstore.KeyLearningModel, &m)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		s.model = models.NewLearningModel(s.now())
		s.saveLocked(ctx)
		s.logger.Info().Msg("new learning model created")
		return nil
	case err != nil:
		s.model = models.NewLearningModel(s.now())
		telemetry.PersistenceErrorsTotal.WithLabelValues("learning_model", "load").Inc()
		return fmt.Errorf("load learning model: %w", err)
	}

	m.EnsureMaps()
	s.model = &m
	s.logger.Info().
		Int("interactions", m.GlobalStats.TotalInteractions).
		Int("artists", len(m.ArtistPreferences)).
		Msg("learning model loaded")
	return nil
}

// RecordInteraction validates in, folds it into the model and persists.
// Only invalid input returns an error; save failures are logged.
func (s *Store) RecordInteraction(ctx context.Context, in models.UserInteraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if in.Timestamp == 0 {
		in.Timestamp = now.UnixMilli()
	}
	if err := in.Validate(); err != nil {
		return err
	}

	Apply(s.model, in, now)
	s.saveLocked(ctx)

	telemetry.InteractionsTotal.WithLabelValues(string(in.Action)).Inc()
	s.logger.Debug().
		Str("action", string(in.Action)).
		Str("artist", in.Track.Artist).
		Str("mood", string(in.Context.Mood)).
		Int("rating", in.Rating).
		Msg("interaction recorded")
	return nil
}

// Snapshot returns a deep copy for read-only use, e.g. by the scorer.
func (s *Store) Snapshot() *models.LearningModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Clone()
}

// Export returns a deep copy of the full model.
func (s *Store) Export() *models.LearningModel {
	return s.Snapshot()
}

// Reset replaces the model with an empty one and persists it.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = models.NewLearningModel(s.now())
	if err := kvstore.SetJSON(ctx, s.kv, kvstore.KeyLearningModel, s.model); err != nil {
		return fmt.Errorf("reset learning model: %w", err)
	}
	s.logger.Info().Msg("learning model reset")
	return nil
}

func (s *Store) saveLocked(ctx context.Context) {
	if err := kvstore.SetJSON(ctx, s.kv, kvstore.KeyLearningModel, s.model); err != nil {
		telemetry.PersistenceErrorsTotal.WithLabelValues("learning_model", "save").Inc()
		s.logger.Warn().Err(err).Msg("failed to save learning model")
	}
}
