/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package alarm stores alarm definitions and fires them on schedule.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/smartalarm/internal/models"
)

var (
	// ErrNotFound is returned when no alarm has the requested id.
	ErrNotFound = errors.New("alarm not found")

	// ErrInvalidAlarm wraps validation failures.
	ErrInvalidAlarm = errors.New("invalid alarm")
)

// Store persists alarms with gorm.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewStore creates an alarm store.
func NewStore(db *gorm.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger.With().Str("component", "alarm_store").Logger()}
}

// List returns every alarm ordered by time of day.
func (s *Store) List(ctx context.Context) ([]models.Alarm, error) {
	var alarms []models.Alarm
	if err := s.db.WithContext(ctx).Order("time ASC, created_at ASC").Find(&alarms).Error; err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}
	return alarms, nil
}

// ListEnabled returns the alarms the scheduler should consider.
func (s *Store) ListEnabled(ctx context.Context) ([]models.Alarm, error) {
	var alarms []models.Alarm
	if err := s.db.WithContext(ctx).Where("enabled = ?", true).Order("time ASC").Find(&alarms).Error; err != nil {
		return nil, fmt.Errorf("list enabled alarms: %w", err)
	}
	return alarms, nil
}

// Get loads one alarm.
func (s *Store) Get(ctx context.Context, id string) (*models.Alarm, error) {
	var a models.Alarm
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alarm %s: %w", id, err)
	}
	return &a, nil
}

// Create validates a, assigns an id when missing and inserts it.
func (s *Store) Create(ctx context.Context, a *models.Alarm) error {
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAlarm, err)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create alarm: %w", err)
	}
	s.logger.Info().Str("alarm_id", a.ID).Str("time", a.Time).Msg("alarm created")
	return nil
}

// Update replaces an existing alarm.
func (s *Store) Update(ctx context.Context, a *models.Alarm) error {
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAlarm, err)
	}
	existing, err := s.Get(ctx, a.ID)
	if err != nil {
		return err
	}
	a.CreatedAt = existing.CreatedAt
	a.LastFiredAt = existing.LastFiredAt
	if err := s.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("update alarm %s: %w", a.ID, err)
	}
	return nil
}

// Delete removes an alarm.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Alarm{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete alarm %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.Info().Str("alarm_id", id).Msg("alarm deleted")
	return nil
}

// MarkFired records the occurrence that was last emitted.
func (s *Store) MarkFired(ctx context.Context, id string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.Alarm{}).Where("id = ?", id).Update("last_fired_at", at).Error
	if err != nil {
		return fmt.Errorf("mark alarm %s fired: %w", id, err)
	}
	return nil
}
