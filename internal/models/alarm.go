/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode selects what an alarm plays when it fires.
type Mode string

const (
	ModeMood     Mode = "mood"
	ModeRadio    Mode = "radio"
	ModeCalendar Mode = "calendar"
)

// Modes lists the playback modes in fallback order.
var Modes = []Mode{ModeMood, ModeRadio, ModeCalendar}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeMood || m == ModeRadio || m == ModeCalendar
}

// Default alarm settings.
const (
	DefaultSnoozeMinutes = 5
	DefaultMaxSnoozes    = 3
	DefaultVolume        = 0.8
	MaxSnoozeMinutes     = 60
)

// Alarm is a scheduled wake-up.
type Alarm struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	Label          string     `json:"label"`
	Time           string     `gorm:"type:varchar(5)" json:"time"` // HH:MM, local time
	Weekdays       []int      `gorm:"serializer:json;type:text" json:"weekdays,omitempty"`
	Mode           Mode       `gorm:"type:varchar(16)" json:"mode"`
	Mood           Mood       `gorm:"type:varchar(16)" json:"mood"`
	Languages      []Language `gorm:"serializer:json;type:text" json:"languages"`
	RadioStationID string     `json:"radio_station_id,omitempty"`
	Urgent         bool       `json:"urgent"`
	Volume         float64    `json:"volume"`
	SnoozeMinutes  int        `json:"snooze_minutes"`
	MaxSnoozes     int        `json:"max_snoozes"`
	SnoozePattern  []int      `gorm:"serializer:json;type:text" json:"snooze_pattern,omitempty"`
	Loud           bool       `json:"loud,omitempty"`
	Enabled        bool       `gorm:"index" json:"enabled"`
	LastFiredAt    *time.Time `json:"last_fired_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ApplyDefaults fills zero-valued settings.
func (a *Alarm) ApplyDefaults() {
	if a.Mode == "" {
		a.Mode = ModeMood
	}
	if a.Mood == "" {
		a.Mood = MoodNeutral
	}
	if len(a.Languages) == 0 {
		a.Languages = []Language{DefaultLanguage}
	}
	if a.Volume <= 0 || a.Volume > 1 {
		a.Volume = DefaultVolume
	}
	if a.SnoozeMinutes <= 0 {
		a.SnoozeMinutes = DefaultSnoozeMinutes
	}
	if a.MaxSnoozes < 0 {
		a.MaxSnoozes = 0
	}
}

// Validate checks the alarm definition.
func (a *Alarm) Validate() error {
	if _, _, err := ParseClock(a.Time); err != nil {
		return err
	}
	if !a.Mode.Valid() {
		return fmt.Errorf("invalid mode %q", a.Mode)
	}
	if !a.Mood.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMood, a.Mood)
	}
	for _, l := range a.Languages {
		if l != LanguageAny && !l.Supported() {
			return fmt.Errorf("%w: %q", ErrInvalidLanguage, l)
		}
	}
	for _, d := range a.Weekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("invalid weekday %d", d)
		}
	}
	return validatePattern(a.SnoozePattern)
}

func validatePattern(pattern []int) error {
	for _, m := range pattern {
		if m <= 0 || m > MaxSnoozeMinutes {
			return fmt.Errorf("invalid snooze interval %d: want 1-%d minutes", m, MaxSnoozeMinutes)
		}
	}
	return nil
}

// Trigger builds the fire event for this alarm.
func (a Alarm) Trigger(firedAt time.Time) Trigger {
	return Trigger{
		AlarmID:        a.ID,
		Label:          a.Label,
		Mode:           a.Mode,
		Mood:           a.Mood,
		Languages:      append([]Language(nil), a.Languages...),
		RadioStationID: a.RadioStationID,
		Urgent:         a.Urgent,
		Volume:         a.Volume,
		SnoozeMinutes:  a.SnoozeMinutes,
		MaxSnoozes:     a.MaxSnoozes,
		SnoozePattern:  append([]int(nil), a.SnoozePattern...),
		Loud:           a.Loud,
		FiredAt:        firedAt,
	}
}

// SnoozeLength is the length of snooze n, counting from zero.
func (t Trigger) SnoozeLength(n int) time.Duration {
	if n >= 0 && n < len(t.SnoozePattern) {
		return time.Duration(t.SnoozePattern[n]) * time.Minute
	}
	return time.Duration(t.SnoozeMinutes) * time.Minute
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid alarm time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid alarm hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid alarm minute in %q", s)
	}
	return hour, minute, nil
}

// Trigger is the alarm-fire event consumed by the session controller.
// SnoozePattern holds per-snooze lengths in minutes; snoozes past its end
// use SnoozeMinutes. Loud rings at full volume with no fade-in.
type Trigger struct {
	AlarmID        string     `json:"alarm_id"`
	Label          string     `json:"label"`
	Mode           Mode       `json:"mode"`
	Mood           Mood       `json:"mood"`
	Languages      []Language `json:"languages"`
	RadioStationID string     `json:"radio_station_id,omitempty"`
	Urgent         bool       `json:"urgent"`
	Volume         float64    `json:"volume"`
	SnoozeMinutes  int        `json:"snooze_minutes"`
	MaxSnoozes     int        `json:"max_snoozes"`
	SnoozePattern  []int      `json:"snooze_pattern,omitempty"`
	Loud           bool       `json:"loud,omitempty"`
	FiredAt        time.Time  `json:"fired_at"`
	// Resume marks a re-fire after snooze.
	Resume bool `json:"resume,omitempty"`
}

// Normalize fills defaults and validates a trigger that did not come
// from a stored alarm.
func (t *Trigger) Normalize(now time.Time) error {
	if t.Mode == "" {
		t.Mode = ModeMood
	}
	if !t.Mode.Valid() {
		return fmt.Errorf("invalid mode %q", t.Mode)
	}
	if t.Mood == "" {
		t.Mood = MoodNeutral
	}
	if !t.Mood.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMood, t.Mood)
	}
	for _, l := range t.Languages {
		if l != LanguageAny && !l.Supported() {
			return fmt.Errorf("%w: %q", ErrInvalidLanguage, l)
		}
	}
	if len(t.Languages) == 0 {
		t.Languages = []Language{DefaultLanguage}
	}
	if t.Volume <= 0 || t.Volume > 1 {
		t.Volume = DefaultVolume
	}
	if t.SnoozeMinutes <= 0 {
		t.SnoozeMinutes = DefaultSnoozeMinutes
	}
	if t.MaxSnoozes < 0 {
		t.MaxSnoozes = 0
	}
	if err := validatePattern(t.SnoozePattern); err != nil {
		return err
	}
	if t.FiredAt.IsZero() {
		t.FiredAt = now
	}
	return nil
}

// SessionLog is the persisted summary of one alarm session.
type SessionLog struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	AlarmID      string    `gorm:"index" json:"alarm_id"`
	Mode         Mode      `gorm:"type:varchar(16)" json:"mode"`
	PlayedMode   Mode      `gorm:"type:varchar(16)" json:"played_mode"`
	FallbackPath []string  `gorm:"serializer:json;type:text" json:"fallback_path"`
	TrackID      string    `json:"track_id,omitempty"`
	TrackName    string    `json:"track_name,omitempty"`
	Artist       string    `json:"artist,omitempty"`
	StationID    string    `json:"station_id,omitempty"`
	Snoozes      int       `json:"snoozes"`
	Outcome      string    `gorm:"type:varchar(32)" json:"outcome"`
	StartedAt    time.Time `gorm:"index" json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
}

// KVEntry stores one persistence blob.
type KVEntry struct {
	Key       string `gorm:"primaryKey;type:varchar(128)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
