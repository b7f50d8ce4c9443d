/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"fmt"
	"strings"
	"time"
)

// Action is the kind of user feedback on a played track.
type Action string

const (
	ActionPlay    Action = "play"
	ActionSkip    Action = "skip"
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionReplay  Action = "replay"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionPlay, ActionSkip, ActionLike, ActionDislike, ActionReplay:
		return true
	}
	return false
}

// Success reports whether the action counts as a successful pick.
func (a Action) Success() bool {
	return a == ActionPlay || a == ActionLike || a == ActionReplay
}

// Positive reports whether the action marks the mood as preferred.
func (a Action) Positive() bool {
	return a == ActionLike || a == ActionReplay
}

// TimeOfDay buckets the hour of an interaction.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// TimeOfDayFor buckets t: morning [5,12), afternoon [12,17), evening [17,21), night otherwise.
func TimeOfDayFor(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// InteractionTrack identifies the track an interaction refers to.
type InteractionTrack struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Artist   string   `json:"artist"`
	Language Language `json:"language"`
}

// InteractionContext captures when and why the track was played.
type InteractionContext struct {
	Mood      Mood       `json:"mood"`
	TimeOfDay TimeOfDay  `json:"time_of_day"`
	DayOfWeek string     `json:"day_of_week"`
	Languages []Language `json:"languages"`
}

// UserInteraction is an input event folded into the learning model.
type UserInteraction struct {
	Timestamp int64              `json:"timestamp"`
	Action    Action             `json:"action"`
	Track     InteractionTrack   `json:"track"`
	Context   InteractionContext `json:"context"`
	Rating    int                `json:"rating,omitempty"` // 1-5, 0 when absent
}

// Validate checks required fields and fills the time context from Timestamp when missing.
func (i *UserInteraction) Validate() error {
	if !i.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, i.Action)
	}
	if !i.Context.Mood.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMood, i.Context.Mood)
	}
	if strings.TrimSpace(i.Track.Artist) == "" {
		return fmt.Errorf("interaction track artist is required")
	}
	if i.Rating < 0 || i.Rating > 5 {
		return fmt.Errorf("rating %d out of range 1-5", i.Rating)
	}
	if i.Timestamp == 0 {
		i.Timestamp = time.Now().UnixMilli()
	}
	at := time.UnixMilli(i.Timestamp)
	if i.Context.TimeOfDay == "" {
		i.Context.TimeOfDay = TimeOfDayFor(at)
	}
	if i.Context.DayOfWeek == "" {
		i.Context.DayOfWeek = at.Weekday().String()
	}
	return nil
}

// ArtistPreference is the learned affinity for one artist.
type ArtistPreference struct {
	Score        float64 `json:"score"`
	Interactions int     `json:"interactions"`
	LastUpdated  int64   `json:"last_updated"`
}

// MoodPattern counts how often picks for a mood succeeded.
type MoodPattern struct {
	Success   int     `json:"success"`
	Total     int     `json:"total"`
	AvgRating float64 `json:"avg_rating"`
}

// LanguagePreference is the learned affinity for one language.
type LanguagePreference struct {
	Preference float64 `json:"preference"`
	Accuracy   float64 `json:"accuracy"`
}

// TimePattern holds moods marked preferred in a time-of-day bucket.
type TimePattern struct {
	PreferredMoods []Mood  `json:"preferred_moods"`
	AvgSuccess     float64 `json:"avg_success"`
}

// DayPattern holds moods marked preferred on a weekday.
type DayPattern struct {
	PreferredMoods []Mood  `json:"preferred_moods"`
	Success        float64 `json:"success"`
}

// ContextualLearning groups context-keyed patterns.
type ContextualLearning struct {
	DayOfWeekPatterns map[string]DayPattern `json:"day_of_week_patterns"`
}

// GlobalStats aggregates every recorded interaction.
type GlobalStats struct {
	TotalInteractions int     `json:"total_interactions"`
	SuccessRate       float64 `json:"success_rate"`
	AvgRating         float64 `json:"avg_rating"`
	LastUpdated       int64   `json:"last_updated"`
}

// LearningModel is the persisted aggregate of user interactions.
type LearningModel struct {
	ArtistPreferences   map[string]ArtistPreference     `json:"artist_preferences"`
	MoodPatterns        map[Mood]MoodPattern            `json:"mood_patterns"`
	LanguagePreferences map[Language]LanguagePreference `json:"language_preferences"`
	TimePatterns        map[TimeOfDay]TimePattern       `json:"time_patterns"`
	ContextualLearning  ContextualLearning              `json:"contextual_learning"`
	GlobalStats         GlobalStats                     `json:"global_stats"`
}

// NewLearningModel returns an empty model.
func NewLearningModel(now time.Time) *LearningModel {
	return &LearningModel{
		ArtistPreferences:   map[string]ArtistPreference{},
		MoodPatterns:        map[Mood]MoodPattern{},
		LanguagePreferences: map[Language]LanguagePreference{},
		TimePatterns:        map[TimeOfDay]TimePattern{},
		ContextualLearning: ContextualLearning{
			DayOfWeekPatterns: map[string]DayPattern{},
		},
		GlobalStats: GlobalStats{
			AvgRating:   3,
			LastUpdated: now.UnixMilli(),
		},
	}
}

// EnsureMaps fills nil maps, e.g. after decoding a partial blob.
func (m *LearningModel) EnsureMaps() {
	if m.ArtistPreferences == nil {
		m.ArtistPreferences = map[string]ArtistPreference{}
	}
	if m.MoodPatterns == nil {
		m.MoodPatterns = map[Mood]MoodPattern{}
	}
	if m.LanguagePreferences == nil {
		m.LanguagePreferences = map[Language]LanguagePreference{}
	}
	if m.TimePatterns == nil {
		m.TimePatterns = map[TimeOfDay]TimePattern{}
	}
	if m.ContextualLearning.DayOfWeekPatterns == nil {
		m.ContextualLearning.DayOfWeekPatterns = map[string]DayPattern{}
	}
}

// Clone returns a deep copy safe to hand to readers.
func (m *LearningModel) Clone() *LearningModel {
	if m == nil {
		return nil
	}
	out := &LearningModel{
		ArtistPreferences:   make(map[string]ArtistPreference, len(m.ArtistPreferences)),
		MoodPatterns:        make(map[Mood]MoodPattern, len(m.MoodPatterns)),
		LanguagePreferences: make(map[Language]LanguagePreference, len(m.LanguagePreferences)),
		TimePatterns:        make(map[TimeOfDay]TimePattern, len(m.TimePatterns)),
		ContextualLearning: ContextualLearning{
			DayOfWeekPatterns: make(map[string]DayPattern, len(m.ContextualLearning.DayOfWeekPatterns)),
		},
		GlobalStats: m.GlobalStats,
	}
	for k, v := range m.ArtistPreferences {
		out.ArtistPreferences[k] = v
	}
	for k, v := range m.MoodPatterns {
		out.MoodPatterns[k] = v
	}
	for k, v := range m.LanguagePreferences {
		out.LanguagePreferences[k] = v
	}
	for k, v := range m.TimePatterns {
		v.PreferredMoods = append([]Mood(nil), v.PreferredMoods...)
		out.TimePatterns[k] = v
	}
	for k, v := range m.ContextualLearning.DayOfWeekPatterns {
		v.PreferredMoods = append([]Mood(nil), v.PreferredMoods...)
		out.ContextualLearning.DayOfWeekPatterns[k] = v
	}
	return out
}

// ArtistKey is the map key used for artist preferences.
func ArtistKey(artist string) string {
	return strings.ToLower(strings.TrimSpace(artist))
}
