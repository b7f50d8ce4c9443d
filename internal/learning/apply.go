/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package learning

import (
	"math"
	"time"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Starting values for entries seen for the first time.
const (
	initialArtistScore      = 50.0
	initialLanguagePref     = 50.0
	initialLanguageAccuracy = 50.0
	initialMoodRating       = 3.0
	initialTimeSuccess      = 50.0
	initialDaySuccess       = 50.0
	neutralRating           = 3
	ratingImpactPerStar     = 10.0
)

var artistDeltas = map[models.Action]float64{
	models.ActionLike:    15,
	models.ActionPlay:    5,
	models.ActionReplay:  10,
	models.ActionSkip:    -8,
	models.ActionDislike: -20,
}

var languageDeltas = map[models.Action]float64{
	models.ActionLike:    10,
	models.ActionReplay:  10,
	models.ActionPlay:    3,
	models.ActionSkip:    -5,
	models.ActionDislike: -15,
}

// Apply folds one validated interaction into m in place.
func Apply(m *models.LearningModel, in models.UserInteraction, now time.Time) {
	m.EnsureMaps()
	applyArtist(m, in, now)
	applyMood(m, in)
	applyLanguage(m, in)
	applyTime(m, in)
	applyDay(m, in)
	applyGlobal(m, in, now)
}

func applyArtist(m *models.LearningModel, in models.UserInteraction, now time.Time) {
	key := models.ArtistKey(in.Track.Artist)
	pref, ok := m.ArtistPreferences[key]
	if !ok {
		pref = models.ArtistPreference{Score: initialArtistScore}
	}
	pref.Interactions++
	pref.LastUpdated = now.UnixMilli()
	pref.Score = clamp(pref.Score + artistDeltas[in.Action])
	if in.Rating > 0 {
		pref.Score = clamp(pref.Score + float64(in.Rating-neutralRating)*ratingImpactPerStar)
	}
	m.ArtistPreferences[key] = pref
}

// applyMood keeps the (avg + rating) / 2 smoothing: recent ratings weigh
// more than a true mean would give them.
func applyMood(m *models.LearningModel, in models.UserInteraction) {
	p, ok := m.MoodPatterns[in.Context.Mood]
	if !ok {
		p = models.MoodPattern{AvgRating: initialMoodRating}
	}
	p.Total++
	if in.Action.Success() {
		p.Success++
	}
	if in.Rating > 0 {
		p.AvgRating = (p.AvgRating + float64(in.Rating)) / 2
	}
	m.MoodPatterns[in.Context.Mood] = p
}

func applyLanguage(m *models.LearningModel, in models.UserInteraction) {
	lang := in.Track.Language
	if !lang.Supported() {
		return
	}
	p, ok := m.LanguagePreferences[lang]
	if !ok {
		p = models.LanguagePreference{Preference: initialLanguagePref, Accuracy: initialLanguageAccuracy}
	}
	p.Preference = clamp(p.Preference + languageDeltas[in.Action])
	m.LanguagePreferences[lang] = p
}

func applyTime(m *models.LearningModel, in models.UserInteraction) {
	bucket := in.Context.TimeOfDay
	p, ok := m.TimePatterns[bucket]
	if !ok {
		p = models.TimePattern{PreferredMoods: []models.Mood{}, AvgSuccess: initialTimeSuccess}
	}
	if in.Action.Positive() {
		p.PreferredMoods = addMood(p.PreferredMoods, in.Context.Mood)
	}
	m.TimePatterns[bucket] = p
}

func applyDay(m *models.LearningModel, in models.UserInteraction) {
	day := in.Context.DayOfWeek
	p, ok := m.ContextualLearning.DayOfWeekPatterns[day]
	if !ok {
		p = models.DayPattern{PreferredMoods: []models.Mood{}, Success: initialDaySuccess}
	}
	if in.Action.Positive() {
		p.PreferredMoods = addMood(p.PreferredMoods, in.Context.Mood)
	}
	m.ContextualLearning.DayOfWeekPatterns[day] = p
}

// applyGlobal recomputes the success rate from the mood patterns on every
// update rather than tracking it incrementally.
func applyGlobal(m *models.LearningModel, in models.UserInteraction, now time.Time) {
	g := &m.GlobalStats
	g.TotalInteractions++
	g.LastUpdated = now.UnixMilli()

	var success, total int
	for _, p := range m.MoodPatterns {
		success += p.Success
		total += p.Total
	}
	g.SuccessRate = 0
	if total > 0 {
		g.SuccessRate = float64(success) / float64(total) * 100
	}

	if in.Rating > 0 {
		g.AvgRating = (g.AvgRating + float64(in.Rating)) / 2
	}
}

func addMood(moods []models.Mood, mood models.Mood) []models.Mood {
	for _, m := range moods {
		if m == mood {
			return moods
		}
	}
	return append(moods, mood)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
