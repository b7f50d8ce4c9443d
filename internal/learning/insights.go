/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package learning

import (
	"fmt"
	"math"
	"sort"

	"github.com/friendsincode/smartalarm/internal/models"
)

const (
	minArtistInteractions = 2
	maxTopArtists         = 10
)

// Context narrows recommendations to when the alarm rings.
type Context struct {
	TimeOfDay models.TimeOfDay `json:"time_of_day"`
	DayOfWeek string           `json:"day_of_week"`
}

// Recommendation lists learned artists for a request.
type Recommendation struct {
	RecommendedArtists []string `json:"recommended_artists"`
	ConfidenceScore    float64  `json:"confidence_score"`
	Reasoning          []string `json:"reasoning"`
}

// ArtistInsight is one row of the top-artist table.
type ArtistInsight struct {
	Artist       string  `json:"artist"`
	Score        float64 `json:"score"`
	Interactions int     `json:"interactions"`
}

// MoodInsight is one row of the mood success table.
type MoodInsight struct {
	Mood        models.Mood `json:"mood"`
	SuccessRate float64     `json:"success_rate"`
	Confidence  float64     `json:"confidence"`
}

// LanguageInsight is one row of the language preference table.
type LanguageInsight struct {
	Language   models.Language `json:"language"`
	Preference float64         `json:"preference"`
}

// Insights summarizes the model.
type Insights struct {
	TopArtists          []ArtistInsight    `json:"top_artists"`
	MoodSuccessRates    []MoodInsight      `json:"mood_success_rates"`
	LanguagePreferences []LanguageInsight  `json:"language_preferences"`
	GlobalStats         models.GlobalStats `json:"global_stats"`
}

// Recommendations returns artists with enough history, best first, and
// a confidence that grows with the amount of data behind them.
func (s *Store) Recommendations(mood models.Mood, lang models.Language, ctx Context) Recommendation {
	m := s.Snapshot()

	artists := topArtists(m)
	rec := Recommendation{
		RecommendedArtists: make([]string, 0, len(artists)),
		Reasoning:          []string{},
	}
	for _, a := range artists {
		rec.RecommendedArtists = append(rec.RecommendedArtists, a.Artist)
	}

	if tp, ok := m.TimePatterns[ctx.TimeOfDay]; ok && containsMood(tp.PreferredMoods, mood) {
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("Time pattern: %s preferred during %s", mood, ctx.TimeOfDay))
	}
	if dp, ok := m.ContextualLearning.DayOfWeekPatterns[ctx.DayOfWeek]; ok && containsMood(dp.PreferredMoods, mood) {
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("Day pattern: %s preferred on %s", mood, ctx.DayOfWeek))
	}
	if lp, ok := m.LanguagePreferences[lang]; ok {
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("Language preference: %s %.0f/100", lang, lp.Preference))
	}

	moodTotal := 0
	if p, ok := m.MoodPatterns[mood]; ok {
		moodTotal = p.Total
	}
	rec.ConfidenceScore = math.Min(100, float64(m.GlobalStats.TotalInteractions*2+moodTotal*10+len(artists)*5))
	return rec
}

// Insights returns the summary tables.
func (s *Store) Insights() Insights {
	m := s.Snapshot()

	out := Insights{
		TopArtists:          topArtists(m),
		MoodSuccessRates:    []MoodInsight{},
		LanguagePreferences: []LanguageInsight{},
		GlobalStats:         m.GlobalStats,
	}

	for mood, p := range m.MoodPatterns {
		rate := 0.0
		if p.Total > 0 {
			rate = float64(p.Success) / float64(p.Total) * 100
		}
		out.MoodSuccessRates = append(out.MoodSuccessRates, MoodInsight{
			Mood:        mood,
			SuccessRate: rate,
			Confidence:  math.Min(100, float64(p.Total*10)),
		})
	}
	sort.Slice(out.MoodSuccessRates, func(i, j int) bool {
		a, b := out.MoodSuccessRates[i], out.MoodSuccessRates[j]
		if a.SuccessRate != b.SuccessRate {
			return a.SuccessRate > b.SuccessRate
		}
		return a.Mood < b.Mood
	})

	for lang, p := range m.LanguagePreferences {
		out.LanguagePreferences = append(out.LanguagePreferences, LanguageInsight{Language: lang, Preference: p.Preference})
	}
	sort.Slice(out.LanguagePreferences, func(i, j int) bool {
		a, b := out.LanguagePreferences[i], out.LanguagePreferences[j]
		if a.Preference != b.Preference {
			return a.Preference > b.Preference
		}
		return a.Language < b.Language
	})
	return out
}

// topArtists ranks artists with at least two interactions by score.
// Map iteration order is random, so ties break on name.
func topArtists(m *models.LearningModel) []ArtistInsight {
	out := []ArtistInsight{}
	for name, p := range m.ArtistPreferences {
		if p.Interactions < minArtistInteractions {
			continue
		}
		out = append(out, ArtistInsight{Artist: name, Score: p.Score, Interactions: p.Interactions})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Artist < out[j].Artist
	})
	if len(out) > maxTopArtists {
		out = out[:maxTopArtists]
	}
	return out
}

func containsMood(moods []models.Mood, mood models.Mood) bool {
	for _, m := range moods {
		if m == mood {
			return true
		}
	}
	return false
}
