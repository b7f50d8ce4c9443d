/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package musicdb holds the curated reference tables shared by the
// classifier, the search orchestrator and the scorer.
package musicdb

import (
	"sort"
	"strings"

	"github.com/friendsincode/smartalarm/internal/models"
)

// DefaultReferenceYear anchors the artist recency term in ScoreArtistForMood.
const DefaultReferenceYear = 2024

// HighStrengthThreshold is the minimum mood strength for ArtistsByMood.
const HighStrengthThreshold = 70

// Database is the canonical mood/artist/language mapping.
type Database struct {
	artists    map[models.Language][]ArtistProfile
	moods      map[models.Mood]languagePatterns
	languages  map[models.Language]LanguagePatterns
	indicators map[models.Mood][]string

	ReferenceYear int
}

// Default returns a fresh copy of the built-in tables.
func Default() *Database {
	db := &Database{
		artists: map[models.Language][]ArtistProfile{
			models.LanguageTamil:   withLanguage(tamilArtists(), models.LanguageTamil),
			models.LanguageEnglish: withLanguage(englishArtists(), models.LanguageEnglish),
		},
		moods: moodPatterns(),
		languages: map[models.Language]LanguagePatterns{
			models.LanguageTamil:   tamilPatterns(),
			models.LanguageEnglish: englishPatterns(),
		},
		indicators:    moodIndicators(),
		ReferenceYear: DefaultReferenceYear,
	}
	return db
}

func withLanguage(profiles []ArtistProfile, lang models.Language) []ArtistProfile {
	for i := range profiles {
		profiles[i].Language = lang
	}
	return profiles
}

// Languages returns the languages with classifier patterns, in supported order.
func (d *Database) Languages() []models.Language {
	out := make([]models.Language, 0, len(d.languages))
	for _, lang := range models.SupportedLanguages {
		if _, ok := d.languages[lang]; ok {
			out = append(out, lang)
		}
	}
	return out
}

// LanguagePatterns returns the classifier table for lang.
func (d *Database) LanguagePatterns(lang models.Language) (LanguagePatterns, bool) {
	p, ok := d.languages[lang]
	return p, ok
}

// Artists returns the profiles for lang.
func (d *Database) Artists(lang models.Language) []ArtistProfile {
	return d.artists[lang]
}

// ArtistsByMood returns artists with strength >= 70 for mood, strongest first.
func (d *Database) ArtistsByMood(mood models.Mood, lang models.Language, limit int) []ArtistProfile {
	var out []ArtistProfile
	for _, a := range d.artists[lang] {
		if a.MoodStrength[mood] >= HighStrengthThreshold {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MoodStrength[mood] > out[j].MoodStrength[mood]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MoodPattern returns the keyword/query table for a mood and language.
func (d *Database) MoodPattern(mood models.Mood, lang models.Language) (MoodPattern, bool) {
	byLang, ok := d.moods[mood]
	if !ok {
		return MoodPattern{}, false
	}
	p, ok := byLang[lang]
	return p, ok
}

// MoodIndicators returns the strong single-token signals for mood, if any.
func (d *Database) MoodIndicators(mood models.Mood) []string {
	return d.indicators[mood]
}

// FindArtist matches name against profile names and aliases for lang.
func (d *Database) FindArtist(name string, lang models.Language) (ArtistProfile, bool) {
	needle := strings.TrimSpace(name)
	if needle == "" {
		return ArtistProfile{}, false
	}
	for _, a := range d.artists[lang] {
		if strings.EqualFold(a.Name, needle) {
			return a, true
		}
		for _, alias := range a.Aliases {
			if strings.EqualFold(alias, needle) {
				return a, true
			}
		}
	}
	return ArtistProfile{}, false
}

// ScoreArtistForMood combines mood strength, popularity and career length.
// Unknown artists score 0.
func (d *Database) ScoreArtistForMood(name string, mood models.Mood, lang models.Language) float64 {
	a, ok := d.FindArtist(name, lang)
	if !ok {
		return 0
	}
	recency := 0.0
	if a.ActiveFrom > 0 {
		recency = float64(d.ReferenceYear-a.ActiveFrom) * 0.1
	}
	return a.MoodStrength[mood] + a.Popularity*0.3 + recency
}
