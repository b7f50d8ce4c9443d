/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMood     = errors.New("invalid mood")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidAction   = errors.New("invalid interaction action")
)

// Mood is the wake-up music selection axis.
type Mood string

const (
	MoodEnergetic    Mood = "Energetic"
	MoodCalm         Mood = "Calm"
	MoodNeutral      Mood = "Neutral"
	MoodDance        Mood = "Dance"
	MoodMotivational Mood = "Motivational"
	MoodLove         Mood = "Love"
)

// Moods lists every mood in display order.
var Moods = []Mood{MoodEnergetic, MoodCalm, MoodNeutral, MoodDance, MoodMotivational, MoodLove}

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

// Query returns the lower-case form used in catalog queries.
func (m Mood) Query() string {
	return strings.ToLower(string(m))
}

// ParseMood resolves a mood name case-insensitively.
func ParseMood(s string) (Mood, error) {
	trimmed := strings.TrimSpace(s)
	for _, known := range Moods {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMood, s)
}

// Language tags a track's language.
type Language string

const (
	LanguageTamil   Language = "Tamil"
	LanguageEnglish Language = "English"
	LanguageAny     Language = "Any"
	LanguageUnknown Language = "Unknown"
)

// DefaultLanguage is assumed when a request names no language.
const DefaultLanguage = LanguageEnglish

// SupportedLanguages lists the languages the classifier scores.
var SupportedLanguages = []Language{LanguageTamil, LanguageEnglish}

// Supported reports whether l is a classifiable language.
func (l Language) Supported() bool {
	for _, known := range SupportedLanguages {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLanguage resolves a language name case-insensitively. "Any" is accepted.
func ParseLanguage(s string) (Language, error) {
	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, string(LanguageAny)) {
		return LanguageAny, nil
	}
	for _, known := range SupportedLanguages {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
}

// ParseLanguages parses a list, dropping duplicates while keeping order.
func ParseLanguages(values []string) ([]Language, error) {
	out := make([]Language, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		lang, err := ParseLanguage(v)
		if err != nil {
			return nil, err
		}
		out = append(out, lang)
	}
	return NormalizeLanguages(out), nil
}

// NormalizeLanguages expands "Any", removes duplicates and unsupported tags,
// and falls back to DefaultLanguage when nothing remains. The first entry is
// the primary language.
func NormalizeLanguages(langs []Language) []Language {
	seen := make(map[Language]bool, len(SupportedLanguages))
	out := make([]Language, 0, len(SupportedLanguages))
	add := func(l Language) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, l := range langs {
		switch {
		case l == LanguageAny:
			for _, s := range SupportedLanguages {
				add(s)
			}
		case l.Supported():
			add(l)
		}
	}
	if len(out) == 0 {
		out = append(out, DefaultLanguage)
	}
	return out
}

// ContainsLanguage reports whether langs includes l.
func ContainsLanguage(langs []Language, l Language) bool {
	for _, candidate := range langs {
		if candidate == l {
			return true
		}
	}
	return false
}
