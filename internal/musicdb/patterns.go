/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package musicdb

import "github.com/friendsincode/smartalarm/internal/models"

// MoodPattern is the per-mood, per-language keyword and query table.
type MoodPattern struct {
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Artists     []string `yaml:"artists" json:"artists"`
	SearchTerms []string `yaml:"search_terms" json:"search_terms"`
	AvoidTerms  []string `yaml:"avoid_terms" json:"avoid_terms"`
	Popularity  float64  `yaml:"popularity" json:"popularity"`
}

type languagePatterns = map[models.Language]MoodPattern

func moodPatterns() map[models.Mood]languagePatterns {
	return map[models.Mood]languagePatterns{
		models.MoodDance: {
			models.LanguageTamil: {
				Keywords:    []string{"kuthu", "dance", "mass", "beat", "groove", "party", "club", "thaandavam"},
				Artists:     []string{"anirudh ravichander", "harris jayaraj", "yuvan shankar raja", "s. thaman"},
				SearchTerms: []string{"dance kollywood", "kuthu song", "mass tamil", "thalapathy dance", "vijay dance"},
				AvoidTerms:  []string{"sad", "slow", "melody", "breakup", "death"},
				Popularity:  85,
			},
			models.LanguageEnglish: {
				Keywords:    []string{"dance", "beat", "groove", "party", "club", "edm", "electronic", "house"},
				Artists:     []string{"calvin harris", "david guetta", "martin garrix", "dua lipa", "tiesto"},
				SearchTerms: []string{"dance hits", "edm 2024", "club music", "party songs", "festival anthems"},
				AvoidTerms:  []string{"ballad", "acoustic", "sad", "slow", "depressing"},
				Popularity:  80,
			},
		},
		models.MoodEnergetic: {
			models.LanguageTamil: {
				Keywords:    []string{"energy", "power", "semma", "vera level", "high", "pump", "motivation"},
				Artists:     []string{"anirudh ravichander", "yuvan shankar raja", "hiphop tamizha", "s. thaman"},
				SearchTerms: []string{"energetic tamil", "power songs kollywood", "motivation tamil", "pump up"},
				AvoidTerms:  []string{"sad", "slow", "calm", "peaceful", "lullaby"},
				Popularity:  80,
			},
			models.LanguageEnglish: {
				Keywords:    []string{"energy", "power", "pump", "high", "electric", "boost", "adrenaline"},
				Artists:     []string{"martin garrix", "the weeknd", "imagine dragons", "twenty one pilots"},
				SearchTerms: []string{"energetic hits", "pump up songs", "high energy", "workout music"},
				AvoidTerms:  []string{"ballad", "acoustic", "slow", "calm", "lullaby"},
				Popularity:  85,
			},
		},
		models.MoodLove: {
			models.LanguageTamil: {
				Keywords:    []string{"kadhal", "love", "romance", "heart", "feeling", "emotion", "beautiful"},
				Artists:     []string{"a.r. rahman", "harris jayaraj", "ilaiyaraaja", "d. imman"},
				SearchTerms: []string{"love songs tamil", "romantic kollywood", "kadhal songs", "melody tamil"},
				AvoidTerms:  []string{"breakup", "sad", "angry", "fight", "violence"},
				Popularity:  90,
			},
			models.LanguageEnglish: {
				Keywords:    []string{"love", "heart", "romance", "feeling", "emotion", "beautiful", "together"},
				Artists:     []string{"adele", "ed sheeran", "john legend", "alicia keys", "sam smith"},
				SearchTerms: []string{"love songs", "romantic hits", "love ballads", "relationship songs"},
				AvoidTerms:  []string{"breakup", "heartbreak", "angry", "revenge", "hate"},
				Popularity:  85,
			},
		},
		models.MoodCalm: {
			models.LanguageTamil: {
				Keywords:    []string{"peace", "calm", "soft", "gentle", "soothing", "meditation", "spiritual"},
				Artists:     []string{"a.r. rahman", "ilaiyaraaja", "d. imman", "santhosh narayanan"},
				SearchTerms: []string{"peaceful tamil", "calm kollywood", "spiritual songs", "meditation music"},
				AvoidTerms:  []string{"loud", "aggressive", "dance", "party", "club"},
				Popularity:  75,
			},
			models.LanguageEnglish: {
				Keywords:    []string{"calm", "peace", "soft", "gentle", "acoustic", "chill", "relax"},
				Artists:     []string{"billie eilish", "lorde", "john mayer", "bon iver", "norah jones"},
				SearchTerms: []string{"calm music", "acoustic hits", "chill songs", "relaxing music"},
				AvoidTerms:  []string{"loud", "aggressive", "heavy", "dance", "party"},
				Popularity:  70,
			},
		},
		models.MoodMotivational: {
			models.LanguageTamil: {
				Keywords:    []string{"motivation", "success", "fight", "win", "power", "strength", "achieve"},
				Artists:     []string{"hiphop tamizha", "a.r. rahman", "anirudh ravichander", "yuvan shankar raja"},
				SearchTerms: []string{"motivational tamil", "inspiration kollywood", "success songs", "fight songs"},
				AvoidTerms:  []string{"sad", "defeat", "failure", "depression", "giving up"},
				Popularity:  80,
			},
			models.LanguageEnglish: {
				Keywords:    []string{"motivation", "strong", "power", "rise", "fight", "win", "overcome", "achieve"},
				Artists:     []string{"eminem", "kanye west", "drake", "kendrick lamar", "linkin park"},
				SearchTerms: []string{"motivational rap", "inspiration songs", "workout motivation", "success anthems"},
				AvoidTerms:  []string{"sad", "defeat", "failure", "depression", "giving up"},
				Popularity:  85,
			},
		},
		models.MoodNeutral: {
			models.LanguageTamil: {
				Keywords:    []string{"morning", "fresh", "new", "daily", "routine", "normal", "easy"},
				Artists:     []string{"harris jayaraj", "yuvan shankar raja", "santhosh narayanan", "gv prakash"},
				SearchTerms: []string{"morning songs tamil", "fresh kollywood", "daily music", "feel good"},
				AvoidTerms:  []string{"extreme", "intense", "very sad", "very happy", "dramatic"},
				Popularity:  75,
			},
			models.LanguageEnglish: {
				Keywords:    []string{"morning", "fresh", "easy", "smooth", "flow", "natural", "balanced"},
				Artists:     []string{"taylor swift", "coldplay", "maroon 5", "onerepublic", "imagine dragons"},
				SearchTerms: []string{"feel good songs", "morning playlist", "easy listening", "pop hits"},
				AvoidTerms:  []string{"extreme", "intense", "heavy", "very sad", "very energetic"},
				Popularity:  80,
			},
		},
	}
}

// moodIndicators are strong single-token signals for a mood.
func moodIndicators() map[models.Mood][]string {
	return map[models.Mood][]string{
		models.MoodDance:     {"dance", "party", "club"},
		models.MoodLove:      {"love", "heart", "kadhal"},
		models.MoodEnergetic: {"energy", "power", "high"},
	}
}
