/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package musicdb

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/friendsincode/smartalarm/internal/models"
)

// TermRule scores a category of terms: PerMatch points per hit, capped at
// Cap, counted only once MinMatches hits are found.
type TermRule struct {
	Terms      []string
	PerMatch   float64
	Cap        float64
	MinMatches int
	WholeWord  bool
}

// QueryTemplate is a catalog query with a {mood} placeholder. YearSpan
// appends "year:(ref-span)-ref" to the query; zero leaves the year open.
type QueryTemplate struct {
	Name     string
	Query    string
	YearSpan int
	Expected int
}

// Render fills in the mood and year window relative to refYear.
func (q QueryTemplate) Render(mood models.Mood, refYear int) string {
	out := strings.ReplaceAll(q.Query, "{mood}", mood.Query())
	if q.YearSpan > 0 {
		out = fmt.Sprintf("%s year:%d-%d", out, refYear-q.YearSpan, refYear)
	}
	return out
}

// LanguagePatterns drives the classifier for one language.
type LanguagePatterns struct {
	Language models.Language

	Artists     []string
	ArtistBonus float64

	Cultural   TermRule
	MovieTerms TermRule
	Phonetic   TermRule
	Words      TermRule

	Script      *unicode.RangeTable
	ScriptBonus float64

	// VerifiedBonus stacks when the artist is an exact name or alias in the profile table.
	VerifiedBonus float64

	// AbsenceBonus applies when none of AbsenceMarkers and none of the
	// other languages' artists appear in the text.
	AbsenceMarkers []string
	AbsenceBonus   float64

	// MoodKeywordWeight is the scorer's bonus per matched mood keyword from this language's table.
	MoodKeywordWeight float64

	// Broad queries back the secondary search tier; Emergency the last one.
	Broad     []QueryTemplate
	Emergency []QueryTemplate
}

func tamilPatterns() LanguagePatterns {
	return LanguagePatterns{
		Language: models.LanguageTamil,
		Artists: []string{
			"anirudh ravichander", "anirudh", "harris jayaraj", "harris", "a.r. rahman", "rahman",
			"yuvan shankar raja", "yuvan", "ilaiyaraaja", "ilaiyaraja", "gv prakash", "g.v. prakash",
			"d. imman", "imman", "hiphop tamizha", "hht", "santhosh narayanan", "santhosh",
			"s. thaman", "thaman", "devi sri prasad", "dsp", "vishal-shekhar", "sean roldan",
			"sid sriram", "shreya ghoshal", "hariharan", "karthik", "chinmayi", "krish",
			"shaan rahman", "pradeep kumar", "ranjith", "sam c.s", "ron ethan yohann",
			"santhosh dhayanidhi", "jakes bejoy", "ghibran", "vijay antony", "c. sathya",
		},
		ArtistBonus: 70,
		Cultural: TermRule{
			Terms: []string{
				"kollywood", "tamil cinema", "tamilnadu", "chennai", "madras", "tamil movie",
				"thalapathy", "superstar", "ulaganayagan", "captain", "chiyaan", "suriya", "vijay",
				"rajinikanth", "kamal hassan", "kamal haasan", "dhanush", "karthi", "sivakarthikeyan",
				"vikram", "vishal", "arya", "jayam ravi", "simbu", "silambarasan", "trisha",
				"nayanthara", "samantha", "kajal", "shruti", "tamil nadu", "coimbatore", "madurai",
				"salem", "trichy", "tiruchirappalli",
			},
			PerMatch: 15, Cap: 40, MinMatches: 1,
		},
		MovieTerms: TermRule{
			Terms: []string{
				"from", "movie", "film", "cinema", "padal", "song", "album", "soundtrack",
				"theme music", "background score", "bgm", "title track", "kuthu", "gaana", "folk",
				"classical", "carnatic", "devotional", "bhajan", "kirtan",
			},
			PerMatch: 8, Cap: 20, MinMatches: 1,
		},
		Phonetic: TermRule{
			Terms: []string{
				"aa", "ee", "ii", "oo", "uu", "ai", "au", "th", "zh", "ng", "ny", "kk", "ll", "nn",
				"rr", "ss", "tt", "pp", "mm", "zha", "nga", "tha", "dha", "cha", "ja", "gna", "sha",
				"ksha", "sri", "shri",
			},
			PerMatch: 5, Cap: 30, MinMatches: 2,
		},
		Words: TermRule{
			Terms: []string{
				"kadhal", "love", "kannu", "heart", "vaasal", "thendral", "mazhai", "nilavu",
				"suryan", "kannamma", "thangam", "chellam", "kutti", "papa", "amma", "appa", "annan",
				"akka", "thambi", "thangachi", "mama", "mami", "pappa", "thatha", "paatti", "vaanga",
				"ponga", "vanakkam", "nallavanga",
			},
			PerMatch: 8, Cap: 25, MinMatches: 1,
		},
		Script:            unicode.Tamil,
		ScriptBonus:       15,
		VerifiedBonus:     20,
		MoodKeywordWeight: 15,
		Broad: []QueryTemplate{
			{Name: "Kollywood", Query: "kollywood {mood}", YearSpan: 6, Expected: 25},
			{Name: "Tamil Cinema", Query: "tamil cinema {mood}", YearSpan: 9, Expected: 30},
			{Name: "Indian Market", Query: "market:IN {mood}", YearSpan: 6, Expected: 35},
		},
		Emergency: []QueryTemplate{
			{Name: "Kollywood Any Year", Query: "kollywood {mood}", Expected: 50},
			{Name: "Tamil Songs", Query: "tamil {mood} songs", Expected: 100},
			{Name: "Tamil Broad", Query: "tamil {mood}", Expected: 75},
		},
	}
}

func englishPatterns() LanguagePatterns {
	return LanguagePatterns{
		Language: models.LanguageEnglish,
		Artists: []string{
			"taylor swift", "ariana grande", "drake", "the weeknd", "billie eilish", "dua lipa",
			"ed sheeran", "adele", "bruno mars", "post malone", "travis scott", "kendrick lamar",
			"eminem", "kanye west", "beyonce", "rihanna", "justin bieber", "selena gomez",
			"sam smith", "john legend", "alicia keys", "calvin harris", "david guetta",
			"martin garrix", "tiesto", "coldplay", "maroon 5", "imagine dragons", "onerepublic",
			"twenty one pilots",
		},
		ArtistBonus: 70,
		Cultural: TermRule{
			Terms: []string{
				"hollywood", "billboard", "grammy", "american", "british", "uk", "us", "pop music",
				"rock music", "hip hop", "rap music", "r&b", "country", "nashville", "los angeles",
				"new york", "london", "american idol",
			},
			PerMatch: 10, Cap: 30, MinMatches: 1,
		},
		Words: TermRule{
			Terms: []string{
				"the", "and", "you", "me", "my", "love", "on", "in", "to", "for", "with", "your",
				"all", "we", "this", "that", "but", "not", "or", "as", "what", "if", "can", "do",
				"will", "up", "out", "time",
			},
			PerMatch: 2, Cap: 25, MinMatches: 3, WholeWord: true,
		},
		VerifiedBonus:     20,
		AbsenceMarkers:    []string{"kollywood", "tamil"},
		AbsenceBonus:      10,
		MoodKeywordWeight: 12,
		Broad: []QueryTemplate{
			{Name: "Pop Genre", Query: "genre:pop {mood}", YearSpan: 4, Expected: 30},
			{Name: "Billboard", Query: "playlist:billboard {mood}", YearSpan: 4, Expected: 25},
			{Name: "Popular", Query: "{mood} popular", YearSpan: 5, Expected: 40},
		},
		Emergency: []QueryTemplate{
			{Name: "Any Year", Query: "{mood} music", Expected: 50},
			{Name: "Pop Genre Any Year", Query: "genre:pop {mood}", Expected: 100},
			{Name: "Broad", Query: "{mood}", Expected: 150},
		},
	}
}
