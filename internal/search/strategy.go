/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package search

import (
	"fmt"
	"sort"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/musicdb"
)

// Tier is a fallback level. Lower tiers are more specific and run first.
type Tier int

const (
	TierPrimary   Tier = 1
	TierSecondary Tier = 2
	TierEmergency Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("tier%d", int(t))
	}
}

// Priority bases per tier. Rank 1 is the strongest strategy.
const (
	artistPriorityBase    = 1
	patternPriorityBase   = 4
	secondaryPriorityBase = 10
	emergencyPriorityBase = 20
)

// Strategy is one catalog query. Strategies are rebuilt per request.
type Strategy struct {
	Name            string          `json:"name"`
	Query           string          `json:"query"`
	Priority        int             `json:"priority"`
	Language        models.Language `json:"language"`
	Description     string          `json:"description"`
	Tier            Tier            `json:"tier"`
	ExpectedResults int             `json:"expected_results"`
}

// Primary builds artist-targeted and mood-pattern strategies for each
// language, ordered by priority rank.
func Primary(db *musicdb.Database, mood models.Mood, langs []models.Language, artistsPerLang, year int) []Strategy {
	var out []Strategy
	window := fmt.Sprintf("year:%d-%d", year-4, year)

	for _, lang := range langs {
		for i, artist := range db.ArtistsByMood(mood, lang, artistsPerLang) {
			out = append(out, Strategy{
				Name:            fmt.Sprintf("%s Artist Expert Search - %s", lang, artist.Name),
				Query:           fmt.Sprintf("artist:%q %s %s", artist.Name, mood.Query(), window),
				Priority:        artistPriorityBase + i,
				Language:        lang,
				Description:     fmt.Sprintf("%s songs by %s (%s expert)", mood, artist.Name, lang),
				Tier:            TierPrimary,
				ExpectedResults: 15,
			})
		}

		pattern, ok := db.MoodPattern(mood, lang)
		if !ok {
			continue
		}
		for i, term := range pattern.SearchTerms {
			out = append(out, Strategy{
				Name:            fmt.Sprintf("%s Mood Pattern Search %d", lang, i+1),
				Query:           fmt.Sprintf("%s %s", term, window),
				Priority:        patternPriorityBase + i,
				Language:        lang,
				Description:     fmt.Sprintf("%s %s pattern: %s", lang, mood, term),
				Tier:            TierPrimary,
				ExpectedResults: 20,
			})
		}
	}
	sortByPriority(out)
	return out
}

// Secondary builds broad genre/market queries with no artist targeting.
func Secondary(db *musicdb.Database, mood models.Mood, langs []models.Language, year int) []Strategy {
	return fromTemplates(db, mood, langs, year, TierSecondary, secondaryPriorityBase, func(p musicdb.LanguagePatterns) []musicdb.QueryTemplate {
		return p.Broad
	})
}

// Emergency builds filter-free queries that should always match something.
func Emergency(db *musicdb.Database, mood models.Mood, langs []models.Language, year int) []Strategy {
	return fromTemplates(db, mood, langs, year, TierEmergency, emergencyPriorityBase, func(p musicdb.LanguagePatterns) []musicdb.QueryTemplate {
		return p.Emergency
	})
}

func fromTemplates(db *musicdb.Database, mood models.Mood, langs []models.Language, year int, tier Tier, base int, pick func(musicdb.LanguagePatterns) []musicdb.QueryTemplate) []Strategy {
	var out []Strategy
	for _, lang := range langs {
		patterns, ok := db.LanguagePatterns(lang)
		if !ok {
			continue
		}
		for i, tmpl := range pick(patterns) {
			out = append(out, Strategy{
				Name:            fmt.Sprintf("%s %s Search - %s", lang, tier, tmpl.Name),
				Query:           tmpl.Render(mood, year),
				Priority:        base + i,
				Language:        lang,
				Description:     fmt.Sprintf("%s %s fallback for %s", lang, tier, mood),
				Tier:            tier,
				ExpectedResults: tmpl.Expected,
			})
		}
	}
	sortByPriority(out)
	return out
}

func sortByPriority(s []Strategy) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Priority < s[j].Priority })
}
