/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package langdetect ranks the likely language of a title/artist pair.
package langdetect

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/musicdb"
)

// DefaultQuickDetectThreshold is the minimum confidence QuickDetect accepts.
const DefaultQuickDetectThreshold = 60

// Evidence flags which signal families matched.
type Evidence struct {
	ArtistMatch   bool `json:"artist_match"`
	KeywordMatch  bool `json:"keyword_match"`
	PhoneticMatch bool `json:"phonetic_match"`
	CulturalMatch bool `json:"cultural_match"`
	ScriptMatch   bool `json:"script_match"`
}

// Score is the classifier output for one language.
type Score struct {
	Language   models.Language `json:"language"`
	Confidence float64         `json:"confidence"`
	Reasons    []string        `json:"reasons"`
	Evidence   Evidence        `json:"evidence"`
}

// Classifier scores text against the language tables. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	db        *musicdb.Database
	threshold float64
}

// New creates a classifier over db.
func New(db *musicdb.Database) *Classifier {
	return &Classifier{db: db, threshold: DefaultQuickDetectThreshold}
}

// WithThreshold returns a copy using a different QuickDetect threshold.
func (c *Classifier) WithThreshold(threshold float64) *Classifier {
	cp := *c
	if threshold > 0 {
		cp.threshold = threshold
	}
	return &cp
}

// Classify returns one score per supported language, highest confidence first.
func (c *Classifier) Classify(title, artist string) []Score {
	in := input{
		text:      lower(title + " " + artist),
		artist:    lower(artist),
		rawText:   title + " " + artist,
		rawArtist: strings.TrimSpace(artist),
	}
	in.words = strings.Fields(in.text)

	langs := c.db.Languages()
	scores := make([]Score, 0, len(langs))
	for _, lang := range langs {
		patterns, _ := c.db.LanguagePatterns(lang)
		scores = append(scores, c.analyze(in, patterns))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Confidence > scores[j].Confidence
	})
	return scores
}

// QuickDetect returns the top language when it clears the threshold, else Unknown.
func (c *Classifier) QuickDetect(title, artist string) models.Language {
	scores := c.Classify(title, artist)
	if len(scores) > 0 && scores[0].Confidence >= c.threshold {
		return scores[0].Language
	}
	return models.LanguageUnknown
}

// Explain renders the top score as a single line.
func (c *Classifier) Explain(title, artist string) string {
	scores := c.Classify(title, artist)
	if len(scores) == 0 {
		return "Detection: Unknown"
	}
	top := scores[0]
	return fmt.Sprintf("Detection: %s (%.0f%% confidence); reasons: %s", top.Language, top.Confidence, strings.Join(top.Reasons, ", "))
}

type input struct {
	text      string
	artist    string
	words     []string
	rawText   string
	rawArtist string
}

func (c *Classifier) analyze(in input, p musicdb.LanguagePatterns) Score {
	score := Score{Language: p.Language, Reasons: []string{}}
	var total float64

	if hit, ok := firstContained(p.Artists, in.text, in.artist); ok {
		total += p.ArtistBonus
		score.Evidence.ArtistMatch = true
		score.Reasons = append(score.Reasons, fmt.Sprintf("Detected %s artist: %s", p.Language, hit))
	}

	if pts, hits := applyRule(p.Cultural, in); pts > 0 {
		total += pts
		score.Evidence.CulturalMatch = true
		score.Reasons = append(score.Reasons, fmt.Sprintf("%s cultural terms: %s", p.Language, join(hits, 0)))
	}

	if pts, hits := applyRule(p.MovieTerms, in); pts > 0 {
		total += pts
		score.Reasons = append(score.Reasons, fmt.Sprintf("%s movie terms: %s", p.Language, join(hits, 0)))
	}

	if pts, hits := applyRule(p.Phonetic, in); pts > 0 {
		total += pts
		score.Evidence.PhoneticMatch = true
		score.Reasons = append(score.Reasons, fmt.Sprintf("%s phonetic patterns: %s", p.Language, join(hits, 5)))
	}

	if pts, hits := applyRule(p.Words, in); pts > 0 {
		total += pts
		score.Evidence.KeywordMatch = true
		score.Reasons = append(score.Reasons, fmt.Sprintf("%s words: %s", p.Language, join(hits, 8)))
	}

	if p.Script != nil && hasScript(in.rawText, p.Script) {
		total += p.ScriptBonus
		score.Evidence.ScriptMatch = true
		score.Reasons = append(score.Reasons, fmt.Sprintf("%s script detected", p.Language))
	}

	if profile, ok := c.db.FindArtist(in.rawArtist, p.Language); ok {
		total += p.VerifiedBonus
		score.Reasons = append(score.Reasons, fmt.Sprintf("Verified %s artist in database: %s", p.Language, profile.Name))
	}

	if p.AbsenceBonus > 0 && !c.foreignIndicators(in.text, p) {
		total += p.AbsenceBonus
		score.Reasons = append(score.Reasons, "No other-language indicators found")
	}

	score.Confidence = math.Max(0, math.Min(100, total))
	return score
}

// foreignIndicators reports whether text carries markers of a language other than p's.
func (c *Classifier) foreignIndicators(text string, p musicdb.LanguagePatterns) bool {
	for _, marker := range p.AbsenceMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	for _, lang := range c.db.Languages() {
		if lang == p.Language {
			continue
		}
		other, _ := c.db.LanguagePatterns(lang)
		if _, ok := firstContained(other.Artists, text, ""); ok {
			return true
		}
	}
	return false
}

func applyRule(rule musicdb.TermRule, in input) (float64, []string) {
	if len(rule.Terms) == 0 {
		return 0, nil
	}
	var hits []string
	for _, term := range rule.Terms {
		if rule.WholeWord {
			if containsWord(in.words, term) {
				hits = append(hits, term)
			}
			continue
		}
		if strings.Contains(in.text, term) {
			hits = append(hits, term)
		}
	}
	minMatches := rule.MinMatches
	if minMatches < 1 {
		minMatches = 1
	}
	if len(hits) < minMatches {
		return 0, nil
	}
	return math.Min(rule.Cap, float64(len(hits))*rule.PerMatch), hits
}

func firstContained(terms []string, text, artist string) (string, bool) {
	for _, term := range terms {
		if strings.Contains(text, term) || (artist != "" && strings.Contains(artist, term)) {
			return term, true
		}
	}
	return "", false
}

func containsWord(words []string, word string) bool {
	for _, w := range words {
		if w == word {
			return true
		}
	}
	return false
}

func hasScript(s string, table *unicode.RangeTable) bool {
	for _, r := range s {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

func join(items []string, limit int) string {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return strings.Join(items, ", ")
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
