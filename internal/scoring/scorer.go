/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scoring ranks candidate tracks for a mood and language request
// along ten weighted dimensions.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/friendsincode/smartalarm/internal/langdetect"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/musicdb"
)

// Neutral is the sub-score for a dimension with no signal.
const Neutral = 50.0

const (
	weakLanguagePenalty     = 30.0
	mismatchLanguagePenalty = 40.0
	moodBase                = 50.0
	moodIndicatorBonus      = 20.0
	artistBase              = 30.0
	artistStrengthFactor    = 0.7
	inferredArtistFactor    = 0.3
)

// TrackScore is the scorer's verdict on one track.
type TrackScore struct {
	Track      models.Track `json:"track"`
	TotalScore float64      `json:"total_score"`
	Breakdown  Breakdown    `json:"breakdown"`
	Confidence float64      `json:"confidence"`
	Reasoning  []string     `json:"reasoning"`
}

// Scorer is a pure function of its inputs; it holds only read-only tables.
type Scorer struct {
	classifier *langdetect.Classifier
	db         *musicdb.Database
	weights    Weights
	now        func() time.Time
}

// New creates a scorer with the default weights.
func New(db *musicdb.Database, classifier *langdetect.Classifier) *Scorer {
	return &Scorer{
		classifier: classifier,
		db:         db,
		weights:    DefaultWeights(),
		now:        time.Now,
	}
}

// WithClock sets the clock used for the recency dimension.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Weights returns the active weight table.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score rates one track. snapshot may be nil.
func (s *Scorer) Score(track models.Track, mood models.Mood, langs []models.Language, snapshot *models.LearningModel) TrackScore {
	langs = models.NormalizeLanguages(langs)
	var (
		b       Breakdown
		reasons []string
	)

	var langConfidence float64
	b.LanguageMatch, langConfidence, reasons = s.languageMatch(track, langs, reasons)
	b.MoodRelevance, reasons = s.moodRelevance(track, mood, reasons)
	b.ArtistAuthority, reasons = s.artistAuthority(track, mood, langs[0], reasons)
	b.Popularity, reasons = popularity(track, reasons)
	b.Recency, reasons = recency(track, s.now().Year(), reasons)
	b.CulturalAlignment, reasons = Neutral, append(reasons, "Cultural analysis: default scoring")
	b.UserPreference, reasons = userPreference(track, snapshot, reasons)
	b.AcousticMatch, reasons = Neutral, append(reasons, "Acoustic analysis: default scoring")
	b.Trending, reasons = Neutral, append(reasons, "Trending analysis: default scoring")
	b.Contextual, reasons = Neutral, append(reasons, "Contextual analysis: default scoring")

	return TrackScore{
		Track:      track,
		TotalScore: b.Total(s.weights),
		Breakdown:  b,
		Confidence: confidence(b, langConfidence),
		Reasoning:  reasons,
	}
}

// ScoreAll rates every track and sorts by total score, highest first.
// Ties keep input order.
func (s *Scorer) ScoreAll(tracks []models.Track, mood models.Mood, langs []models.Language, snapshot *models.LearningModel) []TrackScore {
	out := make([]TrackScore, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, s.Score(t, mood, langs, snapshot))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalScore > out[j].TotalScore })
	return out
}

// languageMatch takes the best-ranked detected language that was requested.
func (s *Scorer) languageMatch(track models.Track, langs []models.Language, reasons []string) (float64, float64, []string) {
	var score, conf float64
	for _, res := range s.classifier.Classify(track.Name, track.Artist) {
		if !models.ContainsLanguage(langs, res.Language) {
			continue
		}
		score, conf = res.Confidence, res.Confidence
		reasons = append(reasons, fmt.Sprintf("Language match: %s (%.0f%% confidence)", res.Language, res.Confidence))
		switch {
		case res.Confidence >= 90:
			reasons = append(reasons, fmt.Sprintf("Perfect %s match", res.Language))
		case res.Confidence >= 70:
			reasons = append(reasons, fmt.Sprintf("Strong %s match", res.Language))
		case res.Confidence >= 50:
			reasons = append(reasons, fmt.Sprintf("Moderate %s match", res.Language))
		default:
			score = math.Max(0, score-weakLanguagePenalty)
			reasons = append(reasons, fmt.Sprintf("Weak %s match (-%.0f)", res.Language, weakLanguagePenalty))
		}
		break
	}

	primary := langs[0]
	if score < 50 && primary != models.DefaultLanguage {
		score = math.Max(0, score-mismatchLanguagePenalty)
		reasons = append(reasons, fmt.Sprintf("Language mismatch: not %s (-%.0f)", primary, mismatchLanguagePenalty))
	}
	return score, conf, reasons
}

func (s *Scorer) moodRelevance(track models.Track, mood models.Mood, reasons []string) (float64, []string) {
	score := moodBase
	text := strings.ToLower(track.Name + " " + track.Artist)

	for _, lang := range s.db.Languages() {
		pattern, ok := s.db.MoodPattern(mood, lang)
		if !ok {
			continue
		}
		lp, _ := s.db.LanguagePatterns(lang)
		var hits []string
		for _, kw := range pattern.Keywords {
			if strings.Contains(text, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > 0 {
			bonus := float64(len(hits)) * lp.MoodKeywordWeight
			score += bonus
			reasons = append(reasons, fmt.Sprintf("%s mood keywords: %s (+%.0f)", lang, strings.Join(hits, ", "), bonus))
		}
	}

	for _, ind := range s.db.MoodIndicators(mood) {
		if strings.Contains(text, ind) {
			score += moodIndicatorBonus
			reasons = append(reasons, fmt.Sprintf("Strong %s indicators (+%.0f)", strings.ToLower(string(mood)), moodIndicatorBonus))
			break
		}
	}
	return math.Min(100, score), reasons
}

func (s *Scorer) artistAuthority(track models.Track, mood models.Mood, primary models.Language, reasons []string) (float64, []string) {
	score := artistBase

	if profile, ok := s.db.FindArtist(track.Artist, primary); ok {
		strength := profile.MoodStrength[mood]
		score += strength * artistStrengthFactor
		reasons = append(reasons,
			fmt.Sprintf("Known %s artist: %s", primary, profile.Name),
			fmt.Sprintf("Mood expertise (%s): %.0f/100 (+%.0f)", mood, strength, strength*artistStrengthFactor),
		)
		switch {
		case profile.Popularity >= 90:
			score += 15
			reasons = append(reasons, "Legendary artist bonus (+15)")
		case profile.Popularity >= 80:
			score += 10
			reasons = append(reasons, "Popular artist bonus (+10)")
		}
		return math.Min(100, score), reasons
	}

	var inferred float64
	for _, lang := range s.db.Languages() {
		if lang == primary {
			continue
		}
		inferred = math.Max(inferred, s.db.ScoreArtistForMood(track.Artist, mood, lang))
	}
	if inferred > 0 {
		score += inferred * inferredArtistFactor
		reasons = append(reasons, fmt.Sprintf("Inferred artist score: %.1f (+%.0f)", inferred, inferred*inferredArtistFactor))
	} else {
		reasons = append(reasons, "Unknown artist: default scoring")
	}
	return math.Min(100, score), reasons
}

func popularity(track models.Track, reasons []string) (float64, []string) {
	pop := Neutral
	if track.Popularity != nil {
		pop = float64(*track.Popularity)
	}
	reasons = append(reasons, fmt.Sprintf("Catalog popularity: %.0f/100", pop))

	score := pop
	switch {
	case pop >= 80:
		score += 10
		reasons = append(reasons, "Viral hit (+10)")
	case pop >= 60:
		score += 5
		reasons = append(reasons, "Popular track (+5)")
	case pop < 30:
		score -= 10
		reasons = append(reasons, "Low popularity (-10)")
	}
	return clamp(score), reasons
}

func recency(track models.Track, currentYear int, reasons []string) (float64, []string) {
	year, ok := track.ReleaseYear()
	if !ok {
		return Neutral, append(reasons, "Unknown release date: default scoring")
	}

	diff := currentYear - year
	switch {
	case diff <= 0:
		return 100, append(reasons, fmt.Sprintf("Brand new release: %d", year))
	case diff == 1:
		return 85, append(reasons, fmt.Sprintf("Recent release: %d", year))
	case diff <= 3:
		return 70, append(reasons, fmt.Sprintf("Modern release: %d", year))
	case diff <= 5:
		return 60, append(reasons, fmt.Sprintf("Recent classic: %d", year))
	default:
		return 40, append(reasons, fmt.Sprintf("Older track: %d", year))
	}
}

func userPreference(track models.Track, snapshot *models.LearningModel, reasons []string) (float64, []string) {
	if snapshot != nil {
		if pref, ok := snapshot.ArtistPreferences[models.ArtistKey(track.Artist)]; ok && pref.Interactions > 0 {
			return clamp(pref.Score), append(reasons,
				fmt.Sprintf("Learned artist preference: %.0f (%d interactions)", pref.Score, pref.Interactions))
		}
	}
	return Neutral, append(reasons, "User preference: default scoring")
}

// confidence derives from the language confidence and the strong dimensions.
func confidence(b Breakdown, languageConfidence float64) float64 {
	c := languageConfidence * 0.4
	if b.ArtistAuthority > 70 {
		c += 20
	}
	if b.MoodRelevance > 70 {
		c += 20
	}
	if b.Popularity > 60 {
		c += 10
	}
	if b.Recency > 70 {
		c += 10
	}
	return math.Min(100, c)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
