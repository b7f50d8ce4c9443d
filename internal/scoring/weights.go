/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scoring

// Weights combines the ten dimension sub-scores. They must sum to 1.
type Weights struct {
	LanguageMatch     float64 `json:"language_match"`
	MoodRelevance     float64 `json:"mood_relevance"`
	ArtistAuthority   float64 `json:"artist_authority"`
	Popularity        float64 `json:"popularity"`
	Recency           float64 `json:"recency"`
	CulturalAlignment float64 `json:"cultural_alignment"`
	UserPreference    float64 `json:"user_preference"`
	AcousticMatch     float64 `json:"acoustic_match"`
	Trending          float64 `json:"trending"`
	Contextual        float64 `json:"contextual"`
}

// DefaultWeights favours language accuracy, then mood.
func DefaultWeights() Weights {
	return Weights{
		LanguageMatch:     0.35,
		MoodRelevance:     0.20,
		ArtistAuthority:   0.15,
		Popularity:        0.10,
		Recency:           0.05,
		CulturalAlignment: 0.05,
		UserPreference:    0.05,
		AcousticMatch:     0.03,
		Trending:          0.01,
		Contextual:        0.01,
	}
}

// Sum adds every weight.
func (w Weights) Sum() float64 {
	return w.LanguageMatch + w.MoodRelevance + w.ArtistAuthority + w.Popularity +
		w.Recency + w.CulturalAlignment + w.UserPreference + w.AcousticMatch +
		w.Trending + w.Contextual
}

// Breakdown holds the raw 0-100 sub-score for each dimension.
type Breakdown struct {
	LanguageMatch     float64 `json:"language_match"`
	MoodRelevance     float64 `json:"mood_relevance"`
	ArtistAuthority   float64 `json:"artist_authority"`
	Popularity        float64 `json:"popularity"`
	Recency           float64 `json:"recency"`
	CulturalAlignment float64 `json:"cultural_alignment"`
	UserPreference    float64 `json:"user_preference"`
	AcousticMatch     float64 `json:"acoustic_match"`
	Trending          float64 `json:"trending"`
	Contextual        float64 `json:"contextual"`
}

// Total is the weighted sum of the breakdown.
func (b Breakdown) Total(w Weights) float64 {
	return b.LanguageMatch*w.LanguageMatch +
		b.MoodRelevance*w.MoodRelevance +
		b.ArtistAuthority*w.ArtistAuthority +
		b.Popularity*w.Popularity +
		b.Recency*w.Recency +
		b.CulturalAlignment*w.CulturalAlignment +
		b.UserPreference*w.UserPreference +
		b.AcousticMatch*w.AcousticMatch +
		b.Trending*w.Trending +
		b.Contextual*w.Contextual
}
