/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package randomizer

import "github.com/friendsincode/smartalarm/internal/models"

// recentVarietyWindow is the number of latest plays examined for variety.
const recentVarietyWindow = 10

// Stats summarizes the history for a mood and language.
type Stats struct {
	TotalUniqueTracks int                      `json:"total_unique_tracks"`
	AveragePlayCount  float64                  `json:"average_play_count"`
	MostPlayed        *models.PlayHistoryEntry `json:"most_played,omitempty"`
	// RecentVariety is the share of distinct tracks among the last plays, in percent.
	RecentVariety float64 `json:"recent_variety"`
}

// Stats reports variety figures. Empty mood or lang match everything.
func (h *History) Stats(mood models.Mood, lang models.Language) Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	var filtered []models.PlayHistoryEntry
	for _, e := range h.entries {
		if mood != "" && e.Mood != mood {
			continue
		}
		if lang != "" && e.Language != lang {
			continue
		}
		filtered = append(filtered, e)
	}

	var s Stats
	s.TotalUniqueTracks = len(filtered)
	if len(filtered) == 0 {
		return s
	}

	total := 0
	for i := range filtered {
		total += filtered[i].PlayCount
		if s.MostPlayed == nil || filtered[i].PlayCount > s.MostPlayed.PlayCount {
			most := filtered[i]
			s.MostPlayed = &most
		}
	}
	s.AveragePlayCount = float64(total) / float64(len(filtered))

	// entries are kept most-recent first
	recent := filtered
	if len(recent) > recentVarietyWindow {
		recent = recent[:recentVarietyWindow]
	}
	unique := make(map[string]struct{}, len(recent))
	for _, e := range recent {
		unique[e.Identity()] = struct{}{}
	}
	s.RecentVariety = float64(len(unique)) / float64(len(recent)) * 100
	return s
}
