/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

// PlayHistoryEntry records how often and how recently a track was chosen.
type PlayHistoryEntry struct {
	TrackID    string   `json:"track_id"`
	TrackName  string   `json:"track_name"`
	Artist     string   `json:"artist"`
	Mood       Mood     `json:"mood"`
	Language   Language `json:"language"`
	PlayCount  int      `json:"play_count"`
	LastPlayed int64    `json:"last_played"` // epoch ms
	UserRating int      `json:"user_rating,omitempty"`
}

// Matches reports whether the entry refers to t, by catalog id when both
// sides carry one, otherwise by the composite title/artist key.
func (e PlayHistoryEntry) Matches(t Track) bool {
	if e.TrackID != "" && t.ID != "" && e.TrackID == t.ID {
		return true
	}
	return TrackKey(e.TrackName, e.Artist) == t.Key()
}

// Identity returns the id, or the composite key when the id is absent.
func (e PlayHistoryEntry) Identity() string {
	if e.TrackID != "" {
		return e.TrackID
	}
	return TrackKey(e.TrackName, e.Artist)
}
