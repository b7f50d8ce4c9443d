/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Track is a catalog entity. The pipeline copies it but never mutates it.
type Track struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artist       string            `json:"artist"`
	Album        string            `json:"album,omitempty"`
	PreviewURL   string            `json:"preview_url,omitempty"`
	Popularity   *int              `json:"popularity,omitempty"`
	ReleaseDate  string            `json:"release_date,omitempty"`
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
}

// Key returns the normalized (title, artist) identity used for dedup.
func (t Track) Key() string {
	return TrackKey(t.Name, t.Artist)
}

// ReleaseYear parses the leading year of ReleaseDate ("2023", "2023-05", "2023-05-01").
func (t Track) ReleaseYear() (int, bool) {
	date := strings.TrimSpace(t.ReleaseDate)
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// Label renders "title by artist".
func (t Track) Label() string {
	return t.Name + " by " + t.Artist
}

// TrackKey builds the case-folded composite key for a title/artist pair.
func TrackKey(name, artist string) string {
	return foldKey(name) + "_" + foldKey(artist)
}

func foldKey(s string) string {
	// cases.Caser carries state, so a fresh one is used per call.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// IntPtr is a small helper for optional popularity values.
func IntPtr(v int) *int {
	return &v
}
