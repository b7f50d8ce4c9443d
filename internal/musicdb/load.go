/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package musicdb

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Overrides is the YAML document accepted by LoadFile.
//
//	reference_year: 2025
//	artists:
//	  - name: Sai Abhyankkar
//	    language: Tamil
//	    popularity: 80
//	    active_from: 2024
//	    mood_strength: {Dance: 90, Energetic: 85}
//	mood_patterns:
//	  Calm:
//	    English:
//	      keywords: [calm, lofi]
//	      search_terms: [lofi morning]
type Overrides struct {
	ReferenceYear int                                             `yaml:"reference_year"`
	Artists       []ArtistProfile                                 `yaml:"artists"`
	MoodPatterns  map[models.Mood]map[models.Language]MoodPattern `yaml:"mood_patterns"`
}

// LoadFile returns the default tables with the overrides in path applied.
// An empty path returns the defaults.
func LoadFile(path string) (*Database, error) {
	db := Default()
	if strings.TrimSpace(path) == "" {
		return db, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read music tables %s: %w", path, err)
	}
	if err := db.Apply(data); err != nil {
		return nil, fmt.Errorf("apply music tables %s: %w", path, err)
	}
	return db, nil
}

// Apply merges a YAML override document into d. Artists are added or
// replaced by name within their language; mood patterns are replaced per
// (mood, language).
func (d *Database) Apply(data []byte) error {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}

	if o.ReferenceYear > 0 {
		d.ReferenceYear = o.ReferenceYear
	}

	for _, artist := range o.Artists {
		if strings.TrimSpace(artist.Name) == "" {
			return fmt.Errorf("artist override without name")
		}
		if !artist.Language.Supported() {
			return fmt.Errorf("artist %q: %w: %q", artist.Name, models.ErrInvalidLanguage, artist.Language)
		}
		for mood := range artist.MoodStrength {
			if !mood.Valid() {
				return fmt.Errorf("artist %q: %w: %q", artist.Name, models.ErrInvalidMood, mood)
			}
		}
		d.upsertArtist(artist)
	}

	for mood, byLang := range o.MoodPatterns {
		if !mood.Valid() {
			return fmt.Errorf("%w: %q", models.ErrInvalidMood, mood)
		}
		for lang, pattern := range byLang {
			if !lang.Supported() {
				return fmt.Errorf("mood %s: %w: %q", mood, models.ErrInvalidLanguage, lang)
			}
			if d.moods[mood] == nil {
				d.moods[mood] = languagePatterns{}
			}
			d.moods[mood][lang] = pattern
		}
	}
	return nil
}

func (d *Database) upsertArtist(artist ArtistProfile) {
	list := d.artists[artist.Language]
	for i := range list {
		if strings.EqualFold(list[i].Name, artist.Name) {
			list[i] = artist
			return
		}
	}
	d.artists[artist.Language] = append(list, artist)
}
