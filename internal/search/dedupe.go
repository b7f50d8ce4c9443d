/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package search

import "github.com/friendsincode/smartalarm/internal/models"

// Dedupe keeps the first track for each normalized (title, artist) key,
// preserving order. Dedupe(Dedupe(x)) == Dedupe(x).
func Dedupe(tracks []models.Track) []models.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		key := t.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// collector deduplicates incrementally so tier decisions see unique counts.
type collector struct {
	seen   map[string]struct{}
	tracks []models.Track
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) add(tracks []models.Track) int {
	added := 0
	for _, t := range tracks {
		key := t.Key()
		if _, dup := c.seen[key]; dup {
			continue
		}
		c.seen[key] = struct{}{}
		c.tracks = append(c.tracks, t)
		added++
	}
	return added
}

func (c *collector) len() int { return len(c.tracks) }
