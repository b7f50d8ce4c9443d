/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package radio holds the station tables and picks a station for an alarm.
package radio

import (
	"math/rand"
	"strings"
)

// Station is an internet radio stream.
type Station struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Country  string `json:"country"`
	Genre    string `json:"genre"`
	Homepage string `json:"homepage,omitempty"`
	Favicon  string `json:"favicon,omitempty"`
	Language string `json:"language,omitempty"`
}

// DefaultStations is the built-in international list.
var DefaultStations = []Station{
	{ID: "bbc-radio1", Name: "BBC Radio 1", URL: "http://stream.live.vc.bbcmedia.co.uk/bbc_radio_one", Country: "UK", Genre: "Pop/Rock", Language: "English"},
	{ID: "heart-london", Name: "Heart London", URL: "http://media-ssl.musicradio.com/HeartLondon", Country: "UK", Genre: "Pop", Language: "English"},
	{ID: "npr-news", Name: "NPR News", URL: "https://npr-ice.streamguys1.com/live.mp3", Country: "US", Genre: "News/Talk", Language: "English"},
	{ID: "classical-fm", Name: "Classic FM", URL: "http://media-ssl.musicradio.com/ClassicFM", Country: "UK", Genre: "Classical", Language: "English"},
	{ID: "jazz-fm", Name: "Jazz FM", URL: "http://edge-bauermz-01-gos2.sharp-stream.com/jazzhigh.aac", Country: "UK", Genre: "Jazz", Language: "English"},
	{ID: "smooth-radio", Name: "Smooth Radio", URL: "http://media-ssl.musicradio.com/SmoothUK", Country: "UK", Genre: "Easy Listening", Language: "English"},
}

// LocalStations is the list the alarm picks from by time of day.
var LocalStations = []Station{
	{ID: "local-pop", Name: "Local Pop FM 101.5", URL: "http://stream.live.vc.bbcmedia.co.uk/bbc_radio_one", Country: "Local", Genre: "Pop", Language: "English"},
	{ID: "local-rock", Name: "Rock City 98.7", URL: "http://media-ssl.musicradio.com/HeartLondon", Country: "Local", Genre: "Rock", Language: "English"},
	{ID: "local-news", Name: "Local News Radio AM 1010", URL: "http://playerservices.streamtheworld.com/api/livestream-redirect/TLPSTR01.mp3", Country: "Local", Genre: "News/Talk", Language: "English"},
	{ID: "local-classical", Name: "Classical FM 104.3", URL: "http://radio.canstream.co.uk:8007/live.mp3", Country: "Local", Genre: "Classical", Language: "English"},
}

// All returns the default and local stations.
func All() []Station {
	out := make([]Station, 0, len(DefaultStations)+len(LocalStations))
	out = append(out, DefaultStations...)
	return append(out, LocalStations...)
}

// Find looks a station up by id in the built-in tables.
func Find(id string) (Station, bool) {
	for _, s := range All() {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}

// PreferredGenres returns the genres favoured at hour (0-23).
func PreferredGenres(hour int) []string {
	switch {
	case hour >= 6 && hour < 10:
		return []string{"News", "Talk", "Pop"}
	case hour >= 10 && hour < 14:
		return []string{"Pop", "Easy Listening", "Jazz"}
	case hour >= 14 && hour < 18:
		return []string{"Rock", "Pop", "Jazz"}
	default:
		return []string{"Classical", "Jazz", "Easy Listening"}
	}
}

// SelectForAlarm picks uniformly among stations whose genre matches the
// hour, or among all stations when none match. It returns false only for
// an empty list.
func SelectForAlarm(stations []Station, hour int, rng *rand.Rand) (Station, bool) {
	if len(stations) == 0 {
		return Station{}, false
	}
	genres := PreferredGenres(hour)
	matching := make([]Station, 0, len(stations))
	for _, s := range stations {
		if matchesGenre(s.Genre, genres) {
			matching = append(matching, s)
		}
	}
	if len(matching) == 0 {
		matching = stations
	}
	return matching[rng.Intn(len(matching))], true
}

func matchesGenre(genre string, preferred []string) bool {
	g := strings.ToLower(genre)
	for _, p := range preferred {
		if strings.Contains(g, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
