/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package spotify

import "github.com/friendsincode/smartalarm/internal/models"

type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []spotifyArtist   `json:"artists"`
	Album        spotifyAlbum      `json:"album"`
	PreviewURL   *string           `json:"preview_url"`
	Popularity   *int              `json:"popularity"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// mapTrack keeps the first credited artist only.
func mapTrack(t spotifyTrack) models.Track {
	artist := unknownArtist
	if len(t.Artists) > 0 && t.Artists[0].Name != "" {
		artist = t.Artists[0].Name
	}
	out := models.Track{
		ID:           t.ID,
		Name:         t.Name,
		Artist:       artist,
		Album:        t.Album.Name,
		Popularity:   t.Popularity,
		ReleaseDate:  t.Album.ReleaseDate,
		ExternalURLs: t.ExternalURLs,
	}
	if t.PreviewURL != nil {
		out.PreviewURL = *t.PreviewURL
	}
	return out
}
