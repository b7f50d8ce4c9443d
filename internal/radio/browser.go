/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package radio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDirectoryURL is the public radio-browser.info mirror.
const DefaultDirectoryURL = "https://de1.api.radio-browser.info"

const (
	userAgent    = "smartalarm/1.0"
	searchLimit  = 20
	countryLimit = 50
	defaultGenre = "Various"
)

// Browser queries the radio-browser.info station directory. Lookups
// never fail: on any error the built-in tables are returned.
type Browser struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewBrowser creates a directory client. An empty baseURL uses the public
// directory.
func NewBrowser(httpClient *http.Client, baseURL string, logger zerolog.Logger) *Browser {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultDirectoryURL
	}
	return &Browser{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With().Str("component", "radio").Logger(),
	}
}

// Search finds stations by name, most clicked first.
func (b *Browser) Search(ctx context.Context, name string) []Station {
	q := url.Values{}
	q.Set("name", name)
	q.Set("limit", fmt.Sprint(searchLimit))
	q.Set("order", "clickcount")
	q.Set("reverse", "true")
	stations, err := b.fetch(ctx, "/json/stations/search?"+q.Encode())
	if err != nil {
		b.logger.Warn().Err(err).Str("query", name).Msg("station search failed, using default stations")
		return append([]Station(nil), DefaultStations...)
	}
	return stations
}

// ByCountry lists a country's most clicked stations.
func (b *Browser) ByCountry(ctx context.Context, country string) []Station {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(countryLimit))
	q.Set("order", "clickcount")
	q.Set("reverse", "true")
	stations, err := b.fetch(ctx, "/json/stations/bycountry/"+url.PathEscape(country)+"?"+q.Encode())
	if err != nil {
		b.logger.Warn().Err(err).Str("country", country).Msg("country lookup failed, using local stations")
		return append([]Station(nil), LocalStations...)
	}
	return stations
}

type directoryStation struct {
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLResolved string `json:"url_resolved"`
	Country     string `json:"country"`
	Tags        string `json:"tags"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Language    string `json:"language"`
}

func (b *Browser) fetch(ctx context.Context, path string) ([]Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query directory: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query directory: status %d", resp.StatusCode)
	}

	var raw []directoryStation
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}
	out := make([]Station, 0, len(raw))
	for _, s := range raw {
		streamURL := s.URLResolved
		if streamURL == "" {
			streamURL = s.URL
		}
		genre := s.Tags
		if genre == "" {
			genre = defaultGenre
		}
		out = append(out, Station{
			ID:       s.StationUUID,
			Name:     s.Name,
			URL:      streamURL,
			Country:  s.Country,
			Genre:    genre,
			Homepage: s.Homepage,
			Favicon:  s.Favicon,
			Language: s.Language,
		})
	}
	return out, nil
}
