/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package spotify is the catalog search adapter for the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Default endpoints.
const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultMarket   = "US"

	maxSearchLimit = 50
	unknownArtist  = "Unknown Artist"
)

// Config holds the client credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	Market       string
	MaxRetries   int
	Backoff      time.Duration
	Timeout      time.Duration
}

// Client searches the catalog.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	market      string
	maxRetries  int
	baseBackoff time.Duration
	logger      zerolog.Logger
}

// New returns a client whose requests carry a client-credentials token.
// The token is fetched lazily and refreshed when it expires.
func New(cfg Config, logger zerolog.Logger) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cc.Client(context.Background())
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	c := NewWithHTTPClient(httpClient, cfg.BaseURL, cfg.Market, logger)
	c.maxRetries = cfg.MaxRetries
	c.baseBackoff = cfg.Backoff
	return c
}

// NewWithHTTPClient wraps an already authorized http.Client.
func NewWithHTTPClient(httpClient *http.Client, baseURL, market string, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if market == "" {
		market = DefaultMarket
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		market:     market,
		logger:     logger.With().Str("component", "spotify").Logger(),
	}
}

// Search runs a free-text track search.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	searchURL, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid search url: %w", err)
	}
	q := searchURL.Query()
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("market", c.market)
	searchURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify adapter: search status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("spotify adapter: decode search: %w", err)
	}

	tracks := make([]models.Track, 0, len(sr.Tracks.Items))
	for _, item := range sr.Tracks.Items {
		tracks = append(tracks, mapTrack(item))
	}
	c.logger.Debug().Str("query", query).Int("tracks", len(tracks)).Msg("search completed")
	return tracks, nil
}
