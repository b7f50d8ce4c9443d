/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"
	googleTokenURL        = "https://oauth2.googleapis.com/token"
	defaultCalendarID     = "primary"
	defaultTimeout        = 30 * time.Second
	allDayLayout          = "2006-01-02"
)

// GoogleConfig holds the OAuth2 client and the long-lived refresh token.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
	TokenURL     string
	BaseURL      string
}

// Google reads events from the Google Calendar v3 API.
type Google struct {
	httpClient *http.Client
	baseURL    string
	calendarID string
	logger     zerolog.Logger
}

// NewGoogle returns a client that refreshes its access token as needed.
func NewGoogle(cfg GoogleConfig, logger zerolog.Logger) *Google {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: defaultTimeout})
	httpClient := oc.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	httpClient.Timeout = defaultTimeout
	return NewGoogleWithHTTPClient(httpClient, cfg.BaseURL, cfg.CalendarID, logger)
}

// NewGoogleWithHTTPClient wraps an already authorized client.
func NewGoogleWithHTTPClient(httpClient *http.Client, baseURL, calendarID string, logger zerolog.Logger) *Google {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if baseURL == "" {
		baseURL = googleCalendarAPIBase
	}
	if calendarID == "" {
		calendarID = defaultCalendarID
	}
	return &Google{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		calendarID: calendarID,
		logger:     logger.With().Str("component", "calendar").Logger(),
	}
}

// TodaysEvents lists single events between local midnight and the next
// midnight, ordered by start time.
func (g *Google) TodaysEvents(ctx context.Context, now time.Time) ([]Event, error) {
	loc := now.Location()
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("timeMin", dayStart.Format(time.RFC3339))
	q.Set("timeMax", dayEnd.Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", g.baseURL, url.PathEscape(g.calendarID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("calendar: build request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar: list events: status %d", resp.StatusCode)
	}

	var list googleEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("calendar: decode events: %w", err)
	}

	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		if item.Status == "cancelled" {
			continue
		}
		e, err := item.toEvent(loc)
		if err != nil {
			g.logger.Debug().Err(err).Str("event_id", item.ID).Msg("skipping event with unreadable time")
			continue
		}
		events = append(events, e)
	}
	sortByStart(events)
	return events, nil
}

type googleEventList struct {
	Items []googleEvent `json:"items"`
}

type googleEvent struct {
	ID          string          `json:"id"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Status      string          `json:"status"`
	Start       googleEventTime `json:"start"`
	End         googleEventTime `json:"end"`
}

type googleEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

func (t googleEventTime) parse(loc *time.Location) (time.Time, bool, error) {
	if t.DateTime != "" {
		v, err := time.Parse(time.RFC3339, t.DateTime)
		return v, false, err
	}
	if t.Date != "" {
		v, err := time.ParseInLocation(allDayLayout, t.Date, loc)
		return v, true, err
	}
	return time.Time{}, false, fmt.Errorf("event time missing")
}

func (e googleEvent) toEvent(loc *time.Location) (Event, error) {
	start, allDay, err := e.Start.parse(loc)
	if err != nil {
		return Event{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := e.End.parse(loc)
	if err != nil {
		end = start
	}
	return Event{
		ID:          e.ID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Status:      e.Status,
	}, nil
}
