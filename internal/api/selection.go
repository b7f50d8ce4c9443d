/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/friendsincode/smartalarm/internal/calendar"
	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/learning"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/pipeline"
	"github.com/friendsincode/smartalarm/internal/radio"
	"github.com/friendsincode/smartalarm/internal/randomizer"
)

func (a *API) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	mood, err := models.ParseMood(string(req.Mood))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_mood")
		return
	}
	req.Mood = mood
	names := make([]string, len(req.Languages))
	for i, l := range req.Languages {
		names[i] = string(l)
	}
	if req.Languages, err = models.ParseLanguages(names); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_language")
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxSelected
	}

	res, err := a.deps.Selector.Select(r.Context(), req)
	if err != nil {
		a.logger.Error().Err(err).Msg("selection failed")
		writeError(w, http.StatusInternalServerError, "selection_failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Artist) == "" {
		writeError(w, http.StatusBadRequest, "title_or_artist_required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scores":       a.deps.Classifier.Classify(req.Title, req.Artist),
		"quick_detect": a.deps.Classifier.QuickDetect(req.Title, req.Artist),
		"explanation":  a.deps.Classifier.Explain(req.Title, req.Artist),
	})
}

// handleInteraction folds feedback into the learning model. A rating is
// also stored on the matching play-history entry when there is one.
func (a *API) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var in models.UserInteraction
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Timestamp == 0 {
		in.Timestamp = a.now().UnixMilli()
	}
	if err := a.deps.Learning.RecordInteraction(r.Context(), in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_interaction", "detail": err.Error()})
		return
	}

	if in.Rating > 0 && a.deps.History != nil {
		t := models.Track{ID: in.Track.ID, Name: in.Track.Name, Artist: in.Track.Artist}
		if err := a.deps.History.Rate(r.Context(), t, in.Rating); err != nil && !errors.Is(err, randomizer.ErrNotInHistory) {
			a.logger.Warn().Err(err).Str("artist", t.Artist).Msg("failed to store rating")
		}
	}

	if a.deps.Bus != nil {
		a.deps.Bus.Publish(events.EventInteractionRecorded, events.Payload{
			"action": string(in.Action),
			"artist": in.Track.Artist,
			"track":  in.Track.Name,
			"mood":   string(in.Context.Mood),
			"source": "api",
		})
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (a *API) handleLearningInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Learning.Insights())
}

func (a *API) handleLearningRecommendations(w http.ResponseWriter, r *http.Request) {
	mood, lang, ok := moodAndLanguage(w, r)
	if !ok {
		return
	}
	if mood == "" {
		mood = models.MoodNeutral
	}
	if lang == "" {
		lang = models.DefaultLanguage
	}
	now := a.now()
	writeJSON(w, http.StatusOK, a.deps.Learning.Recommendations(mood, lang, learning.Context{
		TimeOfDay: models.TimeOfDayFor(now),
		DayOfWeek: now.Weekday().String(),
	}))
}

func (a *API) handleLearningReset(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Learning.Reset(r.Context()); err != nil {
		a.logger.Error().Err(err).Msg("learning reset failed")
		writeError(w, http.StatusInternalServerError, "reset_failed")
		return
	}
	a.logger.Info().Msg("learning model reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (a *API) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	mood, lang, ok := moodAndLanguage(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.deps.History.Stats(mood, lang))
}

func (a *API) handleHistoryReset(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.History.Reset(r.Context()); err != nil {
		a.logger.Error().Err(err).Msg("history reset failed")
		writeError(w, http.StatusInternalServerError, "reset_failed")
		return
	}
	a.logger.Info().Msg("play history reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (a *API) handleCalendarScript(w http.ResponseWriter, r *http.Request) {
	if a.deps.Calendar == nil {
		writeError(w, http.StatusServiceUnavailable, "calendar_not_configured")
		return
	}
	now := a.now()
	evs, err := a.deps.Calendar.TodaysEvents(r.Context(), now)
	if err != nil {
		a.logger.Warn().Err(err).Msg("calendar fetch failed")
		writeError(w, http.StatusBadGateway, "calendar_unavailable")
		return
	}
	resp := map[string]any{
		"script":        calendar.Script(evs, now),
		"events":        evs,
		"urgent":        calendar.UrgentEvents(evs, now),
		"early_morning": calendar.HasEarlyMorningEvents(evs),
	}
	if at, ok := calendar.CheckConflict(evs, now); ok {
		resp["suggested_wake"] = at
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRadioStations searches the directory by name or country, and
// lists the built-in stations otherwise.
func (a *API) handleRadioStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, country := strings.TrimSpace(q.Get("q")), strings.TrimSpace(q.Get("country"))
	switch {
	case a.deps.Radio != nil && name != "":
		writeJSON(w, http.StatusOK, a.deps.Radio.Search(r.Context(), name))
	case a.deps.Radio != nil && country != "":
		writeJSON(w, http.StatusOK, a.deps.Radio.ByCountry(r.Context(), country))
	default:
		writeJSON(w, http.StatusOK, radio.All())
	}
}

// moodAndLanguage reads optional mood and language query parameters.
func moodAndLanguage(w http.ResponseWriter, r *http.Request) (models.Mood, models.Language, bool) {
	var (
		mood models.Mood
		lang models.Language
		err  error
	)
	if raw := r.URL.Query().Get("mood"); raw != "" {
		if mood, err = models.ParseMood(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_mood")
			return "", "", false
		}
	}
	if raw := r.URL.Query().Get("language"); raw != "" {
		if lang, err = models.ParseLanguage(raw); err != nil || lang == models.LanguageAny {
			writeError(w, http.StatusBadRequest, "invalid_language")
			return "", "", false
		}
	}
	return mood, lang, true
}
