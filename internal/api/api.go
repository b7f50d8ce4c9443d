/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	ws "nhooyr.io/websocket"

	"github.com/friendsincode/smartalarm/internal/alarm"
	"github.com/friendsincode/smartalarm/internal/calendar"
	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/langdetect"
	"github.com/friendsincode/smartalarm/internal/learning"
	"github.com/friendsincode/smartalarm/internal/prediction"
	"github.com/friendsincode/smartalarm/internal/radio"
	"github.com/friendsincode/smartalarm/internal/randomizer"
	"github.com/friendsincode/smartalarm/internal/session"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

const (
	maxBodyBytes       = 1 << 20
	eventPingInterval  = 15 * time.Second
	eventPollInterval  = 100 * time.Millisecond
	defaultMaxSelected = 20
)

// Deps are the services behind the HTTP handlers. Calendar, Radio and
// Predictor may be nil.
type Deps struct {
	Selector   session.Selector
	Classifier *langdetect.Classifier
	Alarms     *alarm.Store
	Session    *session.Controller
	Learning   *learning.Store
	History    *randomizer.History
	Calendar   calendar.Provider
	Radio      *radio.Browser
	Predictor  *prediction.Predictor
	Bus        *events.Bus
}

// API exposes HTTP handlers.
type API struct {
	deps   Deps
	logger zerolog.Logger
	now    func() time.Time
}

// New creates the API router wrapper.
func New(deps Deps, logger zerolog.Logger) *API {
	return &API{
		deps:   deps,
		logger: logger.With().Str("component", "api").Logger(),
		now:    time.Now,
	}
}

// WithClock replaces the clock. Its location is the alarm time zone.
func (a *API) WithClock(now func() time.Time) *API {
	a.now = now
	return a
}

// Routes mounts the API under /api/v1.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Post("/select", a.handleSelect)
		r.Post("/classify", a.handleClassify)

		r.Route("/alarms", func(r chi.Router) {
			r.Get("/", a.handleAlarmsList)
			r.Post("/", a.handleAlarmsCreate)
			r.Route("/{alarmID}", func(r chi.Router) {
				r.Get("/", a.handleAlarmsGet)
				r.Put("/", a.handleAlarmsUpdate)
				r.Delete("/", a.handleAlarmsDelete)
				r.Post("/trigger", a.handleAlarmsTrigger)
			})
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", a.handleSessionStatus)
			r.Post("/stop", a.handleSessionStop)
			r.Post("/snooze", a.handleSessionSnooze)
			r.Post("/volume", a.handleSessionVolume)
			r.Post("/next", a.handleSessionNext)
		})

		r.Post("/interactions", a.handleInteraction)

		r.Get("/learning/insights", a.handleLearningInsights)
		r.Get("/learning/recommendations", a.handleLearningRecommendations)
		r.Delete("/learning", a.handleLearningReset)

		r.Get("/history/stats", a.handleHistoryStats)
		r.Delete("/history", a.handleHistoryReset)

		r.Post("/predict", a.handlePredict)
		r.Get("/prediction/baseline", a.handlePredictionBaseline)
		r.Delete("/prediction/baseline", a.handlePredictionReset)

		r.Get("/calendar/script", a.handleCalendarScript)
		r.Get("/radio/stations", a.handleRadioStations)

		r.Get("/events", a.handleEvents)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"session": a.deps.Session.Status().State,
	})
}

func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if a.deps.Bus == nil {
		writeError(w, http.StatusServiceUnavailable, "events_unavailable")
		return
	}
	ctx := r.Context()
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		a.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	telemetry.APIWebSocketConnections.Inc()
	defer telemetry.APIWebSocketConnections.Dec()

	eventTypes := parseEventTypes(r.URL.Query().Get("types"))
	if len(eventTypes) == 0 {
		eventTypes = events.AllEventTypes
	}

	subscribers := make([]events.Subscriber, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		subscribers = append(subscribers, a.deps.Bus.Subscribe(eventType))
	}
	defer func() {
		for i, eventType := range eventTypes {
			a.deps.Bus.Unsubscribe(eventType, subscribers[i])
		}
	}()

	ticker := time.NewTicker(eventPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(ws.StatusNormalClosure, "context cancelled")
			return
		case <-ticker.C:
			if err := conn.Write(ctx, ws.MessageText, []byte(`{"type":"ping"}`)); err != nil {
				a.logger.Debug().Err(err).Msg("websocket ping failed")
				conn.Close(ws.StatusInternalError, "write failed")
				return
			}
		default:
			sent := false
			for i, sub := range subscribers {
				select {
				case payload, ok := <-sub:
					if !ok {
						continue
					}
					if err := writeEvent(ctx, conn, eventTypes[i], payload); err != nil {
						a.logger.Debug().Err(err).Msg("websocket write failed")
						conn.Close(ws.StatusInternalError, "write failed")
						return
					}
					sent = true
				default:
				}
			}
			if !sent {
				time.Sleep(eventPollInterval)
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *ws.Conn, eventType events.EventType, payload events.Payload) error {
	data := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.Write(ctx, ws.MessageText, bytes)
}

func parseEventTypes(raw string) []events.EventType {
	if raw == "" {
		return nil
	}
	known := make(map[events.EventType]bool, len(events.AllEventTypes))
	for _, et := range events.AllEventTypes {
		known[et] = true
	}
	var out []events.EventType
	for _, part := range strings.Split(raw, ",") {
		et := events.EventType(strings.TrimSpace(part))
		if known[et] {
			out = append(out, et)
		}
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
