/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/smartalarm/internal/alarm"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/session"
)

// alarmView adds the next occurrence to a stored alarm.
type alarmView struct {
	models.Alarm
	NextFire *time.Time `json:"next_fire,omitempty"`
}

func (a *API) view(al models.Alarm) alarmView {
	v := alarmView{Alarm: al}
	if al.Enabled {
		if at, err := alarm.NextFire(al, a.now()); err == nil {
			v.NextFire = &at
		}
	}
	return v
}

func (a *API) handleAlarmsList(w http.ResponseWriter, r *http.Request) {
	alarms, err := a.deps.Alarms.List(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list alarms failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	out := make([]alarmView, 0, len(alarms))
	for _, al := range alarms {
		out = append(out, a.view(al))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleAlarmsCreate(w http.ResponseWriter, r *http.Request) {
	in := models.Alarm{
		SnoozeMinutes: models.DefaultSnoozeMinutes,
		MaxSnoozes:    models.DefaultMaxSnoozes,
		Enabled:       true,
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = ""
	if err := a.deps.Alarms.Create(r.Context(), &in); err != nil {
		a.writeAlarmError(w, err, "create")
		return
	}
	writeJSON(w, http.StatusCreated, a.view(in))
}

func (a *API) handleAlarmsGet(w http.ResponseWriter, r *http.Request) {
	al, err := a.deps.Alarms.Get(r.Context(), chi.URLParam(r, "alarmID"))
	if err != nil {
		a.writeAlarmError(w, err, "get")
		return
	}
	writeJSON(w, http.StatusOK, a.view(*al))
}

// handleAlarmsUpdate decodes onto the stored alarm, so omitted fields keep
// their values.
func (a *API) handleAlarmsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "alarmID")
	al, err := a.deps.Alarms.Get(r.Context(), id)
	if err != nil {
		a.writeAlarmError(w, err, "get")
		return
	}
	if !decodeJSON(w, r, al) {
		return
	}
	al.ID = id
	if err := a.deps.Alarms.Update(r.Context(), al); err != nil {
		a.writeAlarmError(w, err, "update")
		return
	}
	writeJSON(w, http.StatusOK, a.view(*al))
}

func (a *API) handleAlarmsDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Alarms.Delete(r.Context(), chi.URLParam(r, "alarmID")); err != nil {
		a.writeAlarmError(w, err, "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAlarmsTrigger fires an alarm now. Playback outlives the request.
func (a *API) handleAlarmsTrigger(w http.ResponseWriter, r *http.Request) {
	al, err := a.deps.Alarms.Get(r.Context(), chi.URLParam(r, "alarmID"))
	if err != nil {
		a.writeAlarmError(w, err, "get")
		return
	}
	trig := al.Trigger(a.now())
	st, err := a.deps.Session.Start(context.WithoutCancel(r.Context()), trig)
	if err != nil {
		a.writeSessionError(w, err)
		return
	}
	a.logger.Info().Str("alarm_id", al.ID).Msg("alarm triggered manually")
	writeJSON(w, http.StatusAccepted, st)
}

func (a *API) writeAlarmError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, alarm.ErrNotFound):
		writeError(w, http.StatusNotFound, "alarm_not_found")
	case errors.Is(err, alarm.ErrInvalidAlarm):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_alarm", "detail": err.Error()})
	default:
		a.logger.Error().Err(err).Str("op", op).Msg("alarm store failed")
		writeError(w, http.StatusInternalServerError, "db_error")
	}
}

func (a *API) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionActive):
		writeError(w, http.StatusConflict, "session_active")
	case errors.Is(err, session.ErrNoActiveSession):
		writeError(w, http.StatusNotFound, "no_active_session")
	case errors.Is(err, session.ErrSnoozeLimit):
		writeError(w, http.StatusConflict, "snooze_limit")
	case errors.Is(err, session.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "invalid_transition", "detail": err.Error()})
	case errors.Is(err, models.ErrInvalidMood), errors.Is(err, models.ErrInvalidLanguage):
		writeError(w, http.StatusBadRequest, "invalid_trigger")
	default:
		a.logger.Error().Err(err).Msg("session control failed")
		writeError(w, http.StatusInternalServerError, "session_error")
	}
}
