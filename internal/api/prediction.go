/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"errors"
	"net/http"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/prediction"
)

// predictRequest uses pointers so a missing field is told apart from a
// zero one.
type predictRequest struct {
	Bedtime                string      `json:"bedtime"`
	AlarmTime              string      `json:"alarm_time"`
	SleepDurationHours     *float64    `json:"sleep_duration_hours"`
	ScreenTimeBeforeBedMin *float64    `json:"screen_time_before_bed_min"`
	LightActivityMin       *float64    `json:"light_activity_min"`
	IsWeekend              *bool       `json:"is_weekend"`
	Chronotype             string      `json:"chronotype"`
	Mode                   models.Mode `json:"mode,omitempty"`
	StressLevel            *float64    `json:"stress_level,omitempty"`
	SleepQuality           *float64    `json:"sleep_quality,omitempty"`

	// AlarmID names an alarm to receive the plan's snooze settings.
	AlarmID string `json:"alarm_id,omitempty"`
	// Record folds the night into the baseline.
	Record bool `json:"record,omitempty"`
}

// input returns the night, or the name of the first missing field.
func (req predictRequest) input() (prediction.Input, string) {
	switch {
	case req.Bedtime == "":
		return prediction.Input{}, "bedtime"
	case req.AlarmTime == "":
		return prediction.Input{}, "alarm_time"
	case req.SleepDurationHours == nil:
		return prediction.Input{}, "sleep_duration_hours"
	case req.ScreenTimeBeforeBedMin == nil:
		return prediction.Input{}, "screen_time_before_bed_min"
	case req.LightActivityMin == nil:
		return prediction.Input{}, "light_activity_min"
	case req.IsWeekend == nil:
		return prediction.Input{}, "is_weekend"
	case req.Chronotype == "":
		return prediction.Input{}, "chronotype"
	}
	return prediction.Input{
		Bedtime:                req.Bedtime,
		AlarmTime:              req.AlarmTime,
		SleepDurationHours:     *req.SleepDurationHours,
		ScreenTimeBeforeBedMin: *req.ScreenTimeBeforeBedMin,
		LightActivityMin:       *req.LightActivityMin,
		IsWeekend:              *req.IsWeekend,
		Chronotype:             req.Chronotype,
		Mode:                   req.Mode,
		StressLevel:            req.StressLevel,
		SleepQuality:           req.SleepQuality,
	}, ""
}

type predictResponse struct {
	prediction.Plan
	Alarm *alarmView `json:"alarm,omitempty"`
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	if a.deps.Predictor == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction_unavailable")
		return
	}
	var req predictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, missing := req.input()
	if missing != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing_field", "field": missing})
		return
	}

	var al *models.Alarm
	if req.AlarmID != "" {
		var err error
		if al, err = a.deps.Alarms.Get(r.Context(), req.AlarmID); err != nil {
			a.writeAlarmError(w, err, "get")
			return
		}
		if in.Mode == "" {
			in.Mode = al.Mode
		}
	}

	plan, err := a.deps.Predictor.Predict(in)
	if errors.Is(err, prediction.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_input", "detail": err.Error()})
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "prediction_error")
		return
	}

	if req.Record {
		if err := a.deps.Predictor.Record(r.Context(), in, plan.Score); err != nil {
			a.logger.Warn().Err(err).Msg("failed to record night")
		}
	}

	out := predictResponse{Plan: plan}
	if al != nil {
		plan.Apply(al)
		if err := a.deps.Alarms.Update(r.Context(), al); err != nil {
			a.writeAlarmError(w, err, "update")
			return
		}
		v := a.view(*al)
		out.Alarm = &v
		a.logger.Info().
			Str("alarm_id", al.ID).
			Str("strategy", string(plan.Strategy)).
			Str("snooze_pattern", plan.SnoozePattern).
			Msg("alarm plan applied")
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handlePredictionBaseline(w http.ResponseWriter, r *http.Request) {
	if a.deps.Predictor == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, a.deps.Predictor.Baseline())
}

func (a *API) handlePredictionReset(w http.ResponseWriter, r *http.Request) {
	if a.deps.Predictor == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction_unavailable")
		return
	}
	if err := a.deps.Predictor.Reset(r.Context()); err != nil {
		a.logger.Error().Err(err).Msg("reset sleep baseline failed")
		writeError(w, http.StatusInternalServerError, "kv_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
