/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package session

import (
	"context"
	"errors"
	"time"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/pipeline"
	"github.com/friendsincode/smartalarm/internal/radio"
)

var (
	// ErrSessionActive rejects a trigger while another session rings or selects.
	ErrSessionActive = errors.New("alarm session already active")

	// ErrNoActiveSession is returned by controls when nothing is ringing.
	ErrNoActiveSession = errors.New("no active alarm session")

	// ErrSnoozeLimit is returned once every snooze has been used.
	ErrSnoozeLimit = errors.New("snooze limit reached")

	// ErrInvalidTransition is returned when a control does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid session state transition")

	errNoCalendar = errors.New("no calendar configured")
)

// State is the lifecycle position of a session.
type State string

const (
	StateIdle      State = "idle"
	StateSelecting State = "selecting"
	StateRinging   State = "ringing"
	StateSnoozed   State = "snoozed"
	StateDismissed State = "dismissed"
)

// active reports whether the state blocks a new trigger.
func (s State) active() bool {
	return s == StateSelecting || s == StateRinging
}

// Session outcomes written to the session log.
const (
	OutcomeDismissed  = "dismissed"
	OutcomeSuperseded = "superseded"
	OutcomeShutdown   = "shutdown"
)

// FallbackStep names the spoken greeting plus tone that ends the fallback chain.
const FallbackStep = "fallback"

// Sink plays media on the device.
type Sink interface {
	PlayPreview(ctx context.Context, t models.Track) (bool, error)
	PlayStream(ctx context.Context, name, url string) (bool, error)
	PlayTone(ctx context.Context) error
	Stop(ctx context.Context) error
	SetVolume(ctx context.Context, v float64) error
}

// Selector runs the selection pipeline.
type Selector interface {
	Select(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// Recorder receives play and skip feedback.
type Recorder interface {
	RecordInteraction(ctx context.Context, in models.UserInteraction) error
}

// Scheduler re-fires a snoozed trigger.
type Scheduler interface {
	ScheduleOnce(at time.Time, trig models.Trigger)
}

// StationSource lists the stations radio mode picks from.
type StationSource func(ctx context.Context) []radio.Station

// Status is a point-in-time view of the current session.
type Status struct {
	SessionID    string          `json:"session_id,omitempty"`
	AlarmID      string          `json:"alarm_id,omitempty"`
	State        State           `json:"state"`
	Mode         models.Mode     `json:"mode,omitempty"`
	PlayedMode   models.Mode     `json:"played_mode,omitempty"`
	FallbackPath []string        `json:"fallback_path,omitempty"`
	Track        *models.Track   `json:"track,omitempty"`
	Station      *radio.Station  `json:"station,omitempty"`
	Trace        *pipeline.Trace `json:"trace,omitempty"`
	Volume       float64         `json:"volume"`
	Snoozes      int             `json:"snoozes"`
	SnoozesLeft  int             `json:"snoozes_left"`
	ResumeAt     *time.Time      `json:"resume_at,omitempty"`
	StartedAt    time.Time       `json:"started_at,omitempty"`
}

// session is the mutable record behind Status. Guarded by Controller.mu.
type session struct {
	id           string
	trigger      models.Trigger
	state        State
	gen          uint64
	playedMode   models.Mode
	fallbackPath []string
	track        *models.Track
	station      *radio.Station
	trace        *pipeline.Trace
	snoozes      int
	snoozesLeft  int
	resumeAt     time.Time
	startedAt    time.Time
}

func (s *session) status(volume float64) Status {
	st := Status{
		SessionID:    s.id,
		AlarmID:      s.trigger.AlarmID,
		State:        s.state,
		Mode:         s.trigger.Mode,
		PlayedMode:   s.playedMode,
		FallbackPath: append([]string(nil), s.fallbackPath...),
		Volume:       volume,
		Snoozes:      s.snoozes,
		SnoozesLeft:  s.snoozesLeft,
		StartedAt:    s.startedAt,
	}
	if s.track != nil {
		t := *s.track
		st.Track = &t
	}
	if s.station != nil {
		rs := *s.station
		st.Station = &rs
	}
	if s.trace != nil {
		tr := *s.trace
		st.Trace = &tr
	}
	if s.state == StateSnoozed && !s.resumeAt.IsZero() {
		at := s.resumeAt
		st.ResumeAt = &at
	}
	return st
}

// fallbackOrder puts the requested mode first, then the rest in Modes order.
func fallbackOrder(requested models.Mode) []models.Mode {
	order := []models.Mode{requested}
	for _, m := range models.Modes {
		if m != requested {
			order = append(order, m)
		}
	}
	return order
}
