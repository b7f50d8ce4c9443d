/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package alarm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// DefaultTickInterval is how often Run checks for due alarms.
const DefaultTickInterval = 10 * time.Second

var weekdayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// RRule renders the alarm's weekdays as an iCalendar recurrence rule.
// No weekdays, or all seven, means every day.
func RRule(a models.Alarm) string {
	seen := make(map[int]bool, len(a.Weekdays))
	days := make([]int, 0, len(a.Weekdays))
	for _, d := range a.Weekdays {
		if d >= 0 && d < 7 && !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 || len(days) == 7 {
		return "FREQ=DAILY"
	}
	sort.Ints(days)
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = weekdayCodes[d]
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ",")
}

// NextFire returns the first occurrence at or after now: today at the
// alarm time, rolled forward to the next allowed day once it has passed.
// The alarm time is read in now's location.
func NextFire(a models.Alarm, now time.Time) (time.Time, error) {
	return occurrence(a, now, true)
}

func occurrence(a models.Alarm, after time.Time, inclusive bool) (time.Time, error) {
	hour, minute, err := models.ParseClock(a.Time)
	if err != nil {
		return time.Time{}, err
	}
	rr, err := rrule.StrToRRule(RRule(a))
	if err != nil {
		return time.Time{}, fmt.Errorf("alarm %s recurrence: %w", a.ID, err)
	}
	y, m, d := after.Date()
	rr.DTStart(time.Date(y, m, d, hour, minute, 0, 0, after.Location()))
	at := rr.After(after, inclusive)
	if at.IsZero() {
		return time.Time{}, fmt.Errorf("alarm %s has no upcoming occurrence", a.ID)
	}
	return at, nil
}

type pending struct {
	at   time.Time
	trig models.Trigger
}

// Scheduler turns stored alarms and one-off re-fires into triggers.
type Scheduler struct {
	store    *Store
	triggers chan<- models.Trigger
	bus      *events.Bus
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
	once []pending
}

// NewScheduler creates a scheduler that sends on triggers without blocking.
func NewScheduler(store *Store, triggers chan<- models.Trigger, bus *events.Bus, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		store:    store,
		triggers: triggers,
		bus:      bus,
		interval: interval,
		logger:   logger.With().Str("component", "alarm_scheduler").Logger(),
		now:      time.Now,
	}
}

// WithClock replaces the clock. Its location is the alarms' time zone.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("alarm scheduler started")
	s.Tick(ctx, s.now())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("alarm scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// ScheduleOnce emits trig at the first tick at or after at.
func (s *Scheduler) ScheduleOnce(at time.Time, trig models.Trigger) {
	s.mu.Lock()
	s.once = append(s.once, pending{at: at, trig: trig})
	s.mu.Unlock()
	s.logger.Debug().Str("alarm_id", trig.AlarmID).Time("at", at).Msg("one-off trigger scheduled")
}

// Pending returns the number of one-off triggers not yet emitted.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.once)
}

// Tick emits every alarm occurrence in (previous tick, now] and every due
// one-off trigger. It returns the number of triggers accepted.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	since := s.last
	if since.IsZero() {
		since = now.Add(-s.interval)
	}
	s.last = now
	var due []pending
	kept := s.once[:0]
	for _, p := range s.once {
		if p.at.After(now) {
			kept = append(kept, p)
		} else {
			due = append(due, p)
		}
	}
	s.once = kept
	s.mu.Unlock()

	accepted := 0
	for _, p := range due {
		if s.emit(p.trig, "snooze") {
			accepted++
		}
	}

	alarms, err := s.store.ListEnabled(ctx)
	if err != nil {
		telemetry.PersistenceErrorsTotal.WithLabelValues("alarms", "load").Inc()
		s.logger.Warn().Err(err).Msg("failed to load alarms")
		return accepted
	}
	for _, a := range alarms {
		at, err := occurrence(a, since, false)
		if err != nil {
			s.logger.Warn().Err(err).Str("alarm_id", a.ID).Msg("skipping alarm")
			continue
		}
		if at.After(now) {
			continue
		}
		if a.LastFiredAt != nil && !a.LastFiredAt.Before(at) {
			continue
		}
		if !s.emit(a.Trigger(at), "scheduler") {
			continue
		}
		accepted++
		if err := s.store.MarkFired(ctx, a.ID, at); err != nil {
			telemetry.PersistenceErrorsTotal.WithLabelValues("alarms", "save").Inc()
			s.logger.Warn().Err(err).Str("alarm_id", a.ID).Msg("failed to record alarm fire")
		}
		if s.bus != nil {
			s.bus.Publish(events.EventAlarmFired, events.Payload{
				"alarm_id": a.ID,
				"label":    a.Label,
				"mode":     string(a.Mode),
				"fired_at": at.Format(time.RFC3339),
			})
		}
	}
	return accepted
}

func (s *Scheduler) emit(trig models.Trigger, source string) bool {
	select {
	case s.triggers <- trig:
		telemetry.AlarmTriggersTotal.WithLabelValues(source, "accepted").Inc()
		s.logger.Info().Str("alarm_id", trig.AlarmID).Str("source", source).Msg("alarm triggered")
		return true
	default:
		telemetry.AlarmTriggersTotal.WithLabelValues(source, "dropped").Inc()
		s.logger.Warn().Str("alarm_id", trig.AlarmID).Str("source", source).Msg("trigger queue full, dropping alarm")
		return false
	}
}
