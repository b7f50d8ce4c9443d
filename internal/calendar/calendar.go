/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package calendar reads today's events and turns them into the spoken
// morning schedule.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	urgentWindow     = 2 * time.Hour
	conflictWindow   = 30 * time.Minute
	earlyMorningHour = 10
	spokenTimeLayout = "3:04 PM"
	noEventsScript   = "Good morning! You have no scheduled events for today. Enjoy your free day!"
	scheduleIntro    = "Good morning! Here's your schedule for today:"
	scheduleSignOff  = "Have a productive day!"
)

// Event is one calendar entry. All-day events start at local midnight.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
	Status      string    `json:"status,omitempty"`
}

// Provider returns the events of the day containing now, ordered by start.
type Provider interface {
	TodaysEvents(ctx context.Context, now time.Time) ([]Event, error)
}

// Static serves a fixed event list. It is used when no calendar account
// is configured and in tests.
type Static []Event

// TodaysEvents returns the events that fall on now's date.
func (s Static) TodaysEvents(_ context.Context, now time.Time) ([]Event, error) {
	y, m, d := now.Date()
	out := make([]Event, 0, len(s))
	for _, e := range s {
		ey, em, ed := e.Start.In(now.Location()).Date()
		if ey == y && em == m && ed == d {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out, nil
}

// Script renders the spoken schedule for events.
func Script(events []Event, now time.Time) string {
	if len(events) == 0 {
		return noEventsScript
	}

	var b strings.Builder
	b.WriteString(scheduleIntro)
	b.WriteString("\n\n")
	for i, e := range events {
		fmt.Fprintf(&b, "%d. %s", i+1, e.Summary)
		if !e.AllDay {
			fmt.Fprintf(&b, " at %s", SpokenTime(e, now))
		}
		if e.Location != "" {
			fmt.Fprintf(&b, " in %s", e.Location)
		}
		if e.Description != "" {
			fmt.Fprintf(&b, " - %s", e.Description)
		}
		b.WriteString("\n")
		if until := e.Start.Sub(now); until > 0 && until <= urgentWindow {
			fmt.Fprintf(&b, "   This event is coming up in %d minutes!\n", int(until.Round(time.Minute).Minutes()))
		}
		b.WriteString("\n")
	}
	b.WriteString(scheduleSignOff)
	return b.String()
}

// SpokenTime formats the event start for announcements, in now's location.
func SpokenTime(e Event, now time.Time) string {
	return e.Start.In(now.Location()).Format(spokenTimeLayout)
}

// UrgentEvents returns events starting after now and within two hours.
func UrgentEvents(events []Event, now time.Time) []Event {
	out := []Event{}
	limit := now.Add(urgentWindow)
	for _, e := range events {
		if e.Start.After(now) && !e.Start.After(limit) {
			out = append(out, e)
		}
	}
	return out
}

// NextUrgent returns the earliest urgent event.
func NextUrgent(events []Event, now time.Time) (Event, bool) {
	urgent := UrgentEvents(events, now)
	if len(urgent) == 0 {
		return Event{}, false
	}
	sortByStart(urgent)
	return urgent[0], true
}

// HasEarlyMorningEvents reports whether a timed event starts at or
// before 10:00 on its own day.
func HasEarlyMorningEvents(events []Event) bool {
	for _, e := range events {
		if e.AllDay {
			continue
		}
		y, m, d := e.Start.Date()
		cutoff := time.Date(y, m, d, earlyMorningHour, 0, 0, 0, e.Start.Location())
		if !e.Start.After(cutoff) {
			return true
		}
	}
	return false
}

// CheckConflict suggests an earlier wake-up when a timed event starts
// less than 30 minutes after alarmAt. The suggestion leaves 30 minutes
// before the event.
func CheckConflict(events []Event, alarmAt time.Time) (time.Time, bool) {
	sorted := append([]Event(nil), events...)
	sortByStart(sorted)
	for _, e := range sorted {
		if e.AllDay {
			continue
		}
		diff := e.Start.Sub(alarmAt)
		if diff > 0 && diff < conflictWindow {
			return e.Start.Add(-conflictWindow), true
		}
	}
	return time.Time{}, false
}

func sortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
}
