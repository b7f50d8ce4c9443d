/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package prediction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Strategy buckets a readiness score.
type Strategy string

const (
	StrategyOptimal  Strategy = "Optimal"
	StrategyGood     Strategy = "Good"
	StrategyFair     Strategy = "Fair"
	StrategyRecovery Strategy = "Recovery"
)

// MediaAction is the device-facing name of a wake-up mode.
type MediaAction string

const (
	ActionSpotifyMood  MediaAction = "SPOTIFY_MOOD"
	ActionRadioPlay    MediaAction = "RADIO_PLAY"
	ActionCalendarRead MediaAction = "CALENDAR_READ"
)

// Below loudThreshold a plan allows no snoozes and rings at full volume.
const loudThreshold = 4.0

// Plan is the alarm strategy for a score.
type Plan struct {
	Score           float64     `json:"prediction_score"`
	Strategy        Strategy    `json:"strategy"`
	WakeUpMode      string      `json:"wake_up_mode"`
	MusicType       string      `json:"music_type"`
	SnoozeAllowance string      `json:"snooze_allowance"`
	Message         string      `json:"message"`
	MediaAction     MediaAction `json:"media_action"`
	SnoozePattern   string      `json:"snooze_pattern"`
	Mood            models.Mood `json:"mood"`
	SnoozeIntervals []int       `json:"snooze_intervals"`
	Loud            bool        `json:"loud"`
	Features        Features    `json:"features"`
}

type tier struct {
	min       float64
	strategy  Strategy
	wakeUp    string
	music     string
	allowance string
	mood      models.Mood
	intervals []int
}

// Tiers run from the highest minimum score down.
var tiers = []tier{
	{8.5, StrategyOptimal, "Energetic & Bright", "Upbeat Pop/Rock", "Strict (1 max)", models.MoodEnergetic, []int{5}},
	{7.0, StrategyGood, "Gentle-Rise", "Ambient/Lo-Fi", "Lenient (3 max)", models.MoodCalm, []int{5, 4, 3}},
	{5.0, StrategyFair, "Standard", "Soft Rock/Instrumental", "Not Recommended", models.MoodNeutral, []int{3}},
	{0, StrategyRecovery, "Gentle & Gradual", "Classical/Nature Sounds", "Strictly Avoid", models.MoodCalm, nil},
}

// PlanFor maps score to a plan. mode picks the media action and defaults
// to mood playback.
func PlanFor(score float64, mode models.Mode) Plan {
	t := tiers[len(tiers)-1]
	for _, candidate := range tiers {
		if score >= candidate.min {
			t = candidate
			break
		}
	}
	p := Plan{
		Score:           score,
		Strategy:        t.strategy,
		WakeUpMode:      t.wakeUp,
		MusicType:       t.music,
		SnoozeAllowance: t.allowance,
		Message:         fmt.Sprintf("Your next-day readiness score is %.1f. Recommended strategy: %s.", score, t.strategy),
		MediaAction:     actionFor(mode),
		Mood:            t.mood,
		SnoozeIntervals: append([]int(nil), t.intervals...),
	}
	if score < loudThreshold {
		p.Loud = true
		p.Mood = models.MoodEnergetic
	}
	p.SnoozePattern = formatPattern(p.SnoozeIntervals, p.Loud)
	return p
}

func actionFor(mode models.Mode) MediaAction {
	switch mode {
	case models.ModeRadio:
		return ActionRadioPlay
	case models.ModeCalendar:
		return ActionCalendarRead
	default:
		return ActionSpotifyMood
	}
}

// formatPattern renders intervals as "5-4-3-0": one length per snooze,
// then 0 for no further snoozes. A loud plan ends in "LOUD".
func formatPattern(intervals []int, loud bool) string {
	parts := make([]string, 0, len(intervals)+2)
	for _, m := range intervals {
		parts = append(parts, strconv.Itoa(m))
	}
	parts = append(parts, "0")
	if loud {
		parts = append(parts, "LOUD")
	}
	return strings.Join(parts, "-")
}

// Apply writes the plan's wake-up settings onto a stored alarm. The
// first interval becomes the alarm's default snooze length.
func (p Plan) Apply(a *models.Alarm) {
	a.Mood = p.Mood
	a.Loud = p.Loud
	a.SnoozePattern = append([]int(nil), p.SnoozeIntervals...)
	a.MaxSnoozes = len(p.SnoozeIntervals)
	if len(p.SnoozeIntervals) > 0 {
		a.SnoozeMinutes = p.SnoozeIntervals[0]
	}
}
