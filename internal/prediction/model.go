/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package prediction scores next-morning readiness from last night's
// sleep and turns the score into an alarm plan.
package prediction

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Window is the number of past nights the rolling features cover.
const Window = 7

// ErrInvalidInput wraps every validation failure.
var ErrInvalidInput = errors.New("invalid prediction input")

// Chronotypes accepted in Input.
const (
	ChronotypeEarly        = "early"
	ChronotypeIntermediate = "intermediate"
	ChronotypeLate         = "late"
)

// Input describes the night before an alarm.
type Input struct {
	Bedtime                string      `json:"bedtime"`
	AlarmTime              string      `json:"alarm_time"`
	SleepDurationHours     float64     `json:"sleep_duration_hours"`
	ScreenTimeBeforeBedMin float64     `json:"screen_time_before_bed_min"`
	LightActivityMin       float64     `json:"light_activity_min"`
	IsWeekend              bool        `json:"is_weekend"`
	Chronotype             string      `json:"chronotype"`
	Mode                   models.Mode `json:"mode,omitempty"`
	StressLevel            *float64    `json:"stress_level,omitempty"`
	SleepQuality           *float64    `json:"sleep_quality,omitempty"`
}

// Validate checks clocks, ranges and the chronotype.
func (in Input) Validate() error {
	if _, _, err := models.ParseClock(in.Bedtime); err != nil {
		return fmt.Errorf("%w: bedtime: %v", ErrInvalidInput, err)
	}
	if _, err := alarmMinutes(in.AlarmTime); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch {
	case in.SleepDurationHours < 0 || in.SleepDurationHours > 24:
		return fmt.Errorf("%w: sleep duration %v outside 0-24h", ErrInvalidInput, in.SleepDurationHours)
	case in.ScreenTimeBeforeBedMin < 0:
		return fmt.Errorf("%w: negative screen time", ErrInvalidInput)
	case in.LightActivityMin < 0:
		return fmt.Errorf("%w: negative light activity", ErrInvalidInput)
	}
	switch strings.ToLower(strings.TrimSpace(in.Chronotype)) {
	case ChronotypeEarly, ChronotypeIntermediate, ChronotypeLate:
	default:
		return fmt.Errorf("%w: unknown chronotype %q", ErrInvalidInput, in.Chronotype)
	}
	if in.Mode != "" && !in.Mode.Valid() {
		return fmt.Errorf("%w: invalid mode %q", ErrInvalidInput, in.Mode)
	}
	for name, v := range map[string]*float64{"stress level": in.StressLevel, "sleep quality": in.SleepQuality} {
		if v != nil && (*v < 0 || *v > 10) {
			return fmt.Errorf("%w: %s %v outside 0-10", ErrInvalidInput, name, *v)
		}
	}
	return nil
}

func alarmMinutes(clock string) (int, error) {
	h, m, err := models.ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// Baseline is the rolling history the features are computed from.
type Baseline struct {
	LastScore    float64   `json:"last_score"`
	Stress       []float64 `json:"stress_7d"`
	SleepQuality []float64 `json:"sleep_quality_7d"`
	AlarmMinutes []int     `json:"alarm_minutes_7d"`
}

// DefaultBaseline is a typical week, used until real nights are recorded.
func DefaultBaseline() Baseline {
	return Baseline{
		LastScore:    7.2,
		Stress:       []float64{5.0, 4.5, 6.0, 5.5, 7.0, 6.5, 5.8},
		SleepQuality: []float64{7.5, 7.8, 6.5, 7.0, 8.1, 7.5, 7.2},
		AlarmMinutes: []int{420, 425, 430, 420, 435, 420, 425},
	}
}

// Clone returns a deep copy.
func (b Baseline) Clone() Baseline {
	b.Stress = append([]float64(nil), b.Stress...)
	b.SleepQuality = append([]float64(nil), b.SleepQuality...)
	b.AlarmMinutes = append([]int(nil), b.AlarmMinutes...)
	return b
}

// Features are the model inputs for one prediction.
type Features struct {
	SleepDurationHours     float64 `json:"sleep_duration_hours"`
	PreviousScore          float64 `json:"previous_day_smart_sleep"`
	ScreenTimeBeforeBedMin float64 `json:"screen_time_before_bed_min"`
	AvgStress3d            float64 `json:"avg_stress_level_3d"`
	AlarmRegularityStd7d   float64 `json:"bedtime_regularity_std_7d"`
	AvgSleepQuality7d      float64 `json:"avg_sleep_quality_7d"`
	Weekend                float64 `json:"is_weekend"`
	LateChronotype         float64 `json:"chronotype_late"`
}

// Linear weights of the readiness model.
const (
	weightSleepDuration = 0.45
	weightPreviousScore = 0.25
	weightScreenTime    = -0.015
	weightStress3d      = -0.08
	weightRegularity    = -0.05
	weightQuality7d     = 0.1
	weightWeekend       = 0.3
	weightLateChrono    = -0.2
	intercept           = 3.0
)

// Extract builds the features for in against b. The alarm time counts
// toward regularity as the newest of the last Window alarms.
func Extract(in Input, b Baseline) Features {
	f := Features{
		SleepDurationHours:     in.SleepDurationHours,
		PreviousScore:          b.LastScore,
		ScreenTimeBeforeBedMin: in.ScreenTimeBeforeBedMin,
		AvgStress3d:            mean(tail(b.Stress, 3)),
		AvgSleepQuality7d:      mean(tail(b.SleepQuality, Window)),
	}
	if mins, err := alarmMinutes(in.AlarmTime); err == nil {
		f.AlarmRegularityStd7d = stddev(tailInts(append(append([]int(nil), b.AlarmMinutes...), mins), Window))
	}
	if in.IsWeekend {
		f.Weekend = 1
	}
	if strings.EqualFold(strings.TrimSpace(in.Chronotype), ChronotypeLate) {
		f.LateChronotype = 1
	}
	return f
}

// Score is the readiness score for f, clipped to 1-10 and rounded to
// one decimal.
func Score(f Features) float64 {
	s := intercept +
		weightSleepDuration*f.SleepDurationHours +
		weightPreviousScore*f.PreviousScore +
		weightScreenTime*f.ScreenTimeBeforeBedMin +
		weightStress3d*f.AvgStress3d +
		weightRegularity*f.AlarmRegularityStd7d +
		weightQuality7d*f.AvgSleepQuality7d +
		weightWeekend*f.Weekend +
		weightLateChrono*f.LateChronotype
	s = math.Max(1, math.Min(10, s))
	return math.Round(s*10) / 10
}

func tail[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}

func tailInts(xs []int, n int) []float64 {
	out := make([]float64, 0, n)
	for _, x := range tail(xs, n) {
		out = append(out, float64(x))
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sq float64
	for _, x := range xs {
		sq += (x - m) * (x - m)
	}
	return math.Sqrt(sq / float64(len(xs)))
}
