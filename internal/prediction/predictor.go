/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package prediction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/kvstore"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// Predictor scores nights against the persisted baseline.
type Predictor struct {
	mu       sync.Mutex
	baseline Baseline
	kv       kvstore.Store
	logger   zerolog.Logger
}

// New creates a predictor holding the default baseline.
func New(kv kvstore.Store, logger zerolog.Logger) *Predictor {
	return &Predictor{
		baseline: DefaultBaseline(),
		kv:       kv,
		logger:   logger.With().Str("component", "prediction").Logger(),
	}
}

// Load reads the persisted baseline. A missing key keeps the default;
// an unreadable one keeps the default and is reported.
func (p *Predictor) Load(ctx context.Context) error {
	var b Baseline
	err := kvstore.GetJSON(ctx, p.kv, kvstore.KeySleepBaseline, &b)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		return nil
	case err != nil:
		telemetry.PersistenceErrorsTotal.WithLabelValues("sleep_baseline", "load").Inc()
		return fmt.Errorf("load sleep baseline: %w", err)
	}

	p.mu.Lock()
	p.baseline = b
	p.mu.Unlock()
	p.logger.Info().Int("nights", len(b.AlarmMinutes)).Msg("sleep baseline loaded")
	return nil
}

// Baseline returns a copy of the current baseline.
func (p *Predictor) Baseline() Baseline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.baseline.Clone()
}

// Predict scores in and maps the score to a plan. It does not change
// the baseline.
func (p *Predictor) Predict(in Input) (Plan, error) {
	if err := in.Validate(); err != nil {
		return Plan{}, err
	}
	p.mu.Lock()
	f := Extract(in, p.baseline)
	p.mu.Unlock()

	plan := PlanFor(Score(f), in.Mode)
	plan.Features = f
	telemetry.PredictionsTotal.WithLabelValues(string(plan.Strategy)).Inc()
	p.logger.Debug().
		Float64("score", plan.Score).
		Str("strategy", string(plan.Strategy)).
		Str("snooze_pattern", plan.SnoozePattern).
		Msg("readiness predicted")
	return plan, nil
}

// Record folds a scored night into the baseline and persists it. The
// score becomes the previous-day score of the next prediction.
func (p *Predictor) Record(ctx context.Context, in Input, score float64) error {
	if err := in.Validate(); err != nil {
		return err
	}
	mins, _ := alarmMinutes(in.AlarmTime)

	p.mu.Lock()
	defer p.mu.Unlock()
	b := p.baseline.Clone()
	b.LastScore = score
	b.AlarmMinutes = tail(append(b.AlarmMinutes, mins), Window)
	if in.StressLevel != nil {
		b.Stress = tail(append(b.Stress, *in.StressLevel), Window)
	}
	if in.SleepQuality != nil {
		b.SleepQuality = tail(append(b.SleepQuality, *in.SleepQuality), Window)
	}
	p.baseline = b

	if err := kvstore.SetJSON(ctx, p.kv, kvstore.KeySleepBaseline, b); err != nil {
		telemetry.PersistenceErrorsTotal.WithLabelValues("sleep_baseline", "save").Inc()
		return fmt.Errorf("save sleep baseline: %w", err)
	}
	return nil
}

// Reset restores the default baseline and removes the persisted one.
func (p *Predictor) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseline = DefaultBaseline()
	if err := p.kv.Delete(ctx, kvstore.KeySleepBaseline); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return fmt.Errorf("delete sleep baseline: %w", err)
	}
	return nil
}
