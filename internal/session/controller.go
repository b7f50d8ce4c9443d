/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package session drives one alarm at a time from trigger to dismissal:
// it picks media for the requested mode, falls back through the other
// modes, and handles stop, snooze, volume and next.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/smartalarm/internal/calendar"
	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/speech"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

const finishTimeout = 5 * time.Second

// Deps are the collaborators of a Controller. Selector, Sink and Speaker
// are required; the rest may be nil.
type Deps struct {
	Selector  Selector
	Sink      Sink
	Speaker   speech.Speaker
	Calendar  calendar.Provider
	Stations  StationSource
	Learning  Recorder
	Scheduler Scheduler
	DB        *gorm.DB
	Bus       *events.Bus
}

// Controller is the media session controller.
type Controller struct {
	deps   Deps
	logger zerolog.Logger
	now    func() time.Time

	fadeIn time.Duration
	sleep  func(context.Context, time.Duration) error

	mu      sync.Mutex
	cur     *session
	volume  float64
	volumes uint64 // bumped by SetVolume so a running fade yields
	rng     *rand.Rand

	wg sync.WaitGroup
}

// New creates a controller.
func New(deps Deps, logger zerolog.Logger) *Controller {
	return &Controller{
		deps:   deps,
		logger: logger.With().Str("component", "session").Logger(),
		now:    time.Now,
		sleep:  sleepCtx,
		volume: models.DefaultVolume,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock replaces the clock.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// WithFadeIn ramps the volume up from silence over d each time an alarm
// starts ringing. Zero rings at full volume at once.
func (c *Controller) WithFadeIn(d time.Duration) *Controller {
	if d < 0 {
		d = 0
	}
	c.fadeIn = d
	return c
}

// WithRand replaces the station picker's random source.
func (c *Controller) WithRand(rng *rand.Rand) *Controller {
	c.mu.Lock()
	c.rng = rng
	c.mu.Unlock()
	return c
}

// Run starts a session for every trigger until ctx is done, then waits
// for in-flight playback and closes any open session.
func (c *Controller) Run(ctx context.Context, triggers <-chan models.Trigger) error {
	c.logger.Info().Msg("session controller started")
	for {
		select {
		case <-ctx.Done():
			c.wg.Wait()
			c.shutdown()
			c.logger.Info().Msg("session controller stopped")
			return nil
		case trig, ok := <-triggers:
			if !ok {
				c.wg.Wait()
				return nil
			}
			_, _ = c.Start(ctx, trig)
		}
	}
}

// Start admits trig and plays it in the background. Playback uses ctx,
// so callers outside a long-lived loop should pass a detached context.
func (c *Controller) Start(ctx context.Context, trig models.Trigger) (Status, error) {
	sess, gen, err := c.admit(ctx, trig)
	if err != nil {
		return c.Status(), err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.ring(ctx, sess, gen, fallbackOrder(sess.trigger.Mode), true)
	}()
	return c.Status(), nil
}

// Fire admits trig and plays it before returning.
func (c *Controller) Fire(ctx context.Context, trig models.Trigger) (Status, error) {
	sess, gen, err := c.admit(ctx, trig)
	if err != nil {
		return c.Status(), err
	}
	c.ring(ctx, sess, gen, fallbackOrder(sess.trigger.Mode), true)
	return c.Status(), nil
}

// Wait blocks until background playback started by Start has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) admit(ctx context.Context, trig models.Trigger) (*session, uint64, error) {
	now := c.now()
	if err := trig.Normalize(now); err != nil {
		return nil, 0, fmt.Errorf("admit trigger: %w", err)
	}

	c.mu.Lock()
	cur := c.cur
	switch {
	case cur != nil && cur.state.active():
		current := cur.id
		c.mu.Unlock()
		c.logger.Warn().
			Str("alarm_id", trig.AlarmID).
			Str("active_session", current).
			Msg("alarm rejected, session already active")
		c.publish(events.EventAlarmRejected, events.Payload{
			"alarm_id":   trig.AlarmID,
			"session_id": current,
			"reason":     ErrSessionActive.Error(),
		})
		return nil, 0, ErrSessionActive

	case cur != nil && cur.state == StateSnoozed && trig.Resume && trig.AlarmID == cur.trigger.AlarmID:
		cur.gen++
		cur.state = StateSelecting
		cur.resumeAt = time.Time{}
		cur.playedMode = ""
		cur.fallbackPath = nil
		cur.track = nil
		cur.station = nil
		cur.trace = nil
		gen := cur.gen
		c.mu.Unlock()
		telemetry.SessionActive.Set(1)
		c.logger.Info().Str("session_id", cur.id).Str("alarm_id", trig.AlarmID).Msg("snoozed alarm resumed")
		c.publish(events.EventSessionStarted, events.Payload{
			"session_id": cur.id,
			"alarm_id":   trig.AlarmID,
			"mode":       string(cur.trigger.Mode),
			"resume":     true,
		})
		return cur, gen, nil

	case trig.Resume:
		c.mu.Unlock()
		c.logger.Debug().Str("alarm_id", trig.AlarmID).Msg("ignoring re-fire of a closed session")
		return nil, 0, ErrNoActiveSession
	}

	var superseded *session
	if cur != nil && cur.state == StateSnoozed {
		cur.gen++
		cur.state = StateDismissed
		superseded = cur
	}
	sess := &session{
		id:          uuid.NewString(),
		trigger:     trig,
		state:       StateSelecting,
		gen:         1,
		snoozesLeft: trig.MaxSnoozes,
		startedAt:   now,
	}
	c.cur = sess
	c.volume = trig.Volume
	c.mu.Unlock()

	if superseded != nil {
		c.logger.Info().Str("session_id", superseded.id).Msg("snoozed session superseded by new alarm")
		c.finish(ctx, superseded, OutcomeSuperseded)
	}

	telemetry.SessionActive.Set(1)
	c.logger.Info().
		Str("session_id", sess.id).
		Str("alarm_id", trig.AlarmID).
		Str("mode", string(trig.Mode)).
		Str("mood", string(trig.Mood)).
		Bool("urgent", trig.Urgent).
		Msg("alarm session started")
	c.publish(events.EventSessionStarted, events.Payload{
		"session_id": sess.id,
		"alarm_id":   trig.AlarmID,
		"mode":       string(trig.Mode),
		"mood":       string(trig.Mood),
		"urgent":     trig.Urgent,
	})
	return sess, sess.gen, nil
}

// Status returns the current session, or an idle status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return Status{State: StateIdle, Volume: c.volume}
	}
	return c.cur.status(c.volume)
}

// Stop dismisses the session. Playback still being selected is abandoned.
func (c *Controller) Stop(ctx context.Context) (Status, error) {
	c.mu.Lock()
	sess := c.cur
	if sess == nil || sess.state == StateDismissed {
		c.mu.Unlock()
		return c.Status(), ErrNoActiveSession
	}
	sess.gen++
	sess.state = StateDismissed
	st := sess.status(c.volume)
	c.mu.Unlock()

	telemetry.SessionActive.Set(0)
	if err := c.deps.Sink.Stop(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to stop playback")
	}
	c.logger.Info().Str("session_id", sess.id).Msg("alarm dismissed")
	c.finish(ctx, sess, OutcomeDismissed)
	return st, nil
}

// Snooze stops a ringing session and schedules its re-fire.
func (c *Controller) Snooze(ctx context.Context) (Status, error) {
	c.mu.Lock()
	sess := c.cur
	switch {
	case sess == nil || sess.state == StateDismissed:
		c.mu.Unlock()
		return c.Status(), ErrNoActiveSession
	case sess.state != StateRinging:
		err := fmt.Errorf("snooze while %s: %w", sess.state, ErrInvalidTransition)
		c.mu.Unlock()
		return c.Status(), err
	case sess.snoozesLeft <= 0:
		c.mu.Unlock()
		return c.Status(), ErrSnoozeLimit
	}
	length := sess.trigger.SnoozeLength(sess.snoozes)
	sess.gen++
	sess.snoozesLeft--
	sess.snoozes++
	sess.state = StateSnoozed
	sess.resumeAt = c.now().Add(length)
	refire := sess.trigger
	refire.Resume = true
	refire.FiredAt = sess.resumeAt
	remaining := sess.snoozesLeft
	st := sess.status(c.volume)
	c.mu.Unlock()

	telemetry.SessionActive.Set(0)
	if err := c.deps.Sink.Stop(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to stop playback")
	}
	c.speak(ctx, speech.Snooze(remaining))
	if c.deps.Scheduler != nil {
		c.deps.Scheduler.ScheduleOnce(*st.ResumeAt, refire)
	} else {
		c.logger.Warn().Msg("no scheduler configured, snoozed alarm will not re-fire")
	}

	c.logger.Info().
		Str("session_id", sess.id).
		Int("remaining", remaining).
		Time("resume_at", *st.ResumeAt).
		Msg("alarm snoozed")
	c.publish(events.EventAlarmSnoozed, events.Payload{
		"session_id": sess.id,
		"alarm_id":   refire.AlarmID,
		"remaining":  remaining,
		"resume_at":  st.ResumeAt.Format(time.RFC3339),
	})
	return st, nil
}

// SetVolume clamps v to [0,1] and applies it to the sink.
func (c *Controller) SetVolume(ctx context.Context, v float64) (float64, error) {
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	c.mu.Lock()
	c.volume = v
	c.volumes++
	c.mu.Unlock()

	if err := c.deps.Sink.SetVolume(ctx, v); err != nil {
		return v, fmt.Errorf("set volume: %w", err)
	}
	c.publish(events.EventSessionVolume, events.Payload{"volume": v})
	return v, nil
}

// Next skips the playing track and plays a fresh pick. Only a session
// ringing in mood mode has a track to skip.
func (c *Controller) Next(ctx context.Context) (Status, error) {
	c.mu.Lock()
	sess := c.cur
	switch {
	case sess == nil || sess.state == StateDismissed:
		c.mu.Unlock()
		return c.Status(), ErrNoActiveSession
	case sess.state != StateRinging || sess.playedMode != models.ModeMood || sess.track == nil:
		err := fmt.Errorf("next while %s in %q mode: %w", sess.state, sess.playedMode, ErrInvalidTransition)
		c.mu.Unlock()
		return c.Status(), err
	}
	skipped := *sess.track
	sess.gen++
	gen := sess.gen
	sess.state = StateSelecting
	sess.playedMode = ""
	sess.fallbackPath = nil
	sess.track = nil
	trig := sess.trigger
	c.mu.Unlock()

	telemetry.SessionActive.Set(1)
	c.record(ctx, trig, skipped, models.ActionSkip)
	if err := c.deps.Sink.Stop(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to stop playback")
	}
	c.ring(ctx, sess, gen, fallbackOrder(models.ModeMood), false)
	return c.Status(), nil
}

// shutdown closes an open session when the service stops.
func (c *Controller) shutdown() {
	c.mu.Lock()
	sess := c.cur
	if sess == nil || sess.state == StateDismissed {
		c.mu.Unlock()
		return
	}
	sess.gen++
	sess.state = StateDismissed
	c.mu.Unlock()

	telemetry.SessionActive.Set(0)
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()
	if err := c.deps.Sink.Stop(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to stop playback")
	}
	c.finish(ctx, sess, OutcomeShutdown)
}

// finish writes the session log and reports the closed session.
func (c *Controller) finish(ctx context.Context, sess *session, outcome string) {
	c.mu.Lock()
	entry := models.SessionLog{
		ID:           sess.id,
		AlarmID:      sess.trigger.AlarmID,
		Mode:         sess.trigger.Mode,
		PlayedMode:   sess.playedMode,
		FallbackPath: append([]string(nil), sess.fallbackPath...),
		Snoozes:      sess.snoozes,
		Outcome:      outcome,
		StartedAt:    sess.startedAt,
		EndedAt:      c.now(),
	}
	if sess.track != nil {
		entry.TrackID = sess.track.ID
		entry.TrackName = sess.track.Name
		entry.Artist = sess.track.Artist
	}
	if sess.station != nil {
		entry.StationID = sess.station.ID
	}
	c.mu.Unlock()

	played := playedLabel(entry)
	telemetry.SessionsTotal.WithLabelValues(played, outcome).Inc()
	c.publish(events.EventSessionDismissed, events.Payload{
		"session_id":  entry.ID,
		"alarm_id":    entry.AlarmID,
		"outcome":     outcome,
		"played_mode": played,
		"snoozes":     entry.Snoozes,
	})

	if c.deps.DB == nil {
		return
	}
	if err := c.deps.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		telemetry.PersistenceErrorsTotal.WithLabelValues("session_log", "save").Inc()
		c.logger.Warn().Err(err).Str("session_id", entry.ID).Msg("failed to write session log")
	}
}

func playedLabel(entry models.SessionLog) string {
	if entry.PlayedMode != "" {
		return string(entry.PlayedMode)
	}
	if n := len(entry.FallbackPath); n > 0 && entry.FallbackPath[n-1] == FallbackStep {
		return FallbackStep
	}
	return "none"
}

// relevant reports whether gen is still the live attempt of sess.
func (c *Controller) relevant(sess *session, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur == sess && sess.gen == gen
}

// update applies fn when gen is still live and reports whether it did.
func (c *Controller) update(sess *session, gen uint64, fn func(s *session)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != sess || sess.gen != gen {
		return false
	}
	fn(sess)
	return true
}

func (c *Controller) speak(ctx context.Context, text string) bool {
	if c.deps.Speaker == nil {
		return false
	}
	if err := c.deps.Speaker.Speak(ctx, text); err != nil {
		c.logger.Warn().Err(err).Msg("speech failed")
		return false
	}
	return true
}

func (c *Controller) publish(et events.EventType, payload events.Payload) {
	if c.deps.Bus != nil {
		c.deps.Bus.Publish(et, payload)
	}
}

// record feeds play and skip actions into the learning model.
func (c *Controller) record(ctx context.Context, trig models.Trigger, t models.Track, action models.Action) {
	if c.deps.Learning == nil {
		return
	}
	in := models.UserInteraction{
		Timestamp: c.now().UnixMilli(),
		Action:    action,
		Track: models.InteractionTrack{
			ID:       t.ID,
			Name:     t.Name,
			Artist:   t.Artist,
			Language: models.NormalizeLanguages(trig.Languages)[0],
		},
		Context: models.InteractionContext{
			Mood:      trig.Mood,
			Languages: trig.Languages,
		},
	}
	if err := c.deps.Learning.RecordInteraction(ctx, in); err != nil {
		c.logger.Warn().Err(err).Str("action", string(action)).Msg("failed to record interaction")
		return
	}
	c.publish(events.EventInteractionRecorded, events.Payload{
		"action":   string(action),
		"track_id": t.ID,
		"artist":   t.Artist,
		"mood":     string(trig.Mood),
	})
}
