/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package session

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/friendsincode/smartalarm/internal/calendar"
	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/pipeline"
	"github.com/friendsincode/smartalarm/internal/radio"
	"github.com/friendsincode/smartalarm/internal/speech"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// prefetched holds what the modes need from slow providers.
type prefetched struct {
	events   []calendar.Event
	calErr   error
	stations []radio.Station
}

// prefetch loads calendar events and stations in parallel. Failures are
// kept for the mode that needs them.
func (c *Controller) prefetch(ctx context.Context, now time.Time) prefetched {
	var pf prefetched
	g, gctx := errgroup.WithContext(ctx)
	if c.deps.Calendar != nil {
		g.Go(func() error {
			pf.events, pf.calErr = c.deps.Calendar.TodaysEvents(gctx, now)
			return nil
		})
	} else {
		pf.calErr = errNoCalendar
	}
	g.Go(func() error {
		if c.deps.Stations != nil {
			pf.stations = c.deps.Stations(gctx)
		}
		if len(pf.stations) == 0 {
			pf.stations = radio.All()
		}
		return nil
	})
	_ = g.Wait()
	if pf.calErr != nil && c.deps.Calendar != nil {
		c.logger.Warn().Err(pf.calErr).Msg("calendar unavailable")
	}
	return pf
}

// ring plays the modes in order until one succeeds, then falls back to
// the spoken greeting and the alarm tone. Every step checks that gen is
// still live; a stopped or snoozed session never starts playback.
func (c *Controller) ring(ctx context.Context, sess *session, gen uint64, order []models.Mode, fresh bool) {
	trig := sess.trigger
	now := c.now()

	r := c.startRamp(trig, fresh)
	if err := c.deps.Sink.SetVolume(ctx, r.start()); err != nil {
		c.logger.Warn().Err(err).Msg("failed to set volume")
	}
	pf := c.prefetch(ctx, now)

	if fresh && trig.Urgent && c.relevant(sess, gen) {
		c.announceUrgent(ctx, pf.events, now)
	}

	var path []string
	for _, mode := range order {
		if !c.relevant(sess, gen) {
			c.logger.Info().Str("session_id", sess.id).Msg("session closed during selection")
			return
		}
		if c.play(ctx, sess, gen, mode, pf, now) {
			c.markRinging(sess, gen, mode, path)
			c.fade(ctx, sess, gen, r)
			return
		}
		path = append(path, string(mode))
		failed := append([]string(nil), path...)
		if !c.update(sess, gen, func(s *session) { s.fallbackPath = failed }) {
			return
		}
		telemetry.SessionFallbacksTotal.WithLabelValues(string(mode)).Inc()
		c.logger.Warn().Str("session_id", sess.id).Str("mode", string(mode)).Msg("media mode failed, falling back")
		c.publish(events.EventSessionModeFailed, events.Payload{
			"session_id": sess.id,
			"mode":       string(mode),
		})
	}

	if !c.relevant(sess, gen) {
		return
	}
	c.speak(ctx, speech.Fallback())
	if err := c.deps.Sink.PlayTone(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to play alarm tone")
	}
	path = append(path, FallbackStep)
	c.markRinging(sess, gen, "", path)
	c.fade(ctx, sess, gen, r)
}

const fadeSteps = 20

// ramp is the volume plan for one ring.
type ramp struct {
	target  float64
	on      bool
	volumes uint64
}

func (r ramp) start() float64 {
	if r.on {
		return 0
	}
	return r.target
}

// startRamp picks the ring volume. Loud triggers go straight to full
// volume without touching the user's setting. Only a fresh ring fades.
func (c *Controller) startRamp(trig models.Trigger, fresh bool) ramp {
	c.mu.Lock()
	defer c.mu.Unlock()
	if trig.Loud {
		return ramp{target: 1}
	}
	return ramp{target: c.volume, on: fresh && c.fadeIn > 0, volumes: c.volumes}
}

// fade raises the sink from silence to the target in fadeSteps equal
// steps. It stops when the session moves on or the volume is set by hand.
func (c *Controller) fade(ctx context.Context, sess *session, gen uint64, r ramp) {
	if !r.on {
		return
	}
	step := c.fadeIn / fadeSteps
	for i := 1; i <= fadeSteps; i++ {
		if err := c.sleep(ctx, step); err != nil {
			return
		}
		if !c.fading(sess, gen, r.volumes) {
			return
		}
		if err := c.deps.Sink.SetVolume(ctx, r.target*float64(i)/fadeSteps); err != nil {
			c.logger.Warn().Err(err).Msg("fade-in step failed")
			return
		}
	}
}

func (c *Controller) fading(sess *session, gen uint64, volumes uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur == sess && sess.gen == gen && sess.state == StateRinging && c.volumes == volumes
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Controller) announceUrgent(ctx context.Context, evs []calendar.Event, now time.Time) {
	if err := c.deps.Sink.PlayTone(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to play alarm tone")
	}
	next := ""
	if e, ok := calendar.NextUrgent(evs, now); ok {
		next = calendar.SpokenTime(e, now)
	}
	c.speak(ctx, speech.Urgent(next))
}

func (c *Controller) markRinging(sess *session, gen uint64, mode models.Mode, path []string) {
	ok := c.update(sess, gen, func(s *session) {
		s.state = StateRinging
		s.playedMode = mode
		s.fallbackPath = path
	})
	if !ok {
		return
	}
	played := string(mode)
	if played == "" {
		played = FallbackStep
	}
	c.logger.Info().
		Str("session_id", sess.id).
		Str("played_mode", played).
		Strs("fallback_path", path).
		Msg("alarm ringing")
	c.publish(events.EventSessionPlaying, events.Payload{
		"session_id":    sess.id,
		"alarm_id":      sess.trigger.AlarmID,
		"played_mode":   played,
		"fallback_path": path,
	})
}

func (c *Controller) play(ctx context.Context, sess *session, gen uint64, mode models.Mode, pf prefetched, now time.Time) bool {
	switch mode {
	case models.ModeMood:
		return c.playMood(ctx, sess, gen)
	case models.ModeRadio:
		return c.playRadio(ctx, sess, gen, pf.stations, now)
	case models.ModeCalendar:
		return c.playCalendar(ctx, sess, gen, pf, now)
	}
	return false
}

func (c *Controller) playMood(ctx context.Context, sess *session, gen uint64) bool {
	trig := sess.trigger
	c.speak(ctx, speech.Intro(models.ModeMood, string(trig.Mood)))

	res, err := c.deps.Selector.Select(ctx, pipeline.Request{Mood: trig.Mood, Languages: trig.Languages})
	if err != nil {
		c.logger.Warn().Err(err).Msg("track selection failed")
		return false
	}
	trace := res.Trace
	c.update(sess, gen, func(s *session) { s.trace = &trace })
	if res.Track == nil {
		c.logger.Info().Str("outcome", trace.Outcome).Msg("no track selected")
		return false
	}
	track := *res.Track
	c.publish(events.EventTrackSelected, events.Payload{
		"session_id": sess.id,
		"track_id":   track.ID,
		"name":       track.Name,
		"artist":     track.Artist,
		"score":      res.Score,
		"outcome":    trace.Outcome,
	})

	if !c.relevant(sess, gen) {
		return false
	}
	ok, err := c.deps.Sink.PlayPreview(ctx, track)
	if err != nil || !ok {
		c.logger.Warn().Err(err).Str("track", track.Label()).Msg("preview playback failed")
		return false
	}
	if !c.update(sess, gen, func(s *session) { s.track = &track }) {
		c.stopLate(ctx)
		return false
	}
	c.speak(ctx, speech.NowPlaying(track))
	c.record(ctx, trig, track, models.ActionPlay)
	return true
}

func (c *Controller) playRadio(ctx context.Context, sess *session, gen uint64, stations []radio.Station, now time.Time) bool {
	c.speak(ctx, speech.Intro(models.ModeRadio, ""))

	station, ok := c.pickStation(sess.trigger.RadioStationID, stations, now)
	if !ok {
		c.logger.Warn().Msg("no radio station available")
		return false
	}
	if !c.relevant(sess, gen) {
		return false
	}
	ok, err := c.deps.Sink.PlayStream(ctx, station.Name, station.URL)
	if err != nil || !ok {
		c.logger.Warn().Err(err).Str("station", station.Name).Msg("stream playback failed")
		return false
	}
	if !c.update(sess, gen, func(s *session) { s.station = &station }) {
		c.stopLate(ctx)
		return false
	}
	c.speak(ctx, speech.NowListening(station.Name))
	return true
}

// pickStation prefers the alarm's station and otherwise picks by hour.
func (c *Controller) pickStation(id string, stations []radio.Station, now time.Time) (radio.Station, bool) {
	if id != "" {
		for _, s := range stations {
			if s.ID == id {
				return s, true
			}
		}
		if s, ok := radio.Find(id); ok {
			return s, true
		}
		c.logger.Warn().Str("station_id", id).Msg("preferred station not found, picking by time of day")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return radio.SelectForAlarm(stations, now.Hour(), c.rng)
}

// playCalendar reads today's schedule. An unreadable calendar is
// announced as such; only a missing provider or a failed speaker counts
// as a mode failure.
func (c *Controller) playCalendar(ctx context.Context, sess *session, gen uint64, pf prefetched, now time.Time) bool {
	if c.deps.Calendar == nil {
		return false
	}
	if !c.relevant(sess, gen) {
		return false
	}
	text := calendar.Script(pf.events, now)
	if pf.calErr != nil {
		text = speech.CalendarUnavailable()
	}
	return c.speak(ctx, text)
}

// stopLate silences media that started after the session was closed.
func (c *Controller) stopLate(ctx context.Context) {
	if err := c.deps.Sink.Stop(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to stop playback")
	}
}
