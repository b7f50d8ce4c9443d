/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/friendsincode/smartalarm/internal/calendar"
	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/pipeline"
	"github.com/friendsincode/smartalarm/internal/speech"
)

var testNow = time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)

type fakeSelector struct {
	mu     sync.Mutex
	tracks []*models.Track
	err    error
	calls  int
	called chan struct{}
	block  chan struct{}
}

func (f *fakeSelector) Select(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	if f.called != nil {
		f.called <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return pipeline.Result{}, f.err
	}
	if len(f.tracks) == 0 {
		return pipeline.Result{Trace: pipeline.Trace{Mood: req.Mood, Outcome: pipeline.OutcomeNoCandidates}}, nil
	}
	if i >= len(f.tracks) {
		i = len(f.tracks) - 1
	}
	return pipeline.Result{
		Track: f.tracks[i],
		Score: 80,
		Trace: pipeline.Trace{Mood: req.Mood, Outcome: pipeline.OutcomeSelected},
	}, nil
}

type fakeSink struct {
	mu         sync.Mutex
	ops        []string
	streamFail bool
}

func (f *fakeSink) add(op string) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

func (f *fakeSink) PlayPreview(_ context.Context, t models.Track) (bool, error) {
	if t.PreviewURL == "" {
		return false, errors.New("no preview")
	}
	f.add("preview:" + t.ID)
	return true, nil
}

func (f *fakeSink) PlayStream(_ context.Context, name, _ string) (bool, error) {
	if f.streamFail {
		return false, nil
	}
	f.add("stream:" + name)
	return true, nil
}

func (f *fakeSink) PlayTone(context.Context) error {
	f.add("tone")
	return nil
}

func (f *fakeSink) Stop(context.Context) error {
	f.add("stop")
	return nil
}

func (f *fakeSink) SetVolume(_ context.Context, v float64) error {
	f.add(fmt.Sprintf("volume:%.2f", v))
	return nil
}

func (f *fakeSink) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakeSink) has(prefix string) bool {
	for _, op := range f.snapshot() {
		if strings.HasPrefix(op, prefix) {
			return true
		}
	}
	return false
}

type fakeSpeaker struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeSpeaker) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeRecorder struct {
	mu      sync.Mutex
	actions []models.Action
	tracks  []string
}

func (f *fakeRecorder) RecordInteraction(_ context.Context, in models.UserInteraction) error {
	f.mu.Lock()
	f.actions = append(f.actions, in.Action)
	f.tracks = append(f.tracks, in.Track.ID)
	f.mu.Unlock()
	return nil
}

type scheduled struct {
	at   time.Time
	trig models.Trigger
}

type fakeScheduler struct {
	mu   sync.Mutex
	jobs []scheduled
}

func (f *fakeScheduler) ScheduleOnce(at time.Time, trig models.Trigger) {
	f.mu.Lock()
	f.jobs = append(f.jobs, scheduled{at: at, trig: trig})
	f.mu.Unlock()
}

type failingCalendar struct{}

func (failingCalendar) TodaysEvents(context.Context, time.Time) ([]calendar.Event, error) {
	return nil, errors.New("calendar api: 503")
}

type fixture struct {
	ctrl    *Controller
	sel     *fakeSelector
	sink    *fakeSink
	speaker *fakeSpeaker
	rec     *fakeRecorder
	sched   *fakeScheduler
	db      *gorm.DB
	bus     *events.Bus
}

func newFixture(t *testing.T, sel *fakeSelector, cal calendar.Provider) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.SessionLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	f := &fixture{
		sel:     sel,
		sink:    &fakeSink{},
		speaker: &fakeSpeaker{},
		rec:     &fakeRecorder{},
		sched:   &fakeScheduler{},
		db:      db,
		bus:     events.NewBus(),
	}
	f.ctrl = New(Deps{
		Selector:  sel,
		Sink:      f.sink,
		Speaker:   f.speaker,
		Calendar:  cal,
		Learning:  f.rec,
		Scheduler: f.sched,
		DB:        db,
		Bus:       f.bus,
	}, zerolog.Nop()).WithClock(func() time.Time { return testNow }).WithRand(rand.New(rand.NewSource(3)))
	return f
}

func track(id string) *models.Track {
	return &models.Track{ID: id, Name: "Song " + id, Artist: "Anirudh Ravichander", PreviewURL: "https://p.example/" + id}
}

func trigger(mode models.Mode) models.Trigger {
	return models.Trigger{
		AlarmID:    "a1",
		Mode:       mode,
		Mood:       models.MoodEnergetic,
		Languages:  []models.Language{models.LanguageEnglish},
		MaxSnoozes: models.DefaultMaxSnoozes,
	}
}

func TestFireMoodPlaysSelectedTrack(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)

	st, err := f.ctrl.Fire(context.Background(), trigger(models.ModeMood))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}

	if st.State != StateRinging || st.PlayedMode != models.ModeMood {
		t.Fatalf("status = %s/%s, want ringing/mood", st.State, st.PlayedMode)
	}
	if st.Track == nil || st.Track.ID != "t1" {
		t.Fatalf("track = %+v, want t1", st.Track)
	}
	if len(st.FallbackPath) != 0 {
		t.Errorf("fallback path = %v, want empty", st.FallbackPath)
	}
	if st.Trace == nil || st.Trace.Outcome != pipeline.OutcomeSelected {
		t.Errorf("trace = %+v", st.Trace)
	}
	wantSpeech := []string{speech.Intro(models.ModeMood, "Energetic"), speech.NowPlaying(*track("t1"))}
	if got := f.speaker.snapshot(); strings.Join(got, "|") != strings.Join(wantSpeech, "|") {
		t.Errorf("speech = %q, want %q", got, wantSpeech)
	}
	if len(f.rec.actions) != 1 || f.rec.actions[0] != models.ActionPlay {
		t.Errorf("recorded = %v, want [play]", f.rec.actions)
	}
	if !f.sink.has("preview:t1") {
		t.Errorf("sink ops = %v, want preview:t1", f.sink.snapshot())
	}
}

func TestFireFallbackOrder(t *testing.T) {
	today := calendar.Static{
		{ID: "e1", Summary: "Standup", Start: testNow.Add(3 * time.Hour), End: testNow.Add(4 * time.Hour)},
	}
	tests := []struct {
		name       string
		mode       models.Mode
		tracks     []*models.Track
		streamFail bool
		cal        calendar.Provider
		wantPlayed models.Mode
		wantPath   []string
		wantSpoken string
	}{
		{
			name:       "mood plays",
			mode:       models.ModeMood,
			tracks:     []*models.Track{track("t1")},
			wantPlayed: models.ModeMood,
		},
		{
			name:       "mood falls back to radio",
			mode:       models.ModeMood,
			wantPlayed: models.ModeRadio,
			wantPath:   []string{"mood"},
		},
		{
			name:       "radio falls back to mood",
			mode:       models.ModeRadio,
			tracks:     []*models.Track{track("t1")},
			streamFail: true,
			wantPlayed: models.ModeMood,
			wantPath:   []string{"radio"},
		},
		{
			name:       "calendar reads schedule",
			mode:       models.ModeCalendar,
			cal:        today,
			wantPlayed: models.ModeCalendar,
			wantSpoken: "Standup",
		},
		{
			name:       "unreadable calendar is announced",
			mode:       models.ModeCalendar,
			cal:        failingCalendar{},
			wantPlayed: models.ModeCalendar,
			wantSpoken: speech.CalendarUnavailable(),
		},
		{
			name:       "calendar without provider falls back to mood",
			mode:       models.ModeCalendar,
			tracks:     []*models.Track{track("t1")},
			wantPlayed: models.ModeMood,
			wantPath:   []string{"calendar"},
		},
		{
			name:       "everything fails",
			mode:       models.ModeMood,
			streamFail: true,
			wantPlayed: "",
			wantPath:   []string{"mood", "radio", "calendar", FallbackStep},
			wantSpoken: speech.Fallback(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &fakeSelector{tracks: tt.tracks}, tt.cal)
			f.sink.streamFail = tt.streamFail

			st, err := f.ctrl.Fire(context.Background(), trigger(tt.mode))
			if err != nil {
				t.Fatalf("Fire: %v", err)
			}
			if st.State != StateRinging {
				t.Errorf("state = %s, want ringing", st.State)
			}
			if st.PlayedMode != tt.wantPlayed {
				t.Errorf("played = %q, want %q", st.PlayedMode, tt.wantPlayed)
			}
			if strings.Join(st.FallbackPath, ",") != strings.Join(tt.wantPath, ",") {
				t.Errorf("path = %v, want %v", st.FallbackPath, tt.wantPath)
			}
			if tt.wantSpoken != "" {
				spoken := strings.Join(f.speaker.snapshot(), "\n")
				if !strings.Contains(spoken, tt.wantSpoken) {
					t.Errorf("speech %q missing %q", spoken, tt.wantSpoken)
				}
			}
			if tt.wantPlayed == "" && !f.sink.has("tone") {
				t.Errorf("fallback did not play tone: %v", f.sink.snapshot())
			}
		})
	}
}

func TestFireRejectsWhileActive(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	rejected := f.bus.Subscribe(events.EventAlarmRejected)
	defer f.bus.Unsubscribe(events.EventAlarmRejected, rejected)

	first, err := f.ctrl.Fire(context.Background(), trigger(models.ModeMood))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	second := trigger(models.ModeRadio)
	second.AlarmID = "a2"
	if _, err := f.ctrl.Fire(context.Background(), second); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Fire error = %v, want ErrSessionActive", err)
	}

	select {
	case p := <-rejected:
		if p["alarm_id"] != "a2" || p["session_id"] != first.SessionID {
			t.Errorf("rejected payload = %v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no alarm.rejected event")
	}
	if st := f.ctrl.Status(); st.SessionID != first.SessionID || st.State != StateRinging {
		t.Errorf("status = %+v, want first session still ringing", st)
	}
}

func TestFireRejectsInvalidTrigger(t *testing.T) {
	f := newFixture(t, &fakeSelector{}, nil)
	trig := trigger(models.ModeMood)
	trig.Mood = "Sleepy"
	if _, err := f.ctrl.Fire(context.Background(), trig); !errors.Is(err, models.ErrInvalidMood) {
		t.Errorf("Fire error = %v, want ErrInvalidMood", err)
	}
	if st := f.ctrl.Status(); st.State != StateIdle {
		t.Errorf("state = %s, want idle", st.State)
	}
}

func TestStopWritesSessionLog(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	ctx := context.Background()

	fired, err := f.ctrl.Fire(ctx, trigger(models.ModeMood))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	st, err := f.ctrl.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if st.State != StateDismissed {
		t.Errorf("state = %s, want dismissed", st.State)
	}
	ops := f.sink.snapshot()
	if ops[len(ops)-1] != "stop" {
		t.Errorf("last sink op = %q, want stop", ops[len(ops)-1])
	}

	var logs []models.SessionLog
	if err := f.db.Find(&logs).Error; err != nil {
		t.Fatalf("query logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(logs))
	}
	got := logs[0]
	if got.ID != fired.SessionID || got.Outcome != OutcomeDismissed || got.PlayedMode != models.ModeMood || got.TrackID != "t1" {
		t.Errorf("log = %+v", got)
	}

	if _, err := f.ctrl.Stop(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("second Stop error = %v, want ErrNoActiveSession", err)
	}
}

func TestStopDuringSelectionNeverPlays(t *testing.T) {
	sel := &fakeSelector{
		tracks: []*models.Track{track("t1")},
		called: make(chan struct{}, 1),
		block:  make(chan struct{}),
	}
	f := newFixture(t, sel, nil)
	ctx := context.Background()

	if _, err := f.ctrl.Start(ctx, trigger(models.ModeMood)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-sel.called:
	case <-time.After(2 * time.Second):
		t.Fatal("selector never called")
	}
	if st := f.ctrl.Status(); st.State != StateSelecting {
		t.Errorf("state = %s, want selecting", st.State)
	}
	if _, err := f.ctrl.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	close(sel.block)
	f.ctrl.Wait()

	if f.sink.has("preview:") || f.sink.has("stream:") || f.sink.has("tone") {
		t.Errorf("playback after stop: %v", f.sink.snapshot())
	}
	if len(f.rec.actions) != 0 {
		t.Errorf("recorded = %v, want none", f.rec.actions)
	}
	if st := f.ctrl.Status(); st.State != StateDismissed {
		t.Errorf("state = %s, want dismissed", st.State)
	}
}

func TestSnoozeUntilLimit(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	ctx := context.Background()
	trig := trigger(models.ModeMood)
	trig.MaxSnoozes = 2
	trig.SnoozeMinutes = 9

	if _, err := f.ctrl.Snooze(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Snooze without session error = %v, want ErrNoActiveSession", err)
	}
	if _, err := f.ctrl.Fire(ctx, trig); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	wantSpeech := []string{speech.Snooze(1), speech.Snooze(0)}
	for i := 0; i < 2; i++ {
		st, err := f.ctrl.Snooze(ctx)
		if err != nil {
			t.Fatalf("Snooze %d: %v", i+1, err)
		}
		if st.State != StateSnoozed || st.SnoozesLeft != 1-i || st.Snoozes != i+1 {
			t.Errorf("snooze %d status = %s left=%d count=%d", i+1, st.State, st.SnoozesLeft, st.Snoozes)
		}
		spoken := f.speaker.snapshot()
		if last := spoken[len(spoken)-1]; last != wantSpeech[i] {
			t.Errorf("snooze %d speech = %q, want %q", i+1, last, wantSpeech[i])
		}
		if _, err := f.ctrl.Snooze(ctx); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Snooze while snoozed error = %v, want ErrInvalidTransition", err)
		}

		job := f.sched.jobs[len(f.sched.jobs)-1]
		if want := testNow.Add(9 * time.Minute); !job.at.Equal(want) {
			t.Errorf("re-fire at %v, want %v", job.at, want)
		}
		if !job.trig.Resume || job.trig.AlarmID != "a1" {
			t.Errorf("re-fire trigger = %+v", job.trig)
		}
		resumed, err := f.ctrl.Fire(ctx, job.trig)
		if err != nil {
			t.Fatalf("resume %d: %v", i+1, err)
		}
		if resumed.State != StateRinging || resumed.Snoozes != i+1 {
			t.Errorf("resume %d status = %s snoozes=%d", i+1, resumed.State, resumed.Snoozes)
		}
	}

	if _, err := f.ctrl.Snooze(ctx); !errors.Is(err, ErrSnoozeLimit) {
		t.Errorf("third Snooze error = %v, want ErrSnoozeLimit", err)
	}
}

func TestSnoozedSessionSupersededByOtherAlarm(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	ctx := context.Background()

	first, err := f.ctrl.Fire(ctx, trigger(models.ModeMood))
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if _, err := f.ctrl.Snooze(ctx); err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	other := trigger(models.ModeMood)
	other.AlarmID = "a2"
	second, err := f.ctrl.Fire(ctx, other)
	if err != nil {
		t.Fatalf("Fire other: %v", err)
	}
	if second.SessionID == first.SessionID || second.AlarmID != "a2" {
		t.Errorf("second session = %+v", second)
	}

	var log models.SessionLog
	if err := f.db.First(&log, "id = ?", first.SessionID).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if log.Outcome != OutcomeSuperseded || log.Snoozes != 1 {
		t.Errorf("log = %+v", log)
	}

	// The old snooze re-fire no longer matches anything.
	stale := f.sched.jobs[0].trig
	if _, err := f.ctrl.Fire(ctx, stale); !errors.Is(err, ErrSessionActive) {
		t.Errorf("stale re-fire error = %v, want ErrSessionActive", err)
	}
}

func TestResumeAfterStopIsIgnored(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	ctx := context.Background()

	if _, err := f.ctrl.Fire(ctx, trigger(models.ModeMood)); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if _, err := f.ctrl.Snooze(ctx); err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if _, err := f.ctrl.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := f.ctrl.Fire(ctx, f.sched.jobs[0].trig); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("resume error = %v, want ErrNoActiveSession", err)
	}
	if st := f.ctrl.Status(); st.State != StateDismissed {
		t.Errorf("state = %s, want dismissed", st.State)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.4, 0.4},
		{1, 1},
		{3, 1},
	}
	for _, tt := range tests {
		f := newFixture(t, &fakeSelector{}, nil)
		got, err := f.ctrl.SetVolume(context.Background(), tt.in)
		if err != nil {
			t.Fatalf("SetVolume(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("SetVolume(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if st := f.ctrl.Status(); st.Volume != tt.want {
			t.Errorf("status volume = %v, want %v", st.Volume, tt.want)
		}
		ops := f.sink.snapshot()
		if want := fmt.Sprintf("volume:%.2f", tt.want); ops[len(ops)-1] != want {
			t.Errorf("sink op = %q, want %q", ops[len(ops)-1], want)
		}
	}
}

func TestNextSkipsAndPlaysFreshPick(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1"), track("t2")}}, nil)
	ctx := context.Background()

	if _, err := f.ctrl.Fire(ctx, trigger(models.ModeMood)); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	st, err := f.ctrl.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if st.State != StateRinging || st.Track == nil || st.Track.ID != "t2" {
		t.Fatalf("status after next = %s track=%+v", st.State, st.Track)
	}

	wantActions := []models.Action{models.ActionPlay, models.ActionSkip, models.ActionPlay}
	wantTracks := []string{"t1", "t1", "t2"}
	if fmt.Sprint(f.rec.actions) != fmt.Sprint(wantActions) || fmt.Sprint(f.rec.tracks) != fmt.Sprint(wantTracks) {
		t.Errorf("recorded %v %v, want %v %v", f.rec.actions, f.rec.tracks, wantActions, wantTracks)
	}
}

func TestNextRequiresMoodPlayback(t *testing.T) {
	f := newFixture(t, &fakeSelector{}, nil)
	ctx := context.Background()

	if _, err := f.ctrl.Next(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Next idle error = %v, want ErrNoActiveSession", err)
	}
	if _, err := f.ctrl.Fire(ctx, trigger(models.ModeRadio)); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if _, err := f.ctrl.Next(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Next on radio error = %v, want ErrInvalidTransition", err)
	}
}

func TestUrgentAnnouncesNextEvent(t *testing.T) {
	cal := calendar.Static{
		{ID: "e1", Summary: "Flight", Start: testNow.Add(45 * time.Minute), End: testNow.Add(3 * time.Hour)},
	}
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, cal)
	trig := trigger(models.ModeMood)
	trig.Urgent = true

	if _, err := f.ctrl.Fire(context.Background(), trig); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	spoken := f.speaker.snapshot()
	if want := speech.Urgent("7:15 AM"); len(spoken) == 0 || spoken[0] != want {
		t.Errorf("first speech = %q, want %q", spoken, want)
	}
	ops := f.sink.snapshot()
	if len(ops) < 2 || ops[1] != "tone" {
		t.Errorf("sink ops = %v, want tone right after volume", ops)
	}
}

func TestRunConsumesTriggersAndClosesOnShutdown(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	triggers := make(chan models.Trigger, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.ctrl.Run(ctx, triggers) }()

	triggers <- trigger(models.ModeMood)
	deadline := time.Now().Add(2 * time.Second)
	for f.ctrl.Status().State != StateRinging {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want ringing", f.ctrl.Status().State)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st := f.ctrl.Status(); st.State != StateDismissed {
		t.Errorf("state after shutdown = %s, want dismissed", st.State)
	}
	var log models.SessionLog
	if err := f.db.First(&log).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if log.Outcome != OutcomeShutdown {
		t.Errorf("outcome = %q, want %q", log.Outcome, OutcomeShutdown)
	}
}

func TestFallbackOrder(t *testing.T) {
	tests := []struct {
		mode models.Mode
		want string
	}{
		{models.ModeMood, "mood,radio,calendar"},
		{models.ModeRadio, "radio,mood,calendar"},
		{models.ModeCalendar, "calendar,mood,radio"},
	}
	for _, tt := range tests {
		var got []string
		for _, m := range fallbackOrder(tt.mode) {
			got = append(got, string(m))
		}
		if strings.Join(got, ",") != tt.want {
			t.Errorf("fallbackOrder(%s) = %v, want %s", tt.mode, got, tt.want)
		}
	}
}

func TestSnoozeFollowsPattern(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	ctx := context.Background()
	trig := trigger(models.ModeMood)
	trig.MaxSnoozes = 4
	trig.SnoozeMinutes = 9
	trig.SnoozePattern = []int{5, 4, 3}

	if _, err := f.ctrl.Fire(ctx, trig); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	for i, minutes := range []int{5, 4, 3, 9} {
		if _, err := f.ctrl.Snooze(ctx); err != nil {
			t.Fatalf("Snooze %d: %v", i+1, err)
		}
		job := f.sched.jobs[len(f.sched.jobs)-1]
		if want := testNow.Add(time.Duration(minutes) * time.Minute); !job.at.Equal(want) {
			t.Errorf("snooze %d re-fires at %v, want %v", i+1, job.at, want)
		}
		if _, err := f.ctrl.Fire(ctx, job.trig); err != nil {
			t.Fatalf("resume %d: %v", i+1, err)
		}
	}
}

func volumeOps(ops []string) []string {
	var out []string
	for _, op := range ops {
		if strings.HasPrefix(op, "volume:") {
			out = append(out, op)
		}
	}
	return out
}

func TestFadeInRampsToVolume(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	f.ctrl.WithFadeIn(2 * time.Second)
	var steps []time.Duration
	f.ctrl.sleep = func(_ context.Context, d time.Duration) error {
		steps = append(steps, d)
		return nil
	}

	if _, err := f.ctrl.Fire(context.Background(), trigger(models.ModeMood)); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	ops := f.sink.snapshot()
	if ops[0] != "volume:0.00" || ops[1] != "preview:t1" {
		t.Fatalf("ops start = %v, want silent volume then preview", ops[:2])
	}
	vols := volumeOps(ops[2:])
	if len(vols) != fadeSteps {
		t.Fatalf("fade steps = %d, want %d: %v", len(vols), fadeSteps, vols)
	}
	if vols[0] != "volume:0.04" || vols[len(vols)-1] != "volume:0.80" {
		t.Errorf("fade = %s..%s, want volume:0.04..volume:0.80", vols[0], vols[len(vols)-1])
	}
	if len(steps) != fadeSteps || steps[0] != 100*time.Millisecond {
		t.Errorf("sleeps = %v, want %d x 100ms", steps, fadeSteps)
	}
}

func TestFadeInYieldsToManualVolume(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	f.ctrl.WithFadeIn(time.Second)
	calls := 0
	f.ctrl.sleep = func(ctx context.Context, _ time.Duration) error {
		calls++
		if calls == 3 {
			if _, err := f.ctrl.SetVolume(ctx, 0.3); err != nil {
				t.Errorf("SetVolume: %v", err)
			}
		}
		return nil
	}

	if _, err := f.ctrl.Fire(context.Background(), trigger(models.ModeMood)); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	got := volumeOps(f.sink.snapshot())
	want := []string{"volume:0.00", "volume:0.04", "volume:0.08", "volume:0.30"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("volume ops = %v, want %v", got, want)
	}
	if st := f.ctrl.Status(); st.Volume != 0.3 {
		t.Errorf("status volume = %v, want 0.3", st.Volume)
	}
}

func TestLoudTriggerSkipsFade(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1")}}, nil)
	f.ctrl.WithFadeIn(2 * time.Second)
	f.ctrl.sleep = func(context.Context, time.Duration) error {
		t.Error("loud trigger should not fade")
		return nil
	}
	trig := trigger(models.ModeMood)
	trig.Loud = true

	st, err := f.ctrl.Fire(context.Background(), trig)
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if got := volumeOps(f.sink.snapshot()); len(got) != 1 || got[0] != "volume:1.00" {
		t.Errorf("volume ops = %v, want [volume:1.00]", got)
	}
	if st.Volume != models.DefaultVolume {
		t.Errorf("status volume = %v, want user setting %v", st.Volume, models.DefaultVolume)
	}
}

func TestNextKeepsVolumeWithoutFade(t *testing.T) {
	f := newFixture(t, &fakeSelector{tracks: []*models.Track{track("t1"), track("t2")}}, nil)
	f.ctrl.WithFadeIn(time.Second)
	sleeps := 0
	f.ctrl.sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}
	ctx := context.Background()

	if _, err := f.ctrl.Fire(ctx, trigger(models.ModeMood)); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	before := len(f.sink.snapshot())
	if _, err := f.ctrl.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if got := volumeOps(f.sink.snapshot()[before:]); len(got) != 1 || got[0] != "volume:0.80" {
		t.Errorf("volume ops on next = %v, want [volume:0.80]", got)
	}
	if sleeps != fadeSteps {
		t.Errorf("sleeps = %d, want %d from the first ring only", sleeps, fadeSteps)
	}
}
