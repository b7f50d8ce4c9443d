/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	ws "nhooyr.io/websocket"

	"github.com/friendsincode/smartalarm/internal/alarm"
	"github.com/friendsincode/smartalarm/internal/calendar"
	"github.com/friendsincode/smartalarm/internal/device"
	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/kvstore"
	"github.com/friendsincode/smartalarm/internal/langdetect"
	"github.com/friendsincode/smartalarm/internal/learning"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/musicdb"
	"github.com/friendsincode/smartalarm/internal/pipeline"
	"github.com/friendsincode/smartalarm/internal/prediction"
	"github.com/friendsincode/smartalarm/internal/radio"
	"github.com/friendsincode/smartalarm/internal/randomizer"
	"github.com/friendsincode/smartalarm/internal/session"
	"github.com/friendsincode/smartalarm/internal/speech"
)

// Monday.
var testNow = time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type stubSelector struct{}

func (stubSelector) Select(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	return pipeline.Result{
		Track: &models.Track{ID: "t1", Name: "Wake Up", Artist: "Anirudh Ravichander", PreviewURL: "https://cdn.example/t1.mp3"},
		Score: 91,
		Trace: pipeline.Trace{Mood: req.Mood, Languages: req.Languages, Outcome: "selected"},
	}, nil
}

type fixture struct {
	router   chi.Router
	ctrl     *session.Controller
	sched    *alarm.Scheduler
	learning *learning.Store
	history  *randomizer.History
	predict  *prediction.Predictor
	bus      *events.Bus
}

func newFixture(t *testing.T, cal calendar.Provider) *fixture {
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
	if err := db.AutoMigrate(&models.Alarm{}, &models.SessionLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zerolog.Nop()
	kv := kvstore.NewMemory()
	bus := events.NewBus()
	store := alarm.NewStore(db, logger)
	sched := alarm.NewScheduler(store, make(chan models.Trigger, 4), bus, time.Second, logger).WithClock(clock)
	learn := learning.NewStore(kv, logger).WithClock(clock)
	history := randomizer.NewHistory(kv, 100, logger).WithClock(clock)
	predict := prediction.New(kv, logger)

	ctrl := session.New(session.Deps{
		Selector:  stubSelector{},
		Sink:      device.NewLogSink(logger),
		Speaker:   speech.NewLogSpeaker(logger),
		Calendar:  cal,
		Learning:  learn,
		Scheduler: sched,
		DB:        db,
		Bus:       bus,
	}, logger).WithClock(clock)

	a := New(Deps{
		Selector:   stubSelector{},
		Classifier: langdetect.New(musicdb.Default()),
		Alarms:     store,
		Session:    ctrl,
		Learning:   learn,
		History:    history,
		Calendar:   cal,
		Predictor:  predict,
		Bus:        bus,
	}, logger).WithClock(clock)

	r := chi.NewRouter()
	a.Routes(r)
	return &fixture{router: r, ctrl: ctrl, sched: sched, learning: learn, history: history, predict: predict, bus: bus}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rr)["error"]
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.do(t, http.MethodGet, "/api/v1/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode[map[string]string](t, rr)
	if body["status"] != "ok" || body["session"] != string(session.StateIdle) {
		t.Errorf("health = %v", body)
	}
}

func TestAlarmsCRUD(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodPost, "/api/v1/alarms", `{"label":"Work","time":"07:00","mood":"Calm"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", rr.Code, rr.Body)
	}
	created := decode[alarmView](t, rr)
	if created.ID == "" || !created.Enabled || created.MaxSnoozes != models.DefaultMaxSnoozes || created.SnoozeMinutes != models.DefaultSnoozeMinutes {
		t.Errorf("created = %+v", created.Alarm)
	}
	if created.NextFire == nil || !created.NextFire.Equal(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("next_fire = %v", created.NextFire)
	}

	rr = f.do(t, http.MethodGet, "/api/v1/alarms", "")
	if list := decode[[]alarmView](t, rr); len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	path := "/api/v1/alarms/" + created.ID
	rr = f.do(t, http.MethodPut, path, `{"label":"Gym","enabled":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", rr.Code, rr.Body)
	}
	updated := decode[alarmView](t, rr)
	if updated.Label != "Gym" || updated.Time != "07:00" || updated.Mood != models.MoodCalm || updated.NextFire != nil {
		t.Errorf("updated = %+v next %v", updated.Alarm, updated.NextFire)
	}

	if rr = f.do(t, http.MethodGet, path, ""); decode[alarmView](t, rr).Label != "Gym" {
		t.Errorf("get after update = %s", rr.Body)
	}
	if rr = f.do(t, http.MethodDelete, path, ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rr.Code)
	}
	rr = f.do(t, http.MethodGet, path, "")
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "alarm_not_found" {
		t.Errorf("get deleted = %d %s", rr.Code, rr.Body)
	}
}

func TestAlarmsCreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"time":`, "invalid_json"},
		{"bad time", `{"time":"7am"}`, "invalid_alarm"},
		{"bad mood", `{"time":"07:00","mood":"Sleepy"}`, "invalid_alarm"},
		{"bad mode", `{"time":"07:00","mode":"tv"}`, "invalid_alarm"},
	}
	f := newFixture(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/v1/alarms", tt.body)
			if rr.Code != http.StatusBadRequest || errorCode(t, rr) != tt.code {
				t.Errorf("got %d %s, want 400 %s", rr.Code, rr.Body, tt.code)
			}
		})
	}
}

func TestTriggerAndSessionControls(t *testing.T) {
	f := newFixture(t, nil)
	created := decode[alarmView](t, f.do(t, http.MethodPost, "/api/v1/alarms", `{"time":"07:00","mood":"Energetic","max_snoozes":1}`))
	trigger := "/api/v1/alarms/" + created.ID + "/trigger"

	rr := f.do(t, http.MethodPost, trigger, "")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("trigger status = %d body %s", rr.Code, rr.Body)
	}
	f.ctrl.Wait()

	st := decode[session.Status](t, f.do(t, http.MethodGet, "/api/v1/session", ""))
	if st.State != session.StateRinging || st.Track == nil || st.Track.ID != "t1" || st.AlarmID != created.ID {
		t.Fatalf("status = %+v", st)
	}

	rr = f.do(t, http.MethodPost, trigger, "")
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "session_active" {
		t.Errorf("second trigger = %d %s", rr.Code, rr.Body)
	}

	rr = f.do(t, http.MethodPost, "/api/v1/session/snooze", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("snooze status = %d body %s", rr.Code, rr.Body)
	}
	if st = decode[session.Status](t, rr); st.State != session.StateSnoozed || st.SnoozesLeft != 0 || st.ResumeAt == nil {
		t.Errorf("snoozed status = %+v", st)
	}
	if f.sched.Pending() != 1 {
		t.Errorf("pending re-fires = %d, want 1", f.sched.Pending())
	}

	rr = f.do(t, http.MethodPost, "/api/v1/session/next", "")
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "invalid_transition" {
		t.Errorf("next while snoozed = %d %s", rr.Code, rr.Body)
	}

	if rr = f.do(t, http.MethodPost, "/api/v1/session/stop", ""); rr.Code != http.StatusOK {
		t.Errorf("stop status = %d body %s", rr.Code, rr.Body)
	}
	rr = f.do(t, http.MethodPost, "/api/v1/session/stop", "")
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "no_active_session" {
		t.Errorf("second stop = %d %s", rr.Code, rr.Body)
	}
}

func TestTriggerUnknownAlarm(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.do(t, http.MethodPost, "/api/v1/alarms/missing/trigger", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestSessionVolume(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodPost, "/api/v1/session/volume", `{"volume":1.5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body)
	}
	if v := decode[map[string]float64](t, rr)["volume"]; v != 1 {
		t.Errorf("volume = %v, want 1", v)
	}

	rr = f.do(t, http.MethodPost, "/api/v1/session/volume", `{}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "volume_required" {
		t.Errorf("missing volume = %d %s", rr.Code, rr.Body)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
		lang   models.Language
	}{
		{"selects track", `{"mood":"energetic","languages":["Tamil"]}`, http.StatusOK, "", models.LanguageTamil},
		{"language case folded", `{"mood":"energetic","languages":["tamil"]}`, http.StatusOK, "", models.LanguageTamil},
		{"bad mood", `{"mood":"Sleepy"}`, http.StatusBadRequest, "invalid_mood", ""},
		{"bad language", `{"mood":"Calm","languages":["Klingon"]}`, http.StatusBadRequest, "invalid_language", ""},
		{"malformed", `mood`, http.StatusBadRequest, "invalid_json", ""},
	}
	f := newFixture(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/v1/select", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d body %s", rr.Code, rr.Body)
			}
			if tt.code != "" {
				if got := errorCode(t, rr); got != tt.code {
					t.Errorf("error = %q, want %q", got, tt.code)
				}
				return
			}
			res := decode[pipeline.Result](t, rr)
			if res.Track == nil || res.Track.ID != "t1" || res.Trace.Mood != models.MoodEnergetic {
				t.Errorf("result = %+v", res)
			}
			if len(res.Trace.Languages) == 0 || res.Trace.Languages[0] != tt.lang {
				t.Errorf("languages = %v, want %s first", res.Trace.Languages, tt.lang)
			}
		})
	}
}

type classifyResponse struct {
	Scores      []langdetect.Score `json:"scores"`
	QuickDetect models.Language    `json:"quick_detect"`
	Explanation string             `json:"explanation"`
}

func TestClassify(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodPost, "/api/v1/classify", `{"title":"Anirudh Dance Hit","artist":"Anirudh Ravichander"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body)
	}
	body := decode[classifyResponse](t, rr)
	if len(body.Scores) == 0 || body.Scores[0].Language != models.LanguageTamil || body.QuickDetect != models.LanguageTamil {
		t.Errorf("classify = %+v", body)
	}
	if !strings.HasPrefix(body.Explanation, "Detection: Tamil") {
		t.Errorf("explanation = %q", body.Explanation)
	}

	rr = f.do(t, http.MethodPost, "/api/v1/classify", `{"title":" "}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty input status = %d", rr.Code)
	}
}

func TestInteractionsAndLearning(t *testing.T) {
	f := newFixture(t, nil)
	recorded := f.bus.Subscribe(events.EventInteractionRecorded)

	body := `{"action":"like","track":{"id":"t1","name":"Wake Up","artist":"Anirudh Ravichander","language":"Tamil"},"context":{"mood":"Energetic"}}`
	for i := 0; i < 2; i++ {
		if rr := f.do(t, http.MethodPost, "/api/v1/interactions", body); rr.Code != http.StatusCreated {
			t.Fatalf("interaction status = %d body %s", rr.Code, rr.Body)
		}
	}
	select {
	case p := <-recorded:
		if p["action"] != "like" || p["source"] != "api" {
			t.Errorf("event payload = %v", p)
		}
	default:
		t.Error("no learning.interaction event")
	}

	rr := f.do(t, http.MethodPost, "/api/v1/interactions", `{"action":"shrug","track":{"artist":"x"},"context":{"mood":"Calm"}}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_interaction" {
		t.Errorf("invalid interaction = %d %s", rr.Code, rr.Body)
	}

	insights := decode[learning.Insights](t, f.do(t, http.MethodGet, "/api/v1/learning/insights", ""))
	if insights.GlobalStats.TotalInteractions != 2 || len(insights.TopArtists) != 1 {
		t.Errorf("insights = %+v", insights)
	}

	rec := decode[learning.Recommendation](t, f.do(t, http.MethodGet, "/api/v1/learning/recommendations?mood=energetic&language=tamil", ""))
	if len(rec.RecommendedArtists) != 1 || rec.RecommendedArtists[0] != "anirudh ravichander" {
		t.Errorf("recommendations = %+v", rec)
	}
	if rr := f.do(t, http.MethodGet, "/api/v1/learning/recommendations?mood=sleepy", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad mood status = %d", rr.Code)
	}

	if rr := f.do(t, http.MethodDelete, "/api/v1/learning", ""); rr.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rr.Code)
	}
	insights = decode[learning.Insights](t, f.do(t, http.MethodGet, "/api/v1/learning/insights", ""))
	if insights.GlobalStats.TotalInteractions != 0 {
		t.Errorf("insights after reset = %+v", insights.GlobalStats)
	}
}

func TestInteractionRatingUpdatesHistory(t *testing.T) {
	f := newFixture(t, nil)
	track := models.Track{ID: "t1", Name: "Wake Up", Artist: "Anirudh Ravichander"}
	f.history.Record(context.Background(), track, models.MoodCalm, models.LanguageTamil)

	body := `{"action":"replay","rating":4,"track":{"id":"t1","name":"Wake Up","artist":"Anirudh Ravichander"},"context":{"mood":"Calm"}}`
	if rr := f.do(t, http.MethodPost, "/api/v1/interactions", body); rr.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body)
	}
	e, ok := f.history.Lookup(track)
	if !ok || e.UserRating != 4 {
		t.Errorf("history entry = %+v, %v", e, ok)
	}
}

func TestHistoryStatsAndReset(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "A"} {
		f.history.Record(ctx, models.Track{ID: name, Name: name, Artist: "X"}, models.MoodCalm, models.LanguageEnglish)
	}

	stats := decode[randomizer.Stats](t, f.do(t, http.MethodGet, "/api/v1/history/stats?mood=calm", ""))
	if stats.TotalUniqueTracks != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if rr := f.do(t, http.MethodGet, "/api/v1/history/stats?language=any", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("language=any status = %d, want 400", rr.Code)
	}

	if rr := f.do(t, http.MethodDelete, "/api/v1/history", ""); rr.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rr.Code)
	}
	if n := len(f.history.Entries()); n != 0 {
		t.Errorf("entries after reset = %d", n)
	}
}

func TestPredict(t *testing.T) {
	f := newFixture(t, nil)
	const night = `"bedtime":"23:00","alarm_time":"07:00","sleep_duration_hours":7.5,` +
		`"screen_time_before_bed_min":30,"light_activity_min":20,"is_weekend":false`

	rr := f.do(t, http.MethodPost, "/api/v1/predict", `{`+night+`}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "missing_field" {
		t.Errorf("missing chronotype = %d %s", rr.Code, rr.Body)
	}
	rr = f.do(t, http.MethodPost, "/api/v1/predict", `{`+night+`,"chronotype":"owl"}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_input" {
		t.Errorf("unknown chronotype = %d %s", rr.Code, rr.Body)
	}
	rr = f.do(t, http.MethodPost, "/api/v1/predict", `{`+night+`,"chronotype":"early","alarm_id":"nope"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown alarm = %d %s", rr.Code, rr.Body)
	}

	rr = f.do(t, http.MethodPost, "/api/v1/alarms", `{"time":"07:00","mode":"radio"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", rr.Code, rr.Body)
	}
	created := decode[alarmView](t, rr)

	rr = f.do(t, http.MethodPost, "/api/v1/predict",
		`{`+night+`,"chronotype":"early","alarm_id":"`+created.ID+`","record":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("predict status = %d body %s", rr.Code, rr.Body)
	}
	out := decode[predictResponse](t, rr)
	if out.Score != 7.7 || out.SnoozePattern != "5-4-3-0" || out.MediaAction != prediction.ActionRadioPlay {
		t.Errorf("plan = %v/%s/%s", out.Score, out.SnoozePattern, out.MediaAction)
	}
	if out.Alarm == nil || out.Alarm.MaxSnoozes != 3 || out.Alarm.SnoozeMinutes != 5 || len(out.Alarm.SnoozePattern) != 3 {
		t.Fatalf("applied alarm = %+v", out.Alarm)
	}

	stored := decode[alarmView](t, f.do(t, http.MethodGet, "/api/v1/alarms/"+created.ID, ""))
	if stored.Mood != models.MoodCalm || stored.SnoozePattern[2] != 3 {
		t.Errorf("stored alarm = %+v", stored.Alarm)
	}

	baseline := decode[prediction.Baseline](t, f.do(t, http.MethodGet, "/api/v1/prediction/baseline", ""))
	if baseline.LastScore != 7.7 {
		t.Errorf("baseline last score = %v, want 7.7", baseline.LastScore)
	}
	if rr = f.do(t, http.MethodDelete, "/api/v1/prediction/baseline", ""); rr.Code != http.StatusNoContent {
		t.Errorf("reset status = %d", rr.Code)
	}
	if got := f.predict.Baseline().LastScore; got != prediction.DefaultBaseline().LastScore {
		t.Errorf("last score after reset = %v", got)
	}
}

func TestCalendarScript(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.do(t, http.MethodGet, "/api/v1/calendar/script", "")
	if rr.Code != http.StatusServiceUnavailable || errorCode(t, rr) != "calendar_not_configured" {
		t.Errorf("no calendar = %d %s", rr.Code, rr.Body)
	}

	standup := calendar.Event{ID: "e1", Summary: "Standup", Start: testNow.Add(20 * time.Minute), End: testNow.Add(35 * time.Minute)}
	f = newFixture(t, calendar.Static{standup})
	rr = f.do(t, http.MethodGet, "/api/v1/calendar/script", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body)
	}
	var body struct {
		Script        string           `json:"script"`
		Urgent        []calendar.Event `json:"urgent"`
		EarlyMorning  bool             `json:"early_morning"`
		SuggestedWake *time.Time       `json:"suggested_wake"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body.Script, "Standup") || len(body.Urgent) != 1 || !body.EarlyMorning {
		t.Errorf("calendar = %+v", body)
	}
	if body.SuggestedWake == nil || !body.SuggestedWake.Equal(testNow.Add(-10*time.Minute)) {
		t.Errorf("suggested wake = %v", body.SuggestedWake)
	}
}

func TestRadioStationsDefaultList(t *testing.T) {
	f := newFixture(t, nil)
	stations := decode[[]radio.Station](t, f.do(t, http.MethodGet, "/api/v1/radio/stations?q=jazz", ""))
	if len(stations) != len(radio.All()) {
		t.Errorf("stations = %d, want %d", len(stations), len(radio.All()))
	}
}

func TestEventsStream(t *testing.T) {
	f := newFixture(t, nil)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events?types=session.volume"
	conn, _, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	// The server subscribes after the handshake, so keep publishing until
	// the first event arrives.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				f.bus.Publish(events.EventSessionVolume, events.Payload{"volume": 0.4})
			}
		}
	}()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if msg.Type != string(events.EventSessionVolume) || msg.Payload["volume"] != 0.4 {
		t.Errorf("message = %+v", msg)
	}
}

func TestParseEventTypes(t *testing.T) {
	got := parseEventTypes("alarm.fired, bogus ,session.playing")
	if len(got) != 2 || got[0] != events.EventAlarmFired || got[1] != events.EventSessionPlaying {
		t.Errorf("parseEventTypes = %v", got)
	}
	if parseEventTypes("") != nil {
		t.Error("empty input should yield nil")
	}
}
