/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/models"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu        sync.Mutex
	published []published
	subjects  []string
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{subject: subj, data: data})
	return nil
}

func (f *fakeConn) Subscribe(subj string, _ nats.MsgHandler) (*nats.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subj)
	return nil, nil
}

func (f *fakeConn) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.published...)
}

var fixedNow = time.Date(2026, 6, 1, 6, 45, 0, 0, time.UTC)

func newBridge(conn Conn, triggers chan models.Trigger) *NATSBridge {
	b := NewNATSBridge(conn, events.NewBus(), "smartalarm", triggers, zerolog.Nop())
	b.now = func() time.Time { return fixedNow }
	return b
}

func TestHandleFire(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		accept bool
		check  func(t *testing.T, trig models.Trigger)
	}{
		{
			name:   "defaults filled",
			body:   `{"alarm_id":"a1"}`,
			accept: true,
			check: func(t *testing.T, trig models.Trigger) {
				if trig.Mode != models.ModeMood || trig.Mood != models.MoodNeutral {
					t.Errorf("mode/mood = %s/%s", trig.Mode, trig.Mood)
				}
				if trig.MaxSnoozes != models.DefaultMaxSnoozes || trig.SnoozeMinutes != models.DefaultSnoozeMinutes {
					t.Errorf("snooze settings = %d/%d", trig.MaxSnoozes, trig.SnoozeMinutes)
				}
				if !trig.FiredAt.Equal(fixedNow) {
					t.Errorf("FiredAt = %v, want %v", trig.FiredAt, fixedNow)
				}
				if len(trig.Languages) != 1 || trig.Languages[0] != models.DefaultLanguage {
					t.Errorf("Languages = %v", trig.Languages)
				}
			},
		},
		{
			name:   "explicit fields kept",
			body:   `{"alarm_id":"a2","mode":"radio","mood":"Calm","languages":["Tamil"],"max_snoozes":1,"urgent":true}`,
			accept: true,
			check: func(t *testing.T, trig models.Trigger) {
				if trig.Mode != models.ModeRadio || trig.Mood != models.MoodCalm || !trig.Urgent || trig.MaxSnoozes != 1 {
					t.Errorf("trigger = %+v", trig)
				}
			},
		},
		{name: "bad json", body: `{`, accept: false},
		{name: "bad mood", body: `{"mood":"Sleepy"}`, accept: false},
		{name: "bad mode", body: `{"mode":"tv"}`, accept: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triggers := make(chan models.Trigger, 1)
			b := newBridge(&fakeConn{}, triggers)

			b.handleFire(&nats.Msg{Subject: b.FireSubject(), Data: []byte(tt.body)})

			select {
			case trig := <-triggers:
				if !tt.accept {
					t.Fatalf("accepted %+v, want rejection", trig)
				}
				tt.check(t, trig)
			default:
				if tt.accept {
					t.Fatal("no trigger emitted")
				}
			}
		})
	}
}

func TestHandleFireDropsWhenQueueFull(t *testing.T) {
	triggers := make(chan models.Trigger, 1)
	b := newBridge(&fakeConn{}, triggers)
	msg := &nats.Msg{Data: []byte(`{"alarm_id":"a1"}`)}

	b.handleFire(msg)
	b.handleFire(msg)

	if len(triggers) != 1 {
		t.Errorf("queued = %d, want 1", len(triggers))
	}
}

func TestRunMirrorsBusEvents(t *testing.T) {
	conn := &fakeConn{}
	b := newBridge(conn, make(chan models.Trigger, 1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	var got []published
	for time.Now().Before(deadline) {
		b.bus.Publish(events.EventSessionDismissed, events.Payload{"alarm_id": "a1"})
		if got = conn.snapshot(); len(got) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(got) == 0 {
		t.Fatal("no event mirrored to nats")
	}
	if got[0].subject != "smartalarm.events.session.dismissed" {
		t.Errorf("subject = %q", got[0].subject)
	}
	var msg natsMessage
	if err := json.Unmarshal(got[0].data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.EventType != events.EventSessionDismissed || msg.Payload["alarm_id"] != "a1" || msg.NodeID == "" || msg.MessageID == "" {
		t.Errorf("message = %+v", msg)
	}
	if len(conn.subjects) != 1 || conn.subjects[0] != "smartalarm.alarm.fire" {
		t.Errorf("subscribed = %v", conn.subjects)
	}
}
