/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "testing"

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(EventAlarmFired)
	b := bus.Subscribe(EventAlarmFired)
	other := bus.Subscribe(EventSessionDismissed)

	bus.Publish(EventAlarmFired, Payload{"alarm_id": "a1"})

	for i, sub := range []Subscriber{a, b} {
		select {
		case p := <-sub:
			if p["alarm_id"] != "a1" {
				t.Errorf("subscriber %d payload = %v", i, p)
			}
		default:
			t.Errorf("subscriber %d got nothing", i)
		}
	}
	select {
	case p := <-other:
		t.Errorf("unrelated subscriber got %v", p)
	default:
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventSessionVolume)
	for i := 0; i < cap(sub)+5; i++ {
		bus.Publish(EventSessionVolume, Payload{"i": i})
	}
	if len(sub) != cap(sub) {
		t.Errorf("buffered = %d, want %d", len(sub), cap(sub))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventAlarmRejected)
	bus.Unsubscribe(EventAlarmRejected, sub)

	if _, ok := <-sub; ok {
		t.Error("channel still open after Unsubscribe")
	}
	bus.Publish(EventAlarmRejected, Payload{})
}
