/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package events is the in-process publish/subscribe bus for alarm and
// session events.
package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventAlarmFired    EventType = "alarm.fired"
	EventAlarmRejected EventType = "alarm.rejected"
	EventAlarmSnoozed  EventType = "alarm.snoozed"

	EventSessionStarted    EventType = "session.started"
	EventSessionModeFailed EventType = "session.mode_failed"
	EventSessionPlaying    EventType = "session.playing"
	EventSessionDismissed  EventType = "session.dismissed"
	EventSessionVolume     EventType = "session.volume"

	EventTrackSelected       EventType = "selection.track"
	EventInteractionRecorded EventType = "learning.interaction"
)

// AllEventTypes lists every event type, e.g. for bridges that mirror
// the whole bus.
var AllEventTypes = []EventType{
	EventAlarmFired,
	EventAlarmRejected,
	EventAlarmSnoozed,
	EventSessionStarted,
	EventSessionModeFailed,
	EventSessionPlaying,
	EventSessionDismissed,
	EventSessionVolume,
	EventTrackSelected,
	EventInteractionRecorded,
}

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus implements a simple in-process pubsub.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers without blocking. A subscriber
// whose buffer is full misses the event. Sends happen under the read lock
// and Unsubscribe closes under the write lock.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	b.subs[eventType] = subs
	close(sub)
}
