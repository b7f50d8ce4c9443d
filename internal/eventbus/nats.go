/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus and NATS: alarm-fire
// messages come in as triggers and bus events are mirrored out.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/events"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/telemetry"
)

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL    string
	Token  string
	Prefix string
	// Connection options
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Prefix:        "smartalarm",
		MaxReconnects: -1, // Unlimited
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Connect dials NATS and logs connection state changes.
func Connect(cfg NATSConfig, logger zerolog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("smartalarm"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}
	logger.Info().Str("url", nc.ConnectedUrl()).Msg("nats connected")
	return nc, nil
}

// Conn is the subset of *nats.Conn the bridge uses.
type Conn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// NATSBridge moves alarm triggers and events between NATS and the process.
type NATSBridge struct {
	conn     Conn
	bus      *events.Bus
	prefix   string
	nodeID   string
	triggers chan<- models.Trigger
	logger   zerolog.Logger
	now      func() time.Time
}

// NewNATSBridge creates a bridge. Accepted alarm-fire messages are sent
// on triggers.
func NewNATSBridge(conn Conn, bus *events.Bus, prefix string, triggers chan<- models.Trigger, logger zerolog.Logger) *NATSBridge {
	return &NATSBridge{
		conn:     conn,
		bus:      bus,
		prefix:   prefix,
		nodeID:   uuid.NewString(),
		triggers: triggers,
		logger:   logger.With().Str("component", "eventbus").Logger(),
		now:      time.Now,
	}
}

// FireSubject is where alarm-fire messages arrive.
func (b *NATSBridge) FireSubject() string {
	return b.prefix + ".alarm.fire"
}

// EventSubject is where a bus event is mirrored.
func (b *NATSBridge) EventSubject(t events.EventType) string {
	return fmt.Sprintf("%s.events.%s", b.prefix, t)
}

// Run subscribes and forwards until ctx is done.
func (b *NATSBridge) Run(ctx context.Context) error {
	sub, err := b.conn.Subscribe(b.FireSubject(), b.handleFire)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.FireSubject(), err)
	}
	defer func() {
		if sub != nil {
			_ = sub.Unsubscribe()
		}
	}()

	var wg sync.WaitGroup
	subs := make(map[events.EventType]events.Subscriber, len(events.AllEventTypes))
	for _, et := range events.AllEventTypes {
		ch := b.bus.Subscribe(et)
		subs[et] = ch
		wg.Add(1)
		go func(et events.EventType, ch events.Subscriber) {
			defer wg.Done()
			b.forward(ctx, et, ch)
		}(et, ch)
	}

	b.logger.Info().Str("subject", b.FireSubject()).Msg("nats bridge started")
	<-ctx.Done()
	wg.Wait()
	for et, ch := range subs {
		b.bus.Unsubscribe(et, ch)
	}
	b.logger.Info().Msg("nats bridge stopped")
	return nil
}

func (b *NATSBridge) forward(ctx context.Context, et events.EventType, ch events.Subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			b.publishEvent(et, payload)
		}
	}
}

func (b *NATSBridge) publishEvent(et events.EventType, payload events.Payload) {
	data, err := marshalNATSMessage(et, payload, b.nodeID, b.now())
	if err != nil {
		b.logger.Warn().Err(err).Str("event", string(et)).Msg("failed to encode event")
		return
	}
	if err := b.conn.Publish(b.EventSubject(et), data); err != nil {
		b.logger.Warn().Err(err).Str("event", string(et)).Msg("failed to publish event")
	}
}

// handleFire accepts a Trigger JSON body. The trigger channel is never
// blocked on: a busy controller means the fire is dropped and counted.
func (b *NATSBridge) handleFire(msg *nats.Msg) {
	trig := models.Trigger{MaxSnoozes: models.DefaultMaxSnoozes}
	if err := json.Unmarshal(msg.Data, &trig); err != nil {
		telemetry.AlarmTriggersTotal.WithLabelValues("nats", "invalid").Inc()
		b.logger.Warn().Err(err).Msg("invalid alarm fire message")
		return
	}
	if err := trig.Normalize(b.now()); err != nil {
		telemetry.AlarmTriggersTotal.WithLabelValues("nats", "invalid").Inc()
		b.logger.Warn().Err(err).Str("alarm_id", trig.AlarmID).Msg("invalid alarm fire message")
		return
	}

	select {
	case b.triggers <- trig:
		telemetry.AlarmTriggersTotal.WithLabelValues("nats", "accepted").Inc()
		b.logger.Info().Str("alarm_id", trig.AlarmID).Str("mode", string(trig.Mode)).Msg("alarm fire received")
	default:
		telemetry.AlarmTriggersTotal.WithLabelValues("nats", "dropped").Inc()
		b.logger.Warn().Str("alarm_id", trig.AlarmID).Msg("trigger queue full, dropping alarm fire")
	}
}

// natsMessage represents a message published to NATS.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"` // For deduplication
}

// marshalNATSMessage converts payload to NATS message format.
func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string, at time.Time) ([]byte, error) {
	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: at,
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	return json.Marshal(msg)
}
