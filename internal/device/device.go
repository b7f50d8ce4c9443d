/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package device drives the playback device: a phone or speaker that
// listens for commands over NATS.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Command operations, published on <prefix>.device.<op>.
const (
	OpPlayPreview = "play_preview"
	OpPlayStream  = "play_stream"
	OpPlayTone    = "play_tone"
	OpStop        = "stop"
	OpVolume      = "volume"
	OpSpeak       = "speak"
)

const defaultRequestTimeout = 5 * time.Second

// ErrNoPreview is returned for tracks without a playable preview.
var ErrNoPreview = errors.New("track has no preview url")

// Conn is the subset of *nats.Conn the client uses.
type Conn interface {
	Publish(subj string, data []byte) error
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Command is the message body sent to the device.
type Command struct {
	RequestID string        `json:"request_id"`
	Op        string        `json:"op"`
	Track     *models.Track `json:"track,omitempty"`
	URL       string        `json:"url,omitempty"`
	Name      string        `json:"name,omitempty"`
	Volume    float64       `json:"volume,omitempty"`
	Text      string        `json:"text,omitempty"`
	SentAt    time.Time     `json:"sent_at"`
}

// Reply is the device answer to a request/reply command.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Client sends commands to one device.
type Client struct {
	conn    Conn
	prefix  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewClient creates a device client. timeout bounds each request/reply.
func NewClient(conn Conn, prefix string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		conn:    conn,
		prefix:  prefix,
		timeout: timeout,
		logger:  logger.With().Str("component", "device").Logger(),
	}
}

// Subject returns the subject an operation is sent on.
func (c *Client) Subject(op string) string {
	return fmt.Sprintf("%s.device.%s", c.prefix, op)
}

// PlayPreview asks the device to play the track's preview and waits for
// its acknowledgement.
func (c *Client) PlayPreview(ctx context.Context, t models.Track) (bool, error) {
	if t.PreviewURL == "" {
		return false, ErrNoPreview
	}
	track := t
	return c.request(ctx, Command{Op: OpPlayPreview, Track: &track, URL: t.PreviewURL})
}

// PlayStream asks the device to tune into a radio stream.
func (c *Client) PlayStream(ctx context.Context, name, url string) (bool, error) {
	return c.request(ctx, Command{Op: OpPlayStream, Name: name, URL: url})
}

// PlayTone plays the built-in alarm tone.
func (c *Client) PlayTone(ctx context.Context) error {
	return c.publish(Command{Op: OpPlayTone})
}

// Stop halts any playback.
func (c *Client) Stop(ctx context.Context) error {
	return c.publish(Command{Op: OpStop})
}

// SetVolume sets the output volume in [0,1].
func (c *Client) SetVolume(ctx context.Context, v float64) error {
	return c.publish(Command{Op: OpVolume, Volume: v})
}

// Speak has the device read text aloud.
func (c *Client) Speak(ctx context.Context, text string) error {
	return c.publish(Command{Op: OpSpeak, Text: text})
}

func (c *Client) publish(cmd Command) error {
	data, err := c.encode(&cmd)
	if err != nil {
		return err
	}
	if err := c.conn.Publish(c.Subject(cmd.Op), data); err != nil {
		return fmt.Errorf("device %s: %w", cmd.Op, err)
	}
	c.logger.Debug().Str("op", cmd.Op).Str("request_id", cmd.RequestID).Msg("device command sent")
	return nil
}

func (c *Client) request(ctx context.Context, cmd Command) (bool, error) {
	data, err := c.encode(&cmd)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.conn.RequestWithContext(ctx, c.Subject(cmd.Op), data)
	if err != nil {
		return false, fmt.Errorf("device %s: %w", cmd.Op, err)
	}
	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return false, fmt.Errorf("device %s: decode reply: %w", cmd.Op, err)
	}
	if !reply.OK {
		c.logger.Warn().Str("op", cmd.Op).Str("error", reply.Error).Msg("device rejected command")
	}
	return reply.OK, nil
}

func (c *Client) encode(cmd *Command) ([]byte, error) {
	cmd.RequestID = uuid.NewString()
	cmd.SentAt = time.Now().UTC()
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("device %s: encode: %w", cmd.Op, err)
	}
	return data, nil
}
