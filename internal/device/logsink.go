/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package device

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/models"
)

// LogSink stands in for a device when NATS is not configured. It accepts
// anything that has a playable url and logs the command.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink returns a headless sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "device").Logger()}
}

func (s *LogSink) PlayPreview(_ context.Context, t models.Track) (bool, error) {
	if t.PreviewURL == "" {
		return false, ErrNoPreview
	}
	s.logger.Info().Str("track", t.Label()).Str("url", t.PreviewURL).Msg("play preview")
	return true, nil
}

func (s *LogSink) PlayStream(_ context.Context, name, url string) (bool, error) {
	if url == "" {
		return false, nil
	}
	s.logger.Info().Str("station", name).Str("url", url).Msg("play stream")
	return true, nil
}

func (s *LogSink) PlayTone(context.Context) error {
	s.logger.Info().Msg("play alarm tone")
	return nil
}

func (s *LogSink) Stop(context.Context) error {
	s.logger.Info().Msg("stop playback")
	return nil
}

func (s *LogSink) SetVolume(_ context.Context, v float64) error {
	s.logger.Info().Float64("volume", v).Msg("set volume")
	return nil
}
