/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package speech defines the text-to-speech capability and the texts the
// alarm speaks.
package speech

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Speaker turns text into audio on the device.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// LogSpeaker writes announcements to the log instead of speaking them.
type LogSpeaker struct {
	logger zerolog.Logger
}

// NewLogSpeaker returns a headless speaker.
func NewLogSpeaker(logger zerolog.Logger) *LogSpeaker {
	return &LogSpeaker{logger: logger.With().Str("component", "speech").Logger()}
}

// Speak logs text.
func (s *LogSpeaker) Speak(_ context.Context, text string) error {
	s.logger.Info().Str("text", text).Msg("speak")
	return nil
}

// Intro announces the playback mode. info names the mood for mood mode.
func Intro(mode models.Mode, info string) string {
	switch mode {
	case models.ModeMood:
		if info == "" {
			info = "personalized"
		}
		return fmt.Sprintf("Good morning! I've selected a %s song to match your mood and wake you up gently.", info)
	case models.ModeRadio:
		return "Good morning! Tuning you in to your selected radio station to start your day with live content."
	case models.ModeCalendar:
		return "Good morning! Let me read your schedule for today to help you plan your day."
	default:
		return Fallback()
	}
}

// Urgent is the urgent wake-up call. nextEvent is a spoken time or empty.
func Urgent(nextEvent string) string {
	msg := "This is your urgent wake-up call! "
	if nextEvent != "" {
		msg += fmt.Sprintf("You have an important event coming up at %s. ", nextEvent)
	}
	return msg + "Time to get up now!"
}

// Snooze warns about the snoozes left.
func Snooze(remaining int) string {
	switch {
	case remaining <= 1:
		return "This is your final snooze. Time to wake up!"
	case remaining <= 2:
		return fmt.Sprintf("You have %d snoozes remaining. Consider getting up soon.", remaining)
	default:
		return fmt.Sprintf("Snooze activated. %d snoozes remaining.", remaining)
	}
}

// NowPlaying names the selected track.
func NowPlaying(t models.Track) string {
	return fmt.Sprintf("Now playing: %s by %s", t.Name, t.Artist)
}

// NowListening names the tuned station.
func NowListening(station string) string {
	return fmt.Sprintf("You're now listening to %s", station)
}

// CalendarUnavailable replaces the schedule when the calendar cannot be read.
func CalendarUnavailable() string {
	return "Good morning! I'm unable to access your calendar at the moment, but I hope you have a wonderful day ahead!"
}

// Fallback is the greeting spoken when no media mode could play.
func Fallback() string {
	return "Good morning! Time to wake up and start your day!"
}
