/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/musicdb"
)

type fakeCatalog struct {
	mu      sync.Mutex
	queries []string
	fn      func(ctx context.Context, query string, call int) ([]models.Track, error)
}

func (f *fakeCatalog) Search(ctx context.Context, query string, _ int) ([]models.Track, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	call := len(f.queries)
	f.mu.Unlock()
	return f.fn(ctx, query, call)
}

func makeTracks(prefix string, n int) []models.Track {
	out := make([]models.Track, n)
	for i := range out {
		out[i] = models.Track{
			ID:     fmt.Sprintf("%s-%d", prefix, i),
			Name:   fmt.Sprintf("%s song %d", prefix, i),
			Artist: "Artist " + prefix,
		}
	}
	return out
}

func fixedClock() time.Time { return time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC) }

func newOrchestrator(cat Catalog, cfg Config) *Orchestrator {
	return New(cat, musicdb.Default(), cfg, zerolog.Nop()).WithClock(fixedClock)
}

func TestSearchStopsAfterPrimaryTierFills(t *testing.T) {
	cat := &fakeCatalog{fn: func(_ context.Context, _ string, call int) ([]models.Track, error) {
		return makeTracks(fmt.Sprintf("c%d", call), 10), nil
	}}
	o := newOrchestrator(cat, Config{})

	out := o.Search(context.Background(), models.MoodDance, []models.Language{models.LanguageTamil}, 20)

	if !out.Success {
		t.Fatal("Success = false, want true")
	}
	if len(cat.queries) != 2 {
		t.Fatalf("catalog calls = %d, want 2", len(cat.queries))
	}
	for _, r := range out.Log {
		if r.Strategy.Tier != TierPrimary {
			t.Errorf("strategy %q ran in tier %s, want only primary", r.Strategy.Name, r.Strategy.Tier)
		}
	}
	if len(out.Tracks) != 20 {
		t.Errorf("tracks = %d, want 20", len(out.Tracks))
	}
}

func TestSearchDuplicatesDoNotSatisfyPrimaryTier(t *testing.T) {
	// Every call returns the same tracks, so the unique count never grows.
	cat := &fakeCatalog{fn: func(_ context.Context, _ string, _ int) ([]models.Track, error) {
		return makeTracks("same", 6), nil
	}}
	o := newOrchestrator(cat, Config{})

	out := o.Search(context.Background(), models.MoodCalm, []models.Language{models.LanguageEnglish}, 20)

	var secondary, emergency int
	for _, r := range out.Log {
		switch r.Strategy.Tier {
		case TierSecondary:
			secondary++
		case TierEmergency:
			emergency++
		}
	}
	if secondary == 0 {
		t.Error("secondary tier not attempted while under-filled")
	}
	if emergency != 0 {
		t.Errorf("emergency strategies = %d, want 0 with 6 unique tracks", emergency)
	}
	if len(out.Tracks) != 6 {
		t.Errorf("tracks = %d, want 6", len(out.Tracks))
	}
}

func TestSearchFallsThroughToEmergencyTier(t *testing.T) {
	cat := &fakeCatalog{fn: func(_ context.Context, query string, _ int) ([]models.Track, error) {
		if strings.Contains(query, "year:") {
			return nil, nil
		}
		return makeTracks("rescue", 3), nil
	}}
	o := newOrchestrator(cat, Config{})
	langs := []models.Language{models.LanguageEnglish}

	out := o.Search(context.Background(), models.MoodDance, langs, 20)

	if !out.Success {
		t.Fatal("Success = false, want true")
	}
	if len(out.Tracks) != 3 {
		t.Fatalf("tracks = %d, want 3", len(out.Tracks))
	}

	db := musicdb.Default()
	want := len(Primary(db, models.MoodDance, langs, 3, 2026)) +
		len(Secondary(db, models.MoodDance, langs, 2026)) +
		len(Emergency(db, models.MoodDance, langs, 2026))
	if len(out.Log) != want {
		t.Errorf("search log entries = %d, want %d", len(out.Log), want)
	}

	tiers := map[Tier]bool{}
	for _, r := range out.Log {
		tiers[r.Strategy.Tier] = true
	}
	for _, tier := range []Tier{TierPrimary, TierSecondary, TierEmergency} {
		if !tiers[tier] {
			t.Errorf("no %s strategies in log", tier)
		}
	}
}

func TestSearchIsolatesStrategyFailures(t *testing.T) {
	cat := &fakeCatalog{fn: func(ctx context.Context, query string, call int) ([]models.Track, error) {
		switch call {
		case 1:
			return nil, errors.New("HTTP 503: Service Unavailable")
		case 2:
			<-ctx.Done()
			return nil, ctx.Err()
		case 3:
			panic("adapter bug")
		}
		return makeTracks(fmt.Sprintf("ok%d", call), 10), nil
	}}
	o := newOrchestrator(cat, Config{StrategyTimeout: 20 * time.Millisecond})

	out := o.Search(context.Background(), models.MoodEnergetic, []models.Language{models.LanguageEnglish}, 20)

	if !out.Success || len(out.Tracks) != 20 {
		t.Fatalf("Success = %v, tracks = %d; want true, 20", out.Success, len(out.Tracks))
	}
	if len(out.Log) < 5 {
		t.Fatalf("log entries = %d, want at least 5", len(out.Log))
	}
	if out.Log[0].Success || !strings.Contains(out.Log[0].Error, "503") {
		t.Errorf("log[0] = %+v, want failed 503", out.Log[0])
	}
	if out.Log[1].Success || !strings.Contains(out.Log[1].Error, "timeout") {
		t.Errorf("log[1].Error = %q, want timeout", out.Log[1].Error)
	}
	if out.Log[2].Success || out.Log[2].Error == "" {
		t.Errorf("log[2] = %+v, want failed panic", out.Log[2])
	}
}

func TestSearchTimesOutCatalogIgnoringContext(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	cat := &fakeCatalog{fn: func(_ context.Context, _ string, call int) ([]models.Track, error) {
		switch call {
		case 1:
			<-release
			return makeTracks("late", 10), nil
		case 2:
			time.Sleep(80 * time.Millisecond)
			return nil, nil
		}
		return makeTracks(fmt.Sprintf("ok%d", call), 10), nil
	}}
	o := newOrchestrator(cat, Config{StrategyTimeout: 20 * time.Millisecond})

	start := time.Now()
	out := o.Search(context.Background(), models.MoodCalm, []models.Language{models.LanguageEnglish}, 20)
	if took := time.Since(start); took > time.Second {
		t.Fatalf("search took %v, want the stuck call cut off", took)
	}

	if !out.Success {
		t.Fatal("Success = false, want later strategies to fill the result")
	}
	for i := 0; i < 2; i++ {
		if out.Log[i].Success || !strings.Contains(out.Log[i].Error, "timeout") {
			t.Errorf("log[%d] = success %v error %q, want timeout failure", i, out.Log[i].Success, out.Log[i].Error)
		}
	}
}

func TestSearchAllTiersEmpty(t *testing.T) {
	cat := &fakeCatalog{fn: func(context.Context, string, int) ([]models.Track, error) {
		return nil, errors.New("offline")
	}}
	o := newOrchestrator(cat, Config{})

	out := o.Search(context.Background(), models.MoodLove, nil, 0)

	if out.Success {
		t.Error("Success = true, want false")
	}
	if out.Tracks == nil || len(out.Tracks) != 0 {
		t.Errorf("Tracks = %v, want empty non-nil", out.Tracks)
	}
	if len(out.Log) != len(cat.queries) {
		t.Errorf("log entries = %d, catalog calls = %d", len(out.Log), len(cat.queries))
	}
}

func TestPrimaryStrategies(t *testing.T) {
	db := musicdb.Default()
	got := Primary(db, models.MoodDance, []models.Language{models.LanguageTamil}, 3, 2026)

	if len(got) < 3 {
		t.Fatalf("strategies = %d, want at least 3", len(got))
	}
	if want := `artist:"Anirudh Ravichander" dance year:2022-2026`; got[0].Query != want {
		t.Errorf("first query = %q, want %q", got[0].Query, want)
	}
	for i, s := range got {
		if s.Tier != TierPrimary {
			t.Errorf("strategy %d tier = %s", i, s.Tier)
		}
		if i > 0 && got[i-1].Priority > s.Priority {
			t.Errorf("strategy %d priority %d after %d", i, s.Priority, got[i-1].Priority)
		}
	}
}

func TestStrategiesCoverEveryRequestedLanguage(t *testing.T) {
	db := musicdb.Default()
	langs := []models.Language{models.LanguageTamil, models.LanguageEnglish}

	for _, tier := range []struct {
		name string
		got  []Strategy
	}{
		{"primary", Primary(db, models.MoodCalm, langs, 3, 2026)},
		{"secondary", Secondary(db, models.MoodCalm, langs, 2026)},
		{"emergency", Emergency(db, models.MoodCalm, langs, 2026)},
	} {
		t.Run(tier.name, func(t *testing.T) {
			seen := map[models.Language]bool{}
			for _, s := range tier.got {
				seen[s.Language] = true
			}
			for _, l := range langs {
				if !seen[l] {
					t.Errorf("no %s strategies", l)
				}
			}
		})
	}
}

func TestEmergencyStrategiesDropFilters(t *testing.T) {
	db := musicdb.Default()
	for _, s := range Emergency(db, models.MoodNeutral, []models.Language{models.LanguageTamil, models.LanguageEnglish}, 2026) {
		if strings.Contains(s.Query, "year:") || strings.Contains(s.Query, "market:") {
			t.Errorf("emergency query %q still filtered", s.Query)
		}
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := []models.Track{
		{ID: "1", Name: "Vaathi Coming", Artist: "Anirudh"},
		{ID: "2", Name: "vaathi coming ", Artist: "ANIRUDH"},
		{ID: "3", Name: "Levitating", Artist: "Dua Lipa"},
		{ID: "4", Name: "Levitating", Artist: "Dua Lipa"},
		{ID: "5", Name: "Shape of You", Artist: "Ed Sheeran"},
	}

	once := Dedupe(in)
	twice := Dedupe(once)

	if len(once) != 3 {
		t.Fatalf("Dedupe() = %d tracks, want 3", len(once))
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe(Dedupe(x)) = %v, want %v", twice, once)
	}
	if once[0].ID != "1" || once[1].ID != "3" {
		t.Errorf("Dedupe() kept %s,%s; want first occurrences 1,3", once[0].ID, once[1].ID)
	}
}

func TestAnalyzePerformance(t *testing.T) {
	log := []Result{
		{Success: true, Tracks: makeTracks("a", 4), Duration: 100 * time.Millisecond},
		{Success: false, Duration: 300 * time.Millisecond, Error: "boom"},
		{Success: true, Tracks: makeTracks("b", 2), Duration: 200 * time.Millisecond},
		{Success: false, Duration: 200 * time.Millisecond},
	}

	got := AnalyzePerformance(log)
	want := Performance{
		TotalStrategies:      4,
		SuccessfulStrategies: 2,
		TotalTracks:          6,
		AverageExecutionTime: 200 * time.Millisecond,
		SuccessRate:          50,
	}
	if got != want {
		t.Errorf("AnalyzePerformance() = %+v, want %+v", got, want)
	}

	if empty := AnalyzePerformance(nil); empty != (Performance{}) {
		t.Errorf("AnalyzePerformance(nil) = %+v, want zero", empty)
	}
}
