/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/smartalarm/internal/config"
	"github.com/friendsincode/smartalarm/internal/db"
	"github.com/friendsincode/smartalarm/internal/kvstore"
	"github.com/friendsincode/smartalarm/internal/langdetect"
	"github.com/friendsincode/smartalarm/internal/learning"
	"github.com/friendsincode/smartalarm/internal/models"
	"github.com/friendsincode/smartalarm/internal/musicdb"
	"github.com/friendsincode/smartalarm/internal/pipeline"
	"github.com/friendsincode/smartalarm/internal/prediction"
	"github.com/friendsincode/smartalarm/internal/randomizer"
	"github.com/friendsincode/smartalarm/internal/scoring"
	"github.com/friendsincode/smartalarm/internal/search"
	"github.com/friendsincode/smartalarm/internal/spotify"
)

var errCatalogUnconfigured = errors.New("spotify credentials not configured")

// unconfiguredCatalog fails every search, so selections fall back to
// radio and calendar modes.
type unconfiguredCatalog struct{}

func (unconfiguredCatalog) Search(context.Context, string, int) ([]models.Track, error) {
	return nil, errCatalogUnconfigured
}

// Services is the selection stack shared by the server and the CLI.
type Services struct {
	DB         *gorm.DB
	KV         kvstore.Store
	MusicDB    *musicdb.Database
	Classifier *langdetect.Classifier
	History    *randomizer.History
	Learning   *learning.Store
	Predictor  *prediction.Predictor
	Pipeline   *pipeline.Pipeline

	closers []func() error
}

// NewServices opens the stores and assembles the pipeline. Persisted
// history and learning state are loaded before it returns.
func NewServices(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Services, error) {
	s := &Services{}

	database, err := db.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	s.DB = database
	s.closers = append(s.closers, func() error { return db.Close(database) })

	if err := db.Migrate(database); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	s.KV, err = s.openKV(cfg, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.MusicDB = musicdb.Default()
	if cfg.MusicDBFile != "" {
		if s.MusicDB, err = musicdb.LoadFile(cfg.MusicDBFile); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("load music database: %w", err)
		}
		logger.Info().Str("file", cfg.MusicDBFile).Msg("music database overrides loaded")
	}
	s.Classifier = langdetect.New(s.MusicDB).WithThreshold(cfg.QuickDetectThreshold)

	var catalog search.Catalog = unconfiguredCatalog{}
	if cfg.SpotifyEnabled() {
		catalog = spotify.New(spotify.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			BaseURL:      cfg.SpotifyBaseURL,
			TokenURL:     cfg.SpotifyTokenURL,
			Market:       cfg.SpotifyMarket,
			MaxRetries:   cfg.SpotifyMaxRetries,
			Timeout:      cfg.SpotifyTimeout,
		}, logger)
	} else {
		logger.Warn().Msg("spotify not configured, mood selection will fall back to other modes")
	}

	searchCfg := search.DefaultConfig()
	searchCfg.QueryLimit = cfg.SearchQueryLimit
	searchCfg.StrategyTimeout = cfg.SearchStrategyTimeout
	searchCfg.DefaultMaxResults = cfg.SearchMaxResults
	orch := search.New(catalog, s.MusicDB, searchCfg, logger)

	s.History = randomizer.NewHistory(s.KV, cfg.HistoryLimit, logger)
	if err := s.History.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("play history unreadable, starting empty")
	}
	s.Learning = learning.NewStore(s.KV, logger)
	if err := s.Learning.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("learning model unreadable, starting fresh")
	}
	s.Predictor = prediction.New(s.KV, logger)
	if err := s.Predictor.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("sleep baseline unreadable, using defaults")
	}

	rnd := randomizer.New(s.History, rand.New(rand.NewSource(time.Now().UnixNano())), logger)
	s.Pipeline = pipeline.New(orch, scoring.New(s.MusicDB, s.Classifier), rnd, s.Learning, varietyConfig(cfg), logger)
	return s, nil
}

func (s *Services) openKV(cfg *config.Config, logger zerolog.Logger) (kvstore.Store, error) {
	redisStore := func() *kvstore.Redis {
		r := kvstore.NewRedis(kvstore.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		}, logger)
		s.closers = append(s.closers, r.Close)
		return r
	}

	switch cfg.KVBackend {
	case config.KVMemory:
		return kvstore.NewMemory(), nil
	case config.KVGorm:
		return kvstore.NewGorm(s.DB), nil
	case config.KVRedis:
		return redisStore(), nil
	case config.KVTiered:
		return kvstore.NewTiered(redisStore(), kvstore.NewGorm(s.DB), logger), nil
	default:
		return nil, fmt.Errorf("unknown kv backend: %s", cfg.KVBackend)
	}
}

func varietyConfig(cfg *config.Config) randomizer.Config {
	v := randomizer.DefaultConfig()
	v.MinTimeBetweenReplays = cfg.ReplayWindow
	v.MaxRecentTracks = cfg.MaxRecentTracks
	v.VarietyBonus = cfg.VarietyBonus
	v.TopK = cfg.TopK
	return v
}

// Close releases owned resources in reverse order.
func (s *Services) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
