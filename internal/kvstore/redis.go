/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package kvstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// KeyPrefix namespaces every key written to Redis.
const KeyPrefix = "smartalarm:kv:"

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // zero keeps keys forever

	// DisableOnError trips the store offline after the first Redis failure.
	DisableOnError bool
}

// Redis is a Store backed by a Redis server. When the server is not
// reachable the store reports itself unavailable and every call fails
// fast so a Tiered store can fall through to its durable layer.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
	config RedisConfig

	mu       sync.RWMutex
	disabled bool
}

// errUnavailable is returned while the circuit is open.
var errUnavailable = errors.New("kvstore: redis unavailable")

// NewRedis connects to Redis. A failed ping is not an error: the store
// comes up disabled.
func NewRedis(cfg RedisConfig, logger zerolog.Logger) *Redis {
	logger = logger.With().Str("component", "kvstore_redis").Logger()
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, running without cache")
		_ = client.Close()
		return &Redis{logger: logger, config: cfg, disabled: true}
	}

	logger.Info().Str("addr", cfg.Addr).Msg("redis store initialized")
	return &Redis{client: client, logger: logger, config: cfg}
}

// NewRedisWithClient wraps an existing client without probing it.
func NewRedisWithClient(client *redis.Client, cfg RedisConfig, logger zerolog.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger.With().Str("component", "kvstore_redis").Logger(),
		config: cfg,
	}
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// IsAvailable reports whether the store is operational.
func (r *Redis) IsAvailable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.disabled && r.client != nil
}

func (r *Redis) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}

	r.logger.Debug().Err(err).Str("operation", operation).Msg("redis operation failed")

	if r.config.DisableOnError {
		r.mu.Lock()
		r.disabled = true
		r.mu.Unlock()
		r.logger.Warn().Msg("disabling redis store due to error")
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.IsAvailable() {
		return nil, errUnavailable
	}
	data, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.handleError(err, "get")
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if !r.IsAvailable() {
		return errUnavailable
	}
	if err := r.client.Set(ctx, KeyPrefix+key, value, r.config.TTL).Err(); err != nil {
		r.handleError(err, "set")
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if !r.IsAvailable() {
		return errUnavailable
	}
	if err := r.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		r.handleError(err, "delete")
		return err
	}
	return nil
}
