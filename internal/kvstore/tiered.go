/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package kvstore

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Tiered reads through a fast cache in front of a durable store.
// Writes go to the durable store first; cache failures are logged and
// otherwise ignored.
type Tiered struct {
	cache   Store
	durable Store
	logger  zerolog.Logger
}

// NewTiered layers cache over durable. A nil cache yields durable-only
// behaviour.
func NewTiered(cache, durable Store, logger zerolog.Logger) *Tiered {
	return &Tiered{cache: cache, durable: durable, logger: logger.With().Str("component", "kvstore").Logger()}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, error) {
	if t.cache != nil {
		data, err := t.cache.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			t.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
	}

	data, err := t.durable.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, data); err != nil {
			t.logger.Debug().Err(err).Str("key", key).Msg("cache fill failed")
		}
	}
	return data, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte) error {
	if err := t.durable.Set(ctx, key, value); err != nil {
		return err
	}
	if t.cache != nil {
		if err := t.cache.Set(ctx, key, value); err != nil {
			t.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return nil
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	if t.cache != nil {
		if err := t.cache.Delete(ctx, key); err != nil {
			t.logger.Debug().Err(err).Str("key", key).Msg("cache delete failed")
		}
	}
	return t.durable.Delete(ctx, key)
}
