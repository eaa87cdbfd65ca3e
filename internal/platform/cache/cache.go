// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache provides a Redis-backed key/value cache and an HTTP response
cache middleware built on top of it.

Keys are namespaced by the caller (e.g. "news:trending:10", "cache:/api/v1/news").
Invalidation works by key-prefix pattern, scanning incrementally so large
keyspaces never block the server.
*/
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint used while walking the keyspace for invalidation.
const scanBatch = 200

// Store is a JSON cache over Redis.
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a Store.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Get decodes the cached value under key into dest.
// It reports false, nil on a miss.
func (store *Store) Get(context context.Context, key string, dest any) (bool, error) {
	raw, err := store.GetBytes(context, key)
	if err != nil || raw == nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache_decode_failed: %s: %w", key, err)
	}
	return true, nil
}

// Set encodes value as JSON and stores it under key for ttl.
func (store *Store) Set(context context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache_encode_failed: %s: %w", key, err)
	}
	return store.SetBytes(context, key, raw, ttl)
}

// GetBytes returns the raw value under key, or nil on a miss.
func (store *Store) GetBytes(context context.Context, key string) ([]byte, error) {
	raw, err := store.client.Get(context, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache_get_failed: %s: %w", key, err)
	}
	return raw, nil
}

// SetBytes stores raw bytes under key for ttl.
func (store *Store) SetBytes(context context.Context, key string, raw []byte, ttl time.Duration) error {
	if err := store.client.Set(context, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache_set_failed: %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys.
func (store *Store) Delete(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := store.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("cache_delete_failed: %w", err)
	}
	return nil
}

// DeletePattern removes every key matching a glob pattern (e.g. "news:*")
// and returns how many were removed.
func (store *Store) DeletePattern(context context.Context, pattern string) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)

	for {
		keys, next, err := store.client.Scan(context, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("cache_scan_failed: %s: %w", pattern, err)
		}

		if len(keys) > 0 {
			n, err := store.client.Unlink(context, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("cache_unlink_failed: %s: %w", pattern, err)
			}
			removed += n
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
