// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/digitalhub/internal/platform/constants"
)

// # Token Blacklist

// RedisTokenBlacklist implements [TokenBlacklist] using Redis keys with expiry.
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

// NewTokenBlacklist creates a new Redis-backed [TokenBlacklist].
func NewTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

/*
Revoke blacklists a digest with SET NX so that concurrent callers race on one key.

Parameters:
  - context: context.Context
  - digest: string (sha256 hex of the raw token)
  - ttl: time.Duration (non-positive values are clamped to one second)

Returns:
  - bool: true if this call created the entry
  - error: Execution errors
*/
func (repository *RedisTokenBlacklist) Revoke(context context.Context, digest string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}

	claimed, err := repository.client.SetNX(context, constants.RedisPrefixBlacklist+digest, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_blacklist_revoke_failed: %w", err)
	}

	return claimed, nil
}

// # Reset Token Store

// RedisResetTokenStore implements [ResetTokenStore] using Redis.
type RedisResetTokenStore struct {
	client redis.UniversalClient
}

// NewResetTokenStore creates a new Redis-backed [ResetTokenStore].
func NewResetTokenStore(client redis.UniversalClient) *RedisResetTokenStore {
	return &RedisResetTokenStore{client: client}
}

/*
Save stores a reset token digest with its associated userID and TTL.

Parameters:
  - context: context.Context
  - digest: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisResetTokenStore) Save(context context.Context, digest, userID string, ttl time.Duration) error {
	if err := repository.client.Set(context, constants.RedisPrefixResetToken+digest, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_set_failed: %w", err)
	}
	return nil
}

/*
Consume redeems a reset token with GETDEL, so a token can be used only once
even when two requests present it at the same time.

Parameters:
  - context: context.Context
  - digest: string

Returns:
  - string: Owning UserID
  - bool: false when the token is unknown or expired
  - error: Connectivity errors
*/
func (repository *RedisResetTokenStore) Consume(context context.Context, digest string) (string, bool, error) {
	userID, err := repository.client.GetDel(context, constants.RedisPrefixResetToken+digest).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis_reset_token_consume_failed: %w", err)
	}
	return userID, true, nil
}
