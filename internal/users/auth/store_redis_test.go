// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/digitalhub/internal/platform/constants"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisTokenBlacklist(t *testing.T) {
	server, client := newRedis(t)
	blacklist := NewTokenBlacklist(client)
	ctx := context.Background()

	key := constants.RedisPrefixBlacklist + "digest"
	assert.False(t, server.Exists(key))

	claimed, err := blacklist.Revoke(ctx, "digest", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = blacklist.Revoke(ctx, "digest", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim must lose")

	assert.True(t, server.Exists(key))
	assert.Equal(t, time.Hour, server.TTL(key))

	server.FastForward(time.Hour + time.Second)
	assert.False(t, server.Exists(key), "entry expires with the token")
}

func TestRedisTokenBlacklist_ClampsTTL(t *testing.T) {
	server, client := newRedis(t)
	blacklist := NewTokenBlacklist(client)

	_, err := blacklist.Revoke(context.Background(), "digest", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Second, server.TTL(constants.RedisPrefixBlacklist+"digest"))
}

func TestRedisTokenBlacklist_ConcurrentClaims(t *testing.T) {
	_, client := newRedis(t)
	blacklist := NewTokenBlacklist(client)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if claimed, err := blacklist.Revoke(context.Background(), "shared", time.Minute); err == nil && claimed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRedisResetTokenStore(t *testing.T) {
	server, client := newRedis(t)
	store := NewResetTokenStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "digest", "user-1", time.Hour))
	assert.Equal(t, time.Hour, server.TTL(constants.RedisPrefixResetToken+"digest"))

	userID, found, err := store.Consume(ctx, "digest")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user-1", userID)

	_, found, err = store.Consume(ctx, "digest")
	require.NoError(t, err)
	assert.False(t, found, "tokens are single use")
}

func TestRedisResetTokenStore_Expiry(t *testing.T) {
	server, client := newRedis(t)
	store := NewResetTokenStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "digest", "user-1", constants.ResetTokenTTL))
	server.FastForward(constants.ResetTokenTTL + time.Second)

	_, found, err := store.Consume(ctx, "digest")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStores_ReportConnectionErrors(t *testing.T) {
	server, client := newRedis(t)
	server.Close()
	ctx := context.Background()

	_, err := NewTokenBlacklist(client).Revoke(ctx, "digest", time.Minute)
	assert.Error(t, err)

	_, _, err = NewResetTokenStore(client).Consume(ctx, "digest")
	assert.Error(t, err)
}
