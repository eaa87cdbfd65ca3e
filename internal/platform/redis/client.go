// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the API to the Redis instance that holds its volatile
state.

Keys written through this client:

  - auth:blacklist:<sha256>   retired refresh tokens
  - auth:reset_token:<sha256> pending password resets
  - ratelimit:auth:<ip>       credential endpoint windows
  - cache:<path>, news:*      response and feed caches

The same client also carries the notify:events pub/sub channel that fans
notifications out across API instances.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/digitalhub/internal/platform/constants"
)

const (
	poolSize     = 20
	minIdleConns = 2
	maxRetries   = 2

	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

// NewClient parses a redis:// or rediss:// URL, applies the API's pool
// settings and pings the server before returning.
//
// Settings already present in the URL query (pool_size, dial_timeout, ...)
// win over the defaults.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_parse_url_failed: %w", err)
	}
	applyDefaults(options)

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)
	return client, nil
}

func applyDefaults(options *redis.Options) {
	options.ClientName = constants.AppName
	if options.PoolSize == 0 {
		options.PoolSize = poolSize
	}
	if options.MinIdleConns == 0 {
		options.MinIdleConns = minIdleConns
	}
	if options.MaxRetries == 0 {
		options.MaxRetries = maxRetries
	}
	if options.DialTimeout == 0 {
		options.DialTimeout = dialTimeout
	}
	if options.ReadTimeout == 0 {
		options.ReadTimeout = ioTimeout
	}
	if options.WriteTimeout == 0 {
		options.WriteTimeout = ioTimeout
	}
}

// Ping reports whether Redis answers within two seconds. It backs the
// readiness probe.
func Ping(context stdctx.Context, client redis.UniversalClient) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}
