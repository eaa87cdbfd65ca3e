// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: IP tracking TTLs and window keys.
  - Caching: Redis key prefixes and default lifetimes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "digitalhub-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute
)

// # Routing

const (
	// APIBasePath prefixes every versioned endpoint.
	APIBasePath = "/api/v1"
)

// # JSON Field Identifiers

const (
	FieldSuccess = "success"
	FieldMessage = "message"
	FieldData    = "data"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # HTTP Headers

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderCache          = "X-Cache"
	HeaderRetryAfter     = "Retry-After"
	HeaderRateLimit      = "RateLimit-Limit"
	HeaderRateRemaining  = "RateLimit-Remaining"
	HeaderRateLimitReset = "RateLimit-Reset"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixBlacklist  = "auth:blacklist:"
	RedisPrefixResetToken = "auth:reset_token:"
	RedisPrefixAuthLimit  = "ratelimit:auth:"
	RedisPrefixRoute      = "cache:"
	RedisPrefixNews       = "news:"
	RedisChannelNotify    = "notify:events"
)

// # Lifetimes

const (
	// ResetTokenTTL is how long a password-reset token can be redeemed.
	ResetTokenTTL = time.Hour
)

// # Notification Channels

const (
	ChannelNews          = "news"
	ChannelTrafficPrefix = "traffic:"
)
