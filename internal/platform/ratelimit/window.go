// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit implements a fixed-window request counter shared through Redis.

Every API instance increments the same key, so the limit holds across a
horizontally scaled deployment. The window starts on the first hit and the key
expires with it.
*/
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript increments the counter, arms the expiry on the first hit, and
// returns {count, remaining ttl in ms}.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// refundScript decrements a live counter without ever going below zero.
var refundScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// Result describes the state of a window after a hit.
type Result struct {
	Allowed   bool
	Limit     int
	Count     int
	Remaining int
	ResetIn   time.Duration
}

// Window is a Redis-backed fixed-window limiter.
type Window struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
}

// NewWindow creates a limiter allowing limit hits per window for each key.
func NewWindow(client redis.Scripter, prefix string, limit int, window time.Duration) *Window {
	return &Window{client: client, prefix: prefix, limit: limit, window: window}
}

// Limit returns the configured number of hits per window.
func (w *Window) Limit() int { return w.limit }

// Hit records one request for key.
func (w *Window) Hit(ctx context.Context, key string) (Result, error) {
	values, err := hitScript.Run(ctx, w.client, []string{w.prefix + key}, w.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit_hit_failed: %w", err)
	}
	if len(values) != 2 {
		return Result{}, fmt.Errorf("ratelimit_hit_failed: unexpected reply %v", values)
	}

	count := int(values[0])
	remaining := w.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= w.limit,
		Limit:     w.limit,
		Count:     count,
		Remaining: remaining,
		ResetIn:   time.Duration(values[1]) * time.Millisecond,
	}, nil
}

// Refund gives back one hit, used when a request should not count against the window.
func (w *Window) Refund(ctx context.Context, key string) error {
	if err := refundScript.Run(ctx, w.client, []string{w.prefix + key}).Err(); err != nil {
		return fmt.Errorf("ratelimit_refund_failed: %w", err)
	}
	return nil
}
