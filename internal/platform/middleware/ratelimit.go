// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/constants"
	"github.com/taibuivan/digitalhub/internal/platform/ctxutil"
	"github.com/taibuivan/digitalhub/internal/platform/ratelimit"
	"github.com/taibuivan/digitalhub/internal/platform/respond"
)

// # General Rate Limiting

type rateLimitClient struct {
	count   int
	resetAt time.Time
}

// IPRateLimiter allows limit requests per fixed window for each client IP.
// A client's window opens on its first request and its counter resets once
// the window has elapsed.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient

	limit  int
	window time.Duration
	now    func() time.Time
	done   chan struct{}
}

// NewIPRateLimiter creates the limiter and starts its cleanup goroutine,
// which stops when ctx is cancelled.
func NewIPRateLimiter(ctx context.Context, limit int, window time.Duration) *IPRateLimiter {
	limiter := &IPRateLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   limit,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go limiter.janitor(ctx, constants.RateLimitCleanupInterval)
	return limiter
}

// WithClock overrides the time source. Intended for tests.
func (limiter *IPRateLimiter) WithClock(now func() time.Time) *IPRateLimiter {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.now = now
	return limiter
}

// Done is closed once the cleanup goroutine has exited.
func (limiter *IPRateLimiter) Done() <-chan struct{} { return limiter.done }

func (limiter *IPRateLimiter) janitor(ctx context.Context, interval time.Duration) {
	defer close(limiter.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.sweep()
		case <-ctx.Done():
			return
		}
	}
}

// sweep removes clients whose window has closed.
func (limiter *IPRateLimiter) sweep() {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	for ip, client := range limiter.clients {
		if !now.Before(client.resetAt) {
			delete(limiter.clients, ip)
		}
	}
}

// allow counts one request for ip. It reports whether the request fits the
// current window, the requests left in it and the time until it resets.
func (limiter *IPRateLimiter) allow(ip string) (bool, int, time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	client, found := limiter.clients[ip]
	if !found || !now.Before(client.resetAt) {
		client = &rateLimitClient{resetAt: now.Add(limiter.window)}
		limiter.clients[ip] = client
	}

	resetIn := client.resetAt.Sub(now)
	if client.count >= limiter.limit {
		return false, 0, resetIn
	}
	client.count++
	return true, limiter.limit - client.count, resetIn
}

// Middleware enforces the limit and emits RateLimit-* headers.
func (limiter *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		allowed, remaining, resetIn := limiter.allow(ClientIP(request))

		header := writer.Header()
		header.Set(constants.HeaderRateLimit, strconv.Itoa(limiter.limit))
		header.Set(constants.HeaderRateRemaining, strconv.Itoa(remaining))
		header.Set(constants.HeaderRateLimitReset, strconv.Itoa(ceilSeconds(resetIn)))

		if !allowed {
			respond.Error(writer, request, apperr.RateLimited(ceilSeconds(resetIn)))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// # Authentication Rate Limiting

// AuthRateLimit guards credential endpoints with a window shared through
// Redis. Requests that finish with a status below 400 are refunded, so only
// failed attempts count. If Redis is unreachable the request is let through
// and the failure is logged.
func AuthRateLimit(window *ratelimit.Window) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)
			key := ClientIP(request)

			result, err := window.Hit(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "auth_rate_limit_unavailable", slog.Any("error", err))
				next.ServeHTTP(writer, request)
				return
			}

			header := writer.Header()
			header.Set(constants.HeaderRateLimit, strconv.Itoa(result.Limit))
			header.Set(constants.HeaderRateRemaining, strconv.Itoa(result.Remaining))
			header.Set(constants.HeaderRateLimitReset, strconv.Itoa(ceilSeconds(result.ResetIn)))

			if !result.Allowed {
				logger.WarnContext(ctx, "auth_rate_limit_exceeded", slog.String("ip", key))
				limited := apperr.RateLimited(ceilSeconds(result.ResetIn))
				limited.Message = "Too many authentication attempts, please try again later."
				respond.Error(writer, request, limited)
				return
			}

			recorder := newStatusRecorder(writer)
			next.ServeHTTP(recorder, request)

			if recorder.status < http.StatusBadRequest {
				if err := window.Refund(context.WithoutCancel(ctx), key); err != nil {
					logger.WarnContext(ctx, "auth_rate_limit_refund_failed", slog.Any("error", err))
				}
			}
		})
	}
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
