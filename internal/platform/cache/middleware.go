// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/digitalhub/internal/platform/constants"
	"github.com/taibuivan/digitalhub/internal/platform/ctxutil"
)

// RouteKey is the cache key for a request's path and query string.
func RouteKey(request *http.Request) string {
	return constants.RedisPrefixRoute + request.URL.RequestURI()
}

// ResponseCache serves repeated GET requests from Redis.
type ResponseCache struct {
	store *Store
}

// NewResponseCache creates a ResponseCache over store.
func NewResponseCache(store *Store) *ResponseCache {
	return &ResponseCache{store: store}
}

// Middleware caches successful (2xx) GET responses for ttl.
//
// # Behaviour
//
//   - Non-GET requests pass through untouched.
//   - A hit replays the stored body with X-Cache: HIT.
//   - A miss runs the handler behind a capturing writer; the body is stored
//     only when the handler finished with a 2xx status.
//   - Redis failures degrade to an uncached pass-through and are logged.
func (cache *ResponseCache) Middleware(ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Method != http.MethodGet {
				next.ServeHTTP(writer, request)
				return
			}

			context := request.Context()
			logger := ctxutil.GetLogger(context)
			key := RouteKey(request)

			cached, err := cache.store.GetBytes(context, key)
			if err != nil {
				logger.WarnContext(context, "response_cache_read_failed", slog.String("key", key), slog.Any("error", err))
			}
			if cached != nil {
				writer.Header().Set("Content-Type", "application/json; charset=utf-8")
				writer.Header().Set(constants.HeaderCache, "HIT")
				writer.WriteHeader(http.StatusOK)
				_, _ = writer.Write(cached)
				return
			}

			capture := &capturingWriter{ResponseWriter: writer, status: http.StatusOK}
			writer.Header().Set(constants.HeaderCache, "MISS")
			next.ServeHTTP(capture, request)

			if capture.status < 200 || capture.status >= 300 || capture.body.Len() == 0 {
				return
			}

			if err := cache.store.SetBytes(context, key, capture.body.Bytes(), ttl); err != nil {
				logger.WarnContext(context, "response_cache_write_failed", slog.String("key", key), slog.Any("error", err))
			}
		})
	}
}

// capturingWriter tees the response body while forwarding it to the client.
type capturingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (writer *capturingWriter) WriteHeader(code int) {
	if writer.wroteHeader {
		return
	}
	writer.status = code
	writer.wroteHeader = true
	writer.ResponseWriter.WriteHeader(code)
}

func (writer *capturingWriter) Write(b []byte) (int, error) {
	if !writer.wroteHeader {
		writer.WriteHeader(http.StatusOK)
	}
	writer.body.Write(b)
	return writer.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (writer *capturingWriter) Unwrap() http.ResponseWriter {
	return writer.ResponseWriter
}
