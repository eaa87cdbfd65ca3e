// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/digitalhub/internal/platform/metrics"
)

func TestMetrics_AuthEvents(t *testing.T) {
	m := metrics.New()

	m.RecordAuthEvent("login", "success")
	m.RecordAuthEvent("login", "success")
	m.RecordAuthEvent("login", "failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "failure")))
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, recorder.Body.String(), "go_goroutines")
}
