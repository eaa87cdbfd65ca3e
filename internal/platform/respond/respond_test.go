// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/ctxutil"
	"github.com/taibuivan/digitalhub/internal/platform/respond"
	"github.com/taibuivan/digitalhub/pkg/pagination"
)

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()
	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

/*
TestOK_Envelope verifies the success envelope shape.
*/
func TestOK_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, "Login successful", map[string]string{"id": "u1"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success":true,"message":"Login successful","data":{"id":"u1"}}`, recorder.Body.String())
}

func TestPaginated_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, []string{"a"}, pagination.NewMeta(pagination.Params{Page: 1, Limit: 20}, 1))

	assert.JSONEq(t,
		`{"success":true,"data":["a"],"meta":{"page":1,"limit":20,"total":1,"pages":1}}`,
		recorder.Body.String())
}

/*
TestError_StatusFollowsKind verifies each AppError kind sets its HTTP status.
*/
func TestError_StatusFollowsKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.ValidationError("Validation failed", apperr.FieldError{Field: "email", Message: "bad"}), http.StatusBadRequest},
		{"authentication", apperr.Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{"authorization", apperr.Forbidden("User role user is not authorized"), http.StatusForbidden},
		{"not_found", apperr.NotFound("User"), http.StatusNotFound},
		{"conflict", apperr.Conflict("Email already registered"), http.StatusConflict},
		{"unclassified", errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, recorder.Code)
			envelope := decodeError(t, recorder)
			assert.False(t, envelope.Success)
			assert.NotEmpty(t, envelope.Error.Message)
		})
	}
}

/*
TestError_HidesInternalsWithoutDiagnostics verifies causes never leak in production mode.
*/
func TestError_HidesInternalsWithoutDiagnostics(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))

	envelope := decodeError(t, recorder)
	assert.Equal(t, "An unexpected error occurred", envelope.Error.Message)
	assert.Empty(t, envelope.Error.Stack)
	assert.Empty(t, envelope.Error.Cause)
	assert.NotContains(t, recorder.Body.String(), "hunter2")
}

/*
TestError_DiagnosticsExposeStack verifies stack and cause are included in development.
*/
func TestError_DiagnosticsExposeStack(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithDiagnostics(request.Context(), true))

	recorder := httptest.NewRecorder()
	respond.Error(recorder, request, apperr.Internal(errors.New("connection refused")))

	envelope := decodeError(t, recorder)
	assert.NotEmpty(t, envelope.Error.Stack)
	assert.Equal(t, "connection refused", envelope.Error.Cause)
}

func TestError_RetryAfterHeader(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Error(recorder, httptest.NewRequest(http.MethodPost, "/", nil), apperr.RateLimited(120))

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "120", recorder.Header().Get("Retry-After"))
}
