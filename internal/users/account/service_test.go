// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/ctxutil"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/internal/users/auth"
	"github.com/taibuivan/digitalhub/pkg/pointer"
)

type memoryAccounts struct {
	users   map[string]*auth.User
	updates int
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{users: map[string]*auth.User{
		"user-1": {
			ID:          "user-1",
			Email:       "alice@example.com",
			FullName:    "Alice",
			Role:        sec.RoleUser,
			Preferences: map[string]any{"theme": "dark"},
		},
	}}
}

func (store *memoryAccounts) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := store.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (store *memoryAccounts) Update(_ context.Context, user *auth.User) error {
	if _, ok := store.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	store.updates++
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (store *memoryAccounts) MergePreferences(_ context.Context, id string, patch map[string]any) (map[string]any, error) {
	user, ok := store.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	merged := maps.Clone(user.Preferences)
	maps.Copy(merged, patch)
	user.Preferences = merged
	return merged, nil
}

func newTestService() (*Service, *memoryAccounts) {
	store := newMemoryAccounts()
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

// # Service

func TestUpdateProfile(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	user, err := service.UpdateProfile(ctx, "user-1", UpdateProfileInput{
		Phone:    pointer.To("+25712345678"),
		FullName: pointer.To("  Alice Ndayishimiye "),
	})
	require.NoError(t, err)
	assert.Equal(t, "+25712345678", user.Phone)
	assert.Equal(t, "Alice Ndayishimiye", user.FullName)
	assert.Equal(t, 1, store.updates)

	// An empty patch is a read.
	_, err = service.UpdateProfile(ctx, "user-1", UpdateProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)
}

func TestUpdateProfile_Validation(t *testing.T) {
	service, _ := newTestService()

	tests := []struct {
		name  string
		input UpdateProfileInput
	}{
		{"bad phone", UpdateProfileInput{Phone: pointer.To("0712")}},
		{"blank name", UpdateProfileInput{FullName: pointer.To("   ")}},
		{"long name", UpdateProfileInput{FullName: pointer.To(strings.Repeat("x", maxFullNameLen+1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.UpdateProfile(context.Background(), "user-1", tt.input)
			assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
		})
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	service, _ := newTestService()

	_, err := service.UpdateProfile(context.Background(), "missing", UpdateProfileInput{Phone: pointer.To("")})
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdatePreferences_Merges(t *testing.T) {
	service, _ := newTestService()

	merged, err := service.UpdatePreferences(context.Background(), "user-1", map[string]any{"language": "fr"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"theme": "dark", "language": "fr"}, merged)
}

func TestUpdatePreferences_Validation(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.UpdatePreferences(ctx, "user-1", map[string]any{})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	_, err = service.UpdatePreferences(ctx, "user-1", map[string]any{strings.Repeat("k", maxPreferenceKeyLen+1): true})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	tooMany := map[string]any{}
	for i := 0; i <= maxPreferenceEntries; i++ {
		tooMany[strings.Repeat("k", i+1)] = i
	}
	_, err = service.UpdatePreferences(ctx, "user-1", tooMany)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

// # HTTP

func authenticatedAs(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{UserID: userID, Role: sec.RoleUser})
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func TestHandler(t *testing.T) {
	service, _ := newTestService()

	router := chi.NewRouter()
	router.With(authenticatedAs("user-1")).Mount("/users", NewHandler(service).Routes())
	router.Mount("/anonymous", NewHandler(service).Routes())

	send := func(method, path, body string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	recorder := send(http.MethodGet, "/users/me", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"email":"alice@example.com"`)
	assert.NotContains(t, recorder.Body.String(), "password")

	recorder = send(http.MethodPatch, "/users/me", `{"fullName":"Alice B","role":"admin"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"fullName":"Alice B"`)
	assert.Contains(t, recorder.Body.String(), `"role":"user"`)

	recorder = send(http.MethodPatch, "/users/me/preferences", `{"language":"en"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Data struct {
			Preferences map[string]any `json:"preferences"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "en", body.Data.Preferences["language"])
	assert.Equal(t, "dark", body.Data.Preferences["theme"])

	recorder = send(http.MethodPatch, "/users/me/preferences", `["not","an","object"]`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = send(http.MethodGet, "/anonymous/me", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
