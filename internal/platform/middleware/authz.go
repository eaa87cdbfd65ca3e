// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/ctxutil"
	"github.com/taibuivan/digitalhub/internal/platform/respond"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
)

// Authenticator resolves an access token into the calling principal.
//
// Implementations verify the token and confirm the account still exists, so
// a deleted user's unexpired token stops working immediately.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*sec.Principal, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// Authentication is optional at this layer: a missing, malformed or rejected
// token lets the request continue as anonymous, so an expired access token
// never blocks public routes such as /auth/refresh. The rejection is kept in
// the context and reported by [RequireAuth] or [RequireRole].
//
// # Flow
//  1. No header: proceed as anonymous.
//  2. Malformed header or failed verification: record the failure, proceed as anonymous.
//  3. Valid token: inject [*sec.Principal] into the request context.
func Authenticate(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := request.Context()

			// ── 2. Format Validation ──────────────────────────────────────────
			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				ctx = ctxutil.WithAuthFailure(ctx, apperr.Unauthorized(msgNoToken))
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			principal, err := authenticator.Authenticate(ctx, token)
			if err != nil {
				if !apperr.IsAppError(err) {
					err = apperr.Unauthorized("Not authorized, token failed").Wrap(err)
				}
				ctxutil.GetLogger(ctx).DebugContext(ctx, "bearer_token_rejected", slog.Any("error", err))
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthFailure(ctx, err)))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx = ctxutil.WithPrincipal(ctx, principal)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", principal.UserID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// msgNoToken is reported when a protected route sees no usable bearer token.
const msgNoToken = "Not authorized, no token"

// unauthenticated builds the 401 for a request without a principal,
// preferring the recorded token rejection.
func unauthenticated(ctx context.Context) error {
	if failure := ctxutil.GetAuthFailure(ctx); failure != nil {
		return failure
	}
	return apperr.Unauthorized(msgNoToken)
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, unauthenticated(request.Context()))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.Principal] exists in context (implies AuthN).
//  2. Check the role meets or exceeds the target using [sec.UserRole.AtLeast].
//  3. If insufficient, abort with HTTP 403 Forbidden.
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if principal == nil {
				respond.Error(writer, request, unauthenticated(request.Context()))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !principal.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden(
					fmt.Sprintf("User role %s is not authorized to access this route", principal.Role)))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
