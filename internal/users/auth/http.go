// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/digitalhub/internal/platform/middleware"
	requestutil "github.com/taibuivan/digitalhub/internal/platform/request"
	"github.com/taibuivan/digitalhub/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler is a thin transport layer. Input rules live in [Service] so
// every entry point enforces the same policy.
type Handler struct {
	authService *Service
	authLimiter func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler].
//
// authLimiter guards the credential-accepting endpoints (register, login).
// A nil limiter leaves them unthrottled.
func NewHandler(service *Service, authLimiter func(http.Handler) http.Handler) *Handler {
	if authLimiter == nil {
		authLimiter = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{authService: service, authLimiter: authLimiter}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register               : Creates a new account (throttled).
//   - POST /login                  : Authenticates and returns a token pair (throttled).
//   - POST /refresh                : Rotates a refresh token.
//   - POST /request-password-reset : Emails a reset token.
//   - POST /reset-password         : Redeems a reset token.
//   - POST /logout                 : Retires a refresh token (bearer).
//   - POST /change-password        : Replaces the password (bearer).
//   - GET  /profile                : Returns the caller (bearer).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Credential endpoints
	router.With(handler.authLimiter).Post("/register", handler.register)
	router.With(handler.authLimiter).Post("/login", handler.login)

	// Public endpoints
	router.Post("/refresh", handler.refresh)
	router.Post("/request-password-reset", handler.requestPasswordReset)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
		r.Get("/profile", handler.profile)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (email, password, phone, fullName)

Response:
  - 201: Session: Sanitised user plus token pair
  - 400: VALIDATION_ERROR: Bad input or weak password
  - 409: CONFLICT: Email already registered
  - 429: RATE_LIMITED: Too many attempts from this IP
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
		FullName: input.FullName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "User registered successfully", session)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (email, password)

Response:
  - 200: Session: Sanitised user plus token pair
  - 401: AUTHENTICATION_ERROR: Invalid credentials
  - 429: RATE_LIMITED: Too many attempts from this IP
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Login successful", session)
}

/*
Refresh issues a new token pair using a valid refresh token.

POST /api/v1/auth/refresh

Response:
  - 200: TokenPair: Rotated credentials
  - 401: AUTHENTICATION_ERROR: Invalid, expired or already used token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Token refreshed successfully", pair)
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: The body is optional. When it carries a refresh token, that
token is blacklisted.

Response:
  - 200: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input refreshRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID, input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Logged out successfully", nil)
}

// changePassword handles POST /api/v1/auth/change-password.
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: input.CurrentPassword,
		NewPassword:     input.NewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password changed successfully", nil)
}

/*
RequestPasswordReset initiates the password recovery flow.

POST /api/v1/auth/request-password-reset

Description: Always answers with the same message, whether or not the email
belongs to an account.

Response:
  - 200: Generic confirmation
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input requestResetRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "If the email exists, a password reset link has been sent", nil)
}

// resetPassword handles POST /api/v1/auth/reset-password.
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(), ResetPasswordInput{
		Token:       input.Token,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password reset successfully", nil)
}

// profile handles GET /api/v1/auth/profile.
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Profile retrieved successfully", user)
}
