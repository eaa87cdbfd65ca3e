// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account session lifecycle of the Digital Hub API.

It covers registration, login, refresh-token rotation, logout, password change
and the password reset flow, plus resolution of access tokens into request
principals.

Architecture:

  - Service: Orchestrates the use cases against narrow collaborator interfaces.
  - Repository: Postgres for accounts, Redis for the blacklist and reset tokens.
  - Security: bcrypt through a bounded [sec.PasswordHasher] and HS256 tokens.

No session state lives in process memory. Single-use guarantees (one rotation
per refresh token, one redemption per reset token) are enforced by atomic
Redis commands.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/constants"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/internal/platform/validate"
	"github.com/taibuivan/digitalhub/pkg/uuid"
)

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// rotation, or the reset flow must be reviewed by the security team.
type Service struct {
	userRepository  UserRepository
	blacklist       TokenBlacklist
	resetTokenStore ResetTokenStore
	notifier        ResetNotifier
	tokens          *sec.TokenService
	hasher          *sec.PasswordHasher
	events          EventRecorder
	logger          *slog.Logger
}

// NewService constructs a new [Service] with its collaborators.
//
// A nil events recorder disables auth metrics; a nil logger falls back to
// [slog.Default].
func NewService(
	userRepo UserRepository,
	blacklist TokenBlacklist,
	resetStore ResetTokenStore,
	notifier ResetNotifier,
	tokens *sec.TokenService,
	hasher *sec.PasswordHasher,
	events EventRecorder,
	logger *slog.Logger,
) *Service {
	if events == nil {
		events = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		userRepository:  userRepo,
		blacklist:       blacklist,
		resetTokenStore: resetStore,
		notifier:        notifier,
		tokens:          tokens,
		hasher:          hasher,
		events:          events,
		logger:          logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Password string
	Phone    string
	FullName string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: The email is normalised to lower case. A pre-check rejects known
emails early; a concurrent duplicate that slips past it is rejected by the
unique index and reported the same way.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: Sanitised user and a fresh token pair
  - err: Validation, Conflict, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	email := normaliseEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)

	// ── 1. Validation ─────────────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password).
		Phone(FieldPhone, input.Phone).
		MaxLen(FieldFullName, fullName, maxFullNameLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness ─────────────────────────────────────────────────────
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		service.events.RecordAuthEvent(EventRegister, OutcomeFailure)
		return nil, apperr.Conflict(msgEmailRegistered)
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	// ── 3. Persistence ────────────────────────────────────────────────────
	passwordHash, err := service.hasher.Hash(context, input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        input.Phone,
		FullName:     fullName,
		Role:         sec.RoleUser,
		Preferences:  map[string]any{},
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if apperr.IsCode(err, apperr.CodeConflict) {
			service.events.RecordAuthEvent(EventRegister, OutcomeFailure)
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// ── 4. Session ────────────────────────────────────────────────────────
	pair, err := service.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_tokens_failed: %w", err)
	}

	service.events.RecordAuthEvent(EventRegister, OutcomeSuccess)
	service.logger.InfoContext(context, "user_registered", slog.String("user_id", user.ID), slog.String("email", user.Email))

	return &Session{User: user.Sanitize(), TokenPair: pair}, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues security tokens.

Description: Unknown emails and wrong passwords produce the same error, and
both paths pay for exactly one bcrypt comparison.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Sanitised user and a fresh token pair
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	email := normaliseEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
		}
		if err := service.hasher.CompareDummy(context, input.Password); err != nil {
			return nil, fmt.Errorf("auth_service_compare_failed: %w", err)
		}
		service.events.RecordAuthEvent(EventLogin, OutcomeFailure)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	ok, err := service.hasher.Compare(context, input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("auth_service_compare_failed: %w", err)
	}
	if !ok {
		service.events.RecordAuthEvent(EventLogin, OutcomeFailure)
		service.logger.WarnContext(context, "login_rejected", slog.String("user_id", user.ID))
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	// A failed last-login stamp does not fail the login.
	now := service.tokens.Now().UTC()
	if err := service.userRepository.UpdateLastLogin(context, user.ID, now); err != nil {
		service.logger.WarnContext(context, "last_login_update_failed",
			slog.String("user_id", user.ID), slog.Any("error", err))
	} else {
		user.LastLogin = &now
	}

	pair, err := service.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_tokens_failed: %w", err)
	}

	service.events.RecordAuthEvent(EventLogin, OutcomeSuccess)
	service.logger.InfoContext(context, "user_logged_in", slog.String("user_id", user.ID), slog.String("email", user.Email))

	return &Session{User: user.Sanitize(), TokenPair: pair}, nil
}

// # Session Lifecycle

/*
Refresh exchanges a valid refresh token for a new pair and retires the old one.

Description: The presented token is claimed on the blacklist with SET NX
before anything is issued. Of several concurrent callers presenting the same
token, only the one that wins the claim receives a pair.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *sec.TokenPair: Rotated credentials
  - err: Unauthorized or storage errors
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*sec.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, validate.RequiredError(FieldRefreshToken, "Refresh token is required")
	}

	claims, err := service.tokens.Verify(refreshToken, sec.KindRefresh)
	if err != nil {
		service.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
		return nil, apperr.Unauthorized(msgInvalidRefresh).Wrap(err)
	}

	// The claim must land even if the client goes away mid-request.
	claimed, err := service.blacklist.Revoke(
		withoutCancel(context), sec.HashToken(refreshToken), claims.Remaining(service.tokens.Now()))
	if err != nil {
		return nil, fmt.Errorf("auth_service_revoke_failed: %w", err)
	}
	if !claimed {
		service.events.RecordAuthEvent(EventRefresh, OutcomeFailure)
		service.logger.WarnContext(context, "refresh_token_reused", slog.String("user_id", claims.UserID))
		return nil, apperr.Unauthorized(msgRevokedRefresh)
	}

	pair, err := service.tokens.IssuePair(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_tokens_failed: %w", err)
	}

	service.events.RecordAuthEvent(EventRefresh, OutcomeSuccess)
	service.logger.InfoContext(context, "refresh_token_rotated", slog.String("user_id", claims.UserID))

	return pair, nil
}

/*
Logout retires the caller's refresh token.

Description: Idempotent. A missing token is a no-op; a token that no longer
parses is still blacklisted for the full refresh lifetime.

Parameters:
  - context: context.Context
  - userID: string
  - refreshToken: string (optional)

Returns:
  - err: Storage errors only
*/
func (service *Service) Logout(context context.Context, userID, refreshToken string) error {
	if refreshToken != "" {
		ttl := sec.RefreshTokenTTL
		if claims, err := service.tokens.Verify(refreshToken, sec.KindRefresh); err == nil {
			ttl = claims.Remaining(service.tokens.Now())
		}

		if _, err := service.blacklist.Revoke(withoutCancel(context), sec.HashToken(refreshToken), ttl); err != nil {
			return fmt.Errorf("auth_service_revoke_failed: %w", err)
		}
	}

	service.events.RecordAuthEvent(EventLogout, OutcomeSuccess)
	service.logger.InfoContext(context, "user_logged_out", slog.String("user_id", userID))

	return nil
}

// # Password Management

// ChangePasswordInput carries the credentials for an authenticated password change.
type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

/*
ChangePassword verifies the current password and stores a new hash.

Parameters:
  - context: context.Context
  - input: ChangePasswordInput

Returns:
  - err: Validation, Unauthorized, or storage errors
*/
func (service *Service) ChangePassword(context context.Context, input ChangePasswordInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Password(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(context, input.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Unauthorized("User not found")
		}
		return fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	ok, err := service.hasher.Compare(context, input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("auth_service_compare_failed: %w", err)
	}
	if !ok {
		service.events.RecordAuthEvent(EventChangePass, OutcomeFailure)
		return apperr.Unauthorized(msgWrongPassword)
	}

	passwordHash, err := service.hasher.Hash(context, input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, passwordHash); err != nil {
		return fmt.Errorf("auth_service_update_password_failed: %w", err)
	}

	service.events.RecordAuthEvent(EventChangePass, OutcomeSuccess)
	service.logger.InfoContext(context, "password_changed", slog.String("user_id", user.ID))

	return nil
}

/*
RequestPasswordReset issues a single-use reset token for the given email.

Description: The outcome is success-shaped whether or not the email exists.
Only the token digest is stored; the raw token goes to the notifier.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Storage or delivery failures (never for an unknown email)
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	email = normaliseEmail(email)
	if err := (&validate.Validator{}).Required(FieldEmail, email).Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			service.events.RecordAuthEvent(EventResetRequest, OutcomeFailure)
			return nil
		}
		return fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	token, err := sec.GenerateSecureToken(sec.ResetTokenBytes)
	if err != nil {
		return fmt.Errorf("auth_service_token_failed: %w", err)
	}

	if err := service.resetTokenStore.Save(
		withoutCancel(context), sec.HashToken(token), user.ID, constants.ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_reset_store_failed: %w", err)
	}

	if err := service.notifier.SendResetEmail(context, user.Email, token); err != nil {
		return fmt.Errorf("auth_service_reset_notify_failed: %w", err)
	}

	service.events.RecordAuthEvent(EventResetRequest, OutcomeSuccess)
	service.logger.InfoContext(context, "password_reset_requested", slog.String("user_id", user.ID), slog.String("email", user.Email))

	return nil
}

// ResetPasswordInput carries a reset token and its replacement password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

/*
ResetPassword redeems a reset token and stores the new password hash.

Description: The password is validated before the token is consumed, so a
weak password does not burn the token.

Parameters:
  - context: context.Context
  - input: ResetPasswordInput

Returns:
  - err: Validation, Unauthorized, or storage errors
*/
func (service *Service) ResetPassword(context context.Context, input ResetPasswordInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldToken, input.Token).
		Password(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		return err
	}

	userID, found, err := service.resetTokenStore.Consume(withoutCancel(context), sec.HashToken(input.Token))
	if err != nil {
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}
	if !found {
		service.events.RecordAuthEvent(EventResetPassword, OutcomeFailure)
		return apperr.Unauthorized(msgInvalidReset)
	}

	passwordHash, err := service.hasher.Hash(context, input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, passwordHash); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Unauthorized(msgInvalidReset)
		}
		return fmt.Errorf("auth_service_update_password_failed: %w", err)
	}

	service.events.RecordAuthEvent(EventResetPassword, OutcomeSuccess)
	service.logger.InfoContext(context, "password_reset_completed", slog.String("user_id", userID))

	return nil
}

// # Identity Resolution

// Profile returns the sanitised account of userID.
func (service *Service) Profile(context context.Context, userID string) (*PublicUser, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

/*
Authenticate resolves an access token into the calling principal.

Description: Satisfies [middleware.Authenticator]. The account is re-read on
every call so tokens of deleted users stop working before they expire.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - *sec.Principal: The caller
  - err: Unauthorized or storage errors
*/
func (service *Service) Authenticate(context context.Context, accessToken string) (*sec.Principal, error) {
	claims, err := service.tokens.Verify(accessToken, sec.KindAccess)
	if err != nil {
		return nil, apperr.Unauthorized("Not authorized, token failed").Wrap(err)
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized(msgUserGone)
		}
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	return user.Principal(), nil
}

// # Helpers

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// withoutCancel detaches state-changing Redis writes from client aborts.
func withoutCancel(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
