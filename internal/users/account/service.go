// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/validate"
	"github.com/taibuivan/digitalhub/internal/users/auth"
)

// # Limits

const (
	maxFullNameLen       = 120
	maxPreferenceEntries = 50
	maxPreferenceKeyLen  = 64
)

// # Service Layer

// Service orchestrates business logic for user profiles and preferences.
type Service struct {
	accountRepository AccountRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(accountRepo AccountRepository, logger *slog.Logger) *Service {
	return &Service{accountRepository: accountRepo, logger: logger}
}

// # Profile Management

/*
GetProfile retrieves the private profile of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.PublicUser: The sanitised user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.PublicUser, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user.Sanitize(), nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
// A nil field is left untouched.
type UpdateProfileInput struct {
	Phone    *string
	FullName *string
}

/*
UpdateProfile applies a partial set of changes to a user's contact data.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage. An empty patch returns the
current profile unchanged.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.PublicUser: The updated user profile
  - error: Validation, NotFound, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.PublicUser, error) {
	validator := &validate.Validator{}
	if input.Phone != nil {
		validator.Phone("phone", *input.Phone)
	}
	if input.FullName != nil {
		trimmed := strings.TrimSpace(*input.FullName)
		input.FullName = &trimmed
		validator.Required("fullName", trimmed).MaxLen("fullName", trimmed, maxFullNameLen)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	if input.Phone == nil && input.FullName == nil {
		return user.Sanitize(), nil
	}

	// Apply delta updates
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_profile_updated", slog.String("user_id", userID))

	return user.Sanitize(), nil
}

/*
UpdatePreferences merges a partial settings document into the stored one.

Parameters:
  - context: context.Context
  - userID: string
  - patch: map[string]any (top-level keys replace stored keys)

Returns:
  - map[string]any: The merged preferences
  - error: Validation, NotFound, or storage failures
*/
func (service *Service) UpdatePreferences(context context.Context, userID string, patch map[string]any) (map[string]any, error) {
	if len(patch) == 0 {
		return nil, apperr.ValidationError("Preferences must be a non-empty object")
	}
	if len(patch) > maxPreferenceEntries {
		return nil, apperr.ValidationError(fmt.Sprintf("At most %d preferences can be set at once", maxPreferenceEntries))
	}

	validator := &validate.Validator{}
	for key := range patch {
		validator.Custom("preferences", strings.TrimSpace(key) == "" || len(key) > maxPreferenceKeyLen,
			fmt.Sprintf("Preference keys must be 1-%d characters", maxPreferenceKeyLen))
		if validator.HasErrors() {
			break
		}
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	merged, err := service.accountRepository.MergePreferences(context, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("account_service_preferences_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_preferences_updated",
		slog.String("user_id", userID), slog.Int("keys", len(patch)))

	return merged, nil
}
