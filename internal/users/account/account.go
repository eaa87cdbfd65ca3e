// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles user profile management and personal preferences.

It lets an authenticated user read their private profile, edit the mutable
contact fields, and merge settings into the open preferences document.

# Architecture

  - Domain: This package reuses the auth package's User entity.
  - Storage: Preferences live in a JSONB column and are merged server-side.
*/
package account

import (
	"context"

	"github.com/taibuivan/digitalhub/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for user profiles.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity (without password hash)
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update persists the mutable profile fields (phone, full name).

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		MergePreferences shallow-merges patch into the stored preferences.

		Keys present in patch replace stored keys; other stored keys survive.

		Parameters:
		  - context: context.Context
		  - id: string
		  - patch: map[string]any

		Returns:
		  - map[string]any: The merged document
		  - error: apperr.NotFound or storage failures
	*/
	MergePreferences(context context.Context, id string, patch map[string]any) (map[string]any, error)
}
