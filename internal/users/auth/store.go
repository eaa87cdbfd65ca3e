// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Absent rows surface as NOT_FOUND [apperr.AppError] values; a duplicate email
// on Create surfaces as CONFLICT.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email, compared case-insensitively.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User (timestamps are filled in by the store)

		Returns:
		  - error: Conflict when the email is taken, or persistence failures
	*/
	Create(context context.Context, user *User) error

	// UpdateLastLogin records a successful login.
	UpdateLastLogin(context context.Context, id string, at time.Time) error

	// UpdatePassword replaces only the user's password hash.
	UpdatePassword(context context.Context, id, passwordHash string) error
}

// # Volatile Token State

// TokenBlacklist records refresh tokens that may no longer be exchanged.
//
// Keys are token digests, never raw tokens.
type TokenBlacklist interface {

	/*
		Revoke blacklists a token digest for ttl.

		It is a conditional write: only the first caller for a given digest
		claims it. Refresh rotation relies on this to hand out at most one new
		pair per refresh token.

		Returns:
		  - bool: true if this call claimed the digest
		  - error: Storage failures
	*/
	Revoke(context context.Context, digest string, ttl time.Duration) (bool, error)
}

// ResetTokenStore manages single-use password reset tokens.
type ResetTokenStore interface {

	// Save maps a token digest to the owning user for ttl.
	Save(context context.Context, digest, userID string, ttl time.Duration) error

	/*
		Consume atomically reads and deletes the digest.

		Returns:
		  - string: The owning user ID
		  - bool: false if the digest is unknown or expired
		  - error: Storage failures
	*/
	Consume(context context.Context, digest string) (string, bool, error)
}

// # Outbound Collaborators

// ResetNotifier delivers password reset tokens to their owners.
type ResetNotifier interface {
	SendResetEmail(context context.Context, email, token string) error
}

// EventRecorder counts auth outcomes. [metrics.Metrics] satisfies it.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthEvent(string, string) {}
