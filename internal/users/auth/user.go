// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/taibuivan/digitalhub/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account on the Digital Hub platform.
//
// # Security
//
// The PasswordHash field holds the bcrypt digest and is never serialised.
// Anything leaving the auth boundary goes through [User.Sanitize].
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Phone        string         `json:"phone,omitempty"`
	FullName     string         `json:"fullName"`
	Role         sec.UserRole   `json:"role"`
	Preferences  map[string]any `json:"preferences"`
	LastLogin    *time.Time     `json:"lastLogin,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// PublicUser is the client-facing projection of a [User].
type PublicUser struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone,omitempty"`
	FullName    string         `json:"fullName"`
	Role        sec.UserRole   `json:"role"`
	Preferences map[string]any `json:"preferences"`
	LastLogin   *time.Time     `json:"lastLogin,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Sanitize strips the credential material from the user.
func (user *User) Sanitize() *PublicUser {
	preferences := user.Preferences
	if preferences == nil {
		preferences = map[string]any{}
	}

	return &PublicUser{
		ID:          user.ID,
		Email:       user.Email,
		Phone:       user.Phone,
		FullName:    user.FullName,
		Role:        user.Role,
		Preferences: preferences,
		LastLogin:   user.LastLogin,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// Principal returns the identity attached to authenticated requests.
func (user *User) Principal() *sec.Principal {
	return &sec.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
}

// Session is returned by register and login.
type Session struct {
	User *PublicUser `json:"user"`
	*sec.TokenPair
}
