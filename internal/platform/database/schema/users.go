// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds table and column descriptors shared by the SQL repositories.
package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Email        string
	PasswordHash string
	Phone        string
	FullName     string
	Role         string
	Preferences  string
	LastLogin    string
	CreatedAt    string
	UpdatedAt    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Email:        "email",
	PasswordHash: "password_hash",
	Phone:        "phone",
	FullName:     "full_name",
	Role:         "role",
	Preferences:  "preferences",
	LastLogin:    "last_login",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// PublicColumns returns every column except the password hash.
func (t UsersTable) PublicColumns() []string {
	return []string{
		t.ID, t.Email, t.Phone, t.FullName, t.Role, t.Preferences,
		t.LastLogin, t.CreatedAt, t.UpdatedAt,
	}
}
