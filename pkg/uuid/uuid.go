// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the primary keys of users, articles and WebSocket
sessions.

Keys are UUIDv7, so they sort by creation time and keep the PostgreSQL
B-tree indexes append-only.
*/
package uuid

import "github.com/google/uuid"

// New returns a new UUIDv7 in its canonical string form.
//
// It panics only if the system entropy source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
