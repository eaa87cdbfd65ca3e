// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultHashCost is the bcrypt work factor for stored passwords.
const DefaultHashCost = 12

// PasswordHasher hashes and compares passwords with bcrypt.
//
// # Concurrency
//
// Bcrypt at cost 12 is CPU-bound for hundreds of milliseconds. A weighted
// semaphore caps the number of concurrent computations, and waiting callers
// give up as soon as their context is cancelled.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordHasher creates a hasher. workers <= 0 means GOMAXPROCS.
func NewPasswordHasher(cost int, workers int) *PasswordHasher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(workers)),
	}
}

// Hash derives the bcrypt hash of a plain-text password.
func (hasher *PasswordHasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := hasher.acquire(ctx); err != nil {
		return "", err
	}
	defer hasher.slots.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether plain matches the stored hash. A mismatch is not an error.
func (hasher *PasswordHasher) Compare(ctx context.Context, plain, hash string) (bool, error) {
	if err := hasher.acquire(ctx); err != nil {
		return false, err
	}
	defer hasher.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("sec: failed to compare password: %w", err)
	}
}

// CompareDummy burns one comparison against a fixed hash. Login calls it when
// the account does not exist so both failure paths take the same time.
func (hasher *PasswordHasher) CompareDummy(ctx context.Context, plain string) error {
	hasher.dummyOnce.Do(func() {
		hasher.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), hasher.cost)
	})

	if err := hasher.acquire(ctx); err != nil {
		return err
	}
	defer hasher.slots.Release(1)

	_ = bcrypt.CompareHashAndPassword(hasher.dummyHash, []byte(plain))
	return nil
}

func (hasher *PasswordHasher) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sec: hash slot: %w", err)
	}
	if err := hasher.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("sec: hash slot: %w", err)
	}
	return nil
}
