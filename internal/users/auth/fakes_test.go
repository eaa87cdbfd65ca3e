// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
)

// # In-memory collaborators

type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*User
	fails error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]*User{}}
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.fails != nil {
		return nil, store.fails
	}
	user, ok := store.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.fails != nil {
		return nil, store.fails
	}
	for _, user := range store.byID {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) Create(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.byID {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict(msgEmailRegistered)
		}
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	store.byID[user.ID] = &clone
	return nil
}

func (store *memoryUsers) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if user, ok := store.byID[id]; ok {
		user.LastLogin = &at
	}
	return nil
}

func (store *memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (store *memoryUsers) delete(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.byID, id)
}

type memoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Duration
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{entries: map[string]time.Duration{}}
}

func (list *memoryBlacklist) Revoke(_ context.Context, digest string, ttl time.Duration) (bool, error) {
	list.mu.Lock()
	defer list.mu.Unlock()

	if _, ok := list.entries[digest]; ok {
		return false, nil
	}
	list.entries[digest] = ttl
	return true, nil
}

func (list *memoryBlacklist) ttl(digest string) (time.Duration, bool) {
	list.mu.Lock()
	defer list.mu.Unlock()

	ttl, ok := list.entries[digest]
	return ttl, ok
}

type memoryResets struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryResets() *memoryResets {
	return &memoryResets{entries: map[string]string{}}
}

func (store *memoryResets) Save(_ context.Context, digest, userID string, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.entries[digest] = userID
	return nil
}

func (store *memoryResets) Consume(_ context.Context, digest string) (string, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	userID, ok := store.entries[digest]
	delete(store.entries, digest)
	return userID, ok, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	email string
	token string
	calls int
	err   error
}

func (notifier *recordingNotifier) SendResetEmail(_ context.Context, email, token string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	notifier.calls++
	notifier.email = email
	notifier.token = token
	return notifier.err
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (recorder *countingRecorder) RecordAuthEvent(event, outcome string) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	if recorder.counts == nil {
		recorder.counts = map[string]int{}
	}
	recorder.counts[event+"/"+outcome]++
}

func (recorder *countingRecorder) count(event, outcome string) int {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return recorder.counts[event+"/"+outcome]
}

// fakeClock is a settable time source shared with the token service.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

// # Fixture

type fixture struct {
	service   *Service
	users     *memoryUsers
	blacklist *memoryBlacklist
	resets    *memoryResets
	notifier  *recordingNotifier
	events    *countingRecorder
	clock     *fakeClock
}

const (
	testPassword = "Passw0rd!"
	testEmail    = "alice@example.com"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService("access-secret-for-tests", "refresh-secret-for-tests", "digitalhub.test")
	require.NoError(t, err)

	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}
	tokens.WithClock(clock.Now)

	f := &fixture{
		users:     newMemoryUsers(),
		blacklist: newMemoryBlacklist(),
		resets:    newMemoryResets(),
		notifier:  &recordingNotifier{},
		events:    &countingRecorder{},
		clock:     clock,
	}
	f.service = NewService(
		f.users,
		f.blacklist,
		f.resets,
		f.notifier,
		tokens,
		sec.NewPasswordHasher(bcrypt.MinCost, 4),
		f.events,
		nil,
	)
	return f
}

func (f *fixture) register(t *testing.T, email string) *Session {
	t.Helper()

	session, err := f.service.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: testPassword,
		FullName: "Alice Tester",
	})
	require.NoError(t, err)
	return session
}
