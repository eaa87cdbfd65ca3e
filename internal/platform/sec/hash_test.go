// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/digitalhub/internal/platform/sec"
)

/*
TestPasswordHasher_HashAndCompare verifies the bcrypt round trip.
*/
func TestPasswordHasher_HashAndCompare(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hash, err := hasher.Hash(ctx, "Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	ok, err := hasher.Compare(ctx, "Passw0rd!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Compare(ctx, "wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, hasher.CompareDummy(ctx, "anything"))
}

/*
TestPasswordHasher_DefaultCost verifies stored hashes carry cost 12.
*/
func TestPasswordHasher_DefaultCost(t *testing.T) {
	hasher := sec.NewPasswordHasher(sec.DefaultHashCost, 1)

	hash, err := hasher.Hash(context.Background(), "Passw0rd!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

/*
TestPasswordHasher_CancelledContext verifies waiting callers honour cancellation.
*/
func TestPasswordHasher_CancelledContext(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hasher.Hash(ctx, "Passw0rd!")
	assert.ErrorIs(t, err, context.Canceled)
}

/*
TestPasswordHasher_MalformedHash verifies a corrupt stored hash surfaces as an error.
*/
func TestPasswordHasher_MalformedHash(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost, 1)

	ok, err := hasher.Compare(context.Background(), "Passw0rd!", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

/*
TestSecureToken verifies token entropy and digest shape.
*/
func TestSecureToken(t *testing.T) {
	token, err := sec.GenerateSecureToken(sec.ResetTokenBytes)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := sec.GenerateSecureToken(sec.ResetTokenBytes)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	digest := sec.HashToken(token)
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, sec.HashToken(token))
	assert.NotEqual(t, token, digest)
}

func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleModerator))
	assert.True(t, sec.RoleUser.AtLeast(sec.RoleUser))
	assert.False(t, sec.RoleUser.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("ghost").Valid())
}
