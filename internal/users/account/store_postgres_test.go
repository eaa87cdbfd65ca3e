// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/internal/users/auth"
)

func newMockRepository(t *testing.T) (*PostgresAccountRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewAccountRepository(mock), mock
}

func TestPostgresAccountRepository_FindByID(t *testing.T) {
	repository, mock := newMockRepository(t)
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, email, phone, full_name, role, preferences, last_login, created_at, updated_at FROM users WHERE id = $1`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "phone", "full_name", "role", "preferences", "last_login", "created_at", "updated_at",
		}).AddRow("user-1", "alice@example.com", "+25712345678", "Alice", "admin",
			map[string]any{"theme": "dark"}, &created, created, created))

	user, err := repository.FindByID(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, sec.RoleAdmin, user.Role)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, "dark", user.Preferences["theme"])
	require.NotNil(t, user.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAccountRepository_FindByID_NotFound(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := repository.FindByID(context.Background(), "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestPostgresAccountRepository_Update(t *testing.T) {
	repository, mock := newMockRepository(t)
	user := &auth.User{ID: "user-1", Phone: "+25712345678", FullName: "Alice B"}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET phone = $2, full_name = $3, updated_at = $4 WHERE id = $1`)).
		WithArgs("user-1", "+25712345678", "Alice B", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET phone`)).
		WithArgs("missing", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repository.Update(context.Background(), user))
	assert.False(t, user.UpdatedAt.IsZero())

	err := repository.Update(context.Background(), &auth.User{ID: "missing"})
	assert.True(t, apperr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAccountRepository_MergePreferences(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SET preferences = preferences || $2::jsonb`)).
		WithArgs("user-1", `{"language":"en"}`, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"preferences"}).
			AddRow(map[string]any{"language": "en", "theme": "dark"}))

	merged, err := repository.MergePreferences(context.Background(), "user-1", map[string]any{"language": "en"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"language": "en", "theme": "dark"}, merged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
