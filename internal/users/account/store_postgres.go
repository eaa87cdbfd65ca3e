// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/digitalhub/internal/platform/database/schema"
	"github.com/taibuivan/digitalhub/internal/platform/dberr"
	"github.com/taibuivan/digitalhub/internal/platform/postgres"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/internal/users/auth"
)

// # Repository Implementation

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool postgres.Querier
}

// NewAccountRepository creates a new Postgres implementation for profile management.
func NewAccountRepository(pool postgres.Querier) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
FindByID retrieves a user profile from the users table.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *auth.User: Hydrated identity entity, password hash left empty
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Users.PublicColumns(), ", "), schema.Users.Table, schema.Users.ID)

	user, err := scanProfile(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
Update modifies the mutable contact fields of a user.

Description: Syncs phone and full name and refreshes updated_at on the entity.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: NotFound or update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.Users.Table,
		schema.Users.Phone, schema.Users.FullName, schema.Users.UpdatedAt,
		schema.Users.ID,
	)

	user.UpdatedAt = time.Now().UTC()
	tag, err := repository.pool.Exec(context, query, user.ID, user.Phone, user.FullName, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}

	return nil
}

/*
MergePreferences applies a JSONB shallow merge (stored || patch) in place.

Parameters:
  - context: context.Context
  - id: string
  - patch: map[string]any

Returns:
  - map[string]any: The merged document as stored
  - error: NotFound or execution failures
*/
func (repository *PostgresAccountRepository) MergePreferences(context context.Context, id string, patch map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_encode_preferences_failed: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = %s || $2::jsonb, %s = $3 WHERE %s = $1 RETURNING %s`,
		schema.Users.Table,
		schema.Users.Preferences, schema.Users.Preferences, schema.Users.UpdatedAt,
		schema.Users.ID,
		schema.Users.Preferences,
	)

	var merged map[string]any
	if err := repository.pool.QueryRow(context, query, id, string(raw), time.Now().UTC()).Scan(&merged); err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return merged, nil
}

// scanProfile hydrates a [auth.User] from a row selected with [schema.UsersTable.PublicColumns].
func scanProfile(row pgx.Row) (*auth.User, error) {
	var (
		user auth.User
		role string
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.FullName,
		&role,
		&user.Preferences,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = sec.UserRole(role)
	return &user, nil
}
