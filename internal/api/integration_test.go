// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

//go:build integration

package api_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/digitalhub/internal/news"
	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/migration"
	"github.com/taibuivan/digitalhub/internal/platform/postgres"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/internal/users/account"
	"github.com/taibuivan/digitalhub/internal/users/auth"
	"github.com/taibuivan/digitalhub/pkg/uuid"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("digitalhub_test"),
		tcpostgres.WithUsername("digitalhub"),
		tcpostgres.WithPassword("digitalhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, migration.RunUp(ctx, dsn, "../../data/migrations", logger))

	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestPostgresIntegration(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()

	users := auth.NewUserRepository(pool)
	admin := &auth.User{
		ID:           uuid.New(),
		Email:        "admin@example.bi",
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderpla",
		Role:         sec.RoleAdmin,
	}

	t.Run("users are unique regardless of email case", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, admin))

		err := users.Create(ctx, &auth.User{ID: uuid.New(), Email: "ADMIN@example.bi", PasswordHash: "x", Role: sec.RoleUser})
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

		found, err := users.FindByEmail(ctx, "Admin@Example.bi")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, found.ID)
		assert.Equal(t, sec.RoleAdmin, found.Role)
	})

	t.Run("preferences merge shallowly", func(t *testing.T) {
		accounts := account.NewAccountRepository(pool)

		_, err := accounts.MergePreferences(ctx, admin.ID, map[string]any{"theme": "dark", "language": "fr"})
		require.NoError(t, err)
		merged, err := accounts.MergePreferences(ctx, admin.ID, map[string]any{"language": "rn"})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"theme": "dark", "language": "rn"}, merged)
	})

	t.Run("news feed", func(t *testing.T) {
		repository := news.NewPostgresRepository(pool)
		now := time.Now().UTC().Truncate(time.Microsecond)
		author := admin.ID

		for i, title := range []string{"Marché de Gitega", "Intamba 100% en forme", "Brouillon"} {
			require.NoError(t, repository.Create(ctx, &news.Article{
				ID: uuid.New(), Title: title, Slug: "slug", Content: "contenu", Category: "sport",
				Languages: []string{"fr"}, Author: &author, Tags: []string{"burundi"},
				Published: i < 2, Views: i, CreatedAt: now.Add(time.Duration(i) * time.Minute), UpdatedAt: now,
			}))
		}

		articles, total, err := repository.List(ctx, news.ListFilter{Category: "sport", Language: "fr"}, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, articles, 1)
		assert.Equal(t, "Intamba 100% en forme", articles[0].Title)

		viewed, err := repository.GetAndCountView(ctx, articles[0].ID)
		require.NoError(t, err)
		assert.Equal(t, articles[0].Views+1, viewed.Views)

		matches, err := repository.Search(ctx, "100%", "", 10)
		require.NoError(t, err)
		assert.Len(t, matches, 1)

		categories, err := repository.Categories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []news.CategoryCount{{Category: "sport", Count: 2}}, categories)
	})
}
