// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/digitalhub/internal/platform/database/schema"
	"github.com/taibuivan/digitalhub/internal/platform/dberr"
	"github.com/taibuivan/digitalhub/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool postgres.Querier
}

// NewPostgresRepository creates a new [PostgresRepository].
func NewPostgresRepository(pool postgres.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// likeEscaper neutralises LIKE wildcards in user supplied search terms.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func articleColumns(alias string) string {
	columns := schema.NewsArticles.Columns()
	if alias == "" {
		return strings.Join(columns, ", ")
	}
	prefixed := make([]string, len(columns))
	for i, column := range columns {
		prefixed[i] = alias + "." + column
	}
	return strings.Join(prefixed, ", ")
}

/*
List retrieves a page of published articles, newest first.

Description: Builds the WHERE clause dynamically from the filter and carries
the unpaginated total on every row through a window function.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - limit: int
  - offset: int

Returns:
  - []*Article: The requested page
  - int: Total number of matching articles
  - error: Database failures
*/
func (repository *PostgresRepository) List(context context.Context, filter ListFilter, limit, offset int) ([]*Article, int, error) {
	var (
		queryBuilder strings.Builder
		args         []any
		argID        = 1
	)

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s n WHERE n.%s = true`,
		articleColumns("n"), schema.NewsArticles.Table, schema.NewsArticles.Published,
	))

	// Category Filtering
	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND n.%s = $%d", schema.NewsArticles.Category, argID))
		args = append(args, filter.Category)
		argID++
	}

	// Language Filtering
	if filter.Language != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND $%d = ANY(n.%s)", argID, schema.NewsArticles.Languages))
		args = append(args, filter.Language)
		argID++
	}

	// Tag Filtering (any overlap)
	if len(filter.Tags) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND n.%s && $%d::text[]", schema.NewsArticles.Tags, argID))
		args = append(args, filter.Tags)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY n.%s DESC LIMIT $%d OFFSET $%d",
		schema.NewsArticles.CreatedAt, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_news_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var (
		articles = make([]*Article, 0, limit)
		total    int
	)
	for rows.Next() {
		article, err := scanArticle(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_news_repo_list_scan_failed: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_news_repo_list_rows_failed: %w", err)
	}

	return articles, total, nil
}

/*
GetAndCountView returns a published article and records one view.

Description: The increment and the read happen in a single UPDATE ...
RETURNING so the returned view count includes the current request.

Returns:
  - *Article: The article with its updated view count
  - error: apperr.NotFound for unknown or unpublished articles
*/
func (repository *PostgresRepository) GetAndCountView(context context.Context, id string) (*Article, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1 AND %s = true RETURNING %s`,
		schema.NewsArticles.Table,
		schema.NewsArticles.Views, schema.NewsArticles.Views,
		schema.NewsArticles.ID, schema.NewsArticles.Published,
		articleColumns(""),
	)

	article, err := scanArticle(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Article")
	}
	return article, nil
}

// Trending returns the most viewed published articles.
func (repository *PostgresRepository) Trending(context context.Context, limit int) ([]*Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = true ORDER BY %s DESC, %s DESC LIMIT $1`,
		articleColumns(""), schema.NewsArticles.Table, schema.NewsArticles.Published,
		schema.NewsArticles.Views, schema.NewsArticles.CreatedAt,
	)

	return repository.queryArticles(context, "trending", query, limit)
}

// Categories counts published articles per category, largest first.
func (repository *PostgresRepository) Categories(context context.Context) ([]CategoryCount, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) AS count FROM %s WHERE %s = true GROUP BY %s ORDER BY count DESC, %s`,
		schema.NewsArticles.Category, schema.NewsArticles.Table, schema.NewsArticles.Published,
		schema.NewsArticles.Category, schema.NewsArticles.Category,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_news_repo_categories_failed: %w", err)
	}
	defer rows.Close()

	categories := []CategoryCount{}
	for rows.Next() {
		var entry CategoryCount
		if err := rows.Scan(&entry.Category, &entry.Count); err != nil {
			return nil, fmt.Errorf("postgres_news_repo_categories_scan_failed: %w", err)
		}
		categories = append(categories, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_news_repo_categories_rows_failed: %w", err)
	}

	return categories, nil
}

/*
Search matches published articles by title, content, or exact tag.

Parameters:
  - context: context.Context
  - query: string (matched case-insensitively as a substring)
  - language: string (optional)
  - limit: int

Returns:
  - []*Article: Matches, newest first
  - error: Database failures
*/
func (repository *PostgresRepository) Search(context context.Context, query, language string, limit int) ([]*Article, error) {
	var queryBuilder strings.Builder

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM %s WHERE %s = true AND (%s ILIKE $1 OR %s ILIKE $1 OR $2 = ANY(%s))`,
		articleColumns(""), schema.NewsArticles.Table, schema.NewsArticles.Published,
		schema.NewsArticles.Title, schema.NewsArticles.Content, schema.NewsArticles.Tags,
	))
	args := []any{"%" + likeEscaper.Replace(query) + "%", query}
	argID := 3

	if language != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND $%d = ANY(%s)", argID, schema.NewsArticles.Languages))
		args = append(args, language)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d", schema.NewsArticles.CreatedAt, argID))
	args = append(args, limit)

	return repository.queryArticles(context, "search", queryBuilder.String(), args...)
}

// Create inserts a fully populated article.
func (repository *PostgresRepository) Create(context context.Context, article *Article) error {
	columns := schema.NewsArticles.Columns()
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.NewsArticles.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	_, err := repository.pool.Exec(context, query,
		article.ID, article.Title, article.Slug, article.Content, article.Category,
		article.Languages, article.Author, article.ImageURL, article.Tags,
		article.Published, article.Views, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Article")
	}
	return nil
}

func (repository *PostgresRepository) queryArticles(context context.Context, operation, query string, args ...any) ([]*Article, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_news_repo_%s_failed: %w", operation, err)
	}
	defer rows.Close()

	articles := []*Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_news_repo_%s_scan_failed: %w", operation, err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_news_repo_%s_rows_failed: %w", operation, err)
	}

	return articles, nil
}

// scanArticle hydrates an [Article] in [schema.NewsArticlesTable.Columns] order.
// Extra destinations (such as a window total) are scanned after the article.
func scanArticle(row pgx.Row, extra ...any) (*Article, error) {
	var article Article

	dest := []any{
		&article.ID,
		&article.Title,
		&article.Slug,
		&article.Content,
		&article.Category,
		&article.Languages,
		&article.Author,
		&article.ImageURL,
		&article.Tags,
		&article.Published,
		&article.Views,
		&article.CreatedAt,
		&article.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &article, nil
}
