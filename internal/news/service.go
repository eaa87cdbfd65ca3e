// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/constants"
	"github.com/taibuivan/digitalhub/internal/platform/validate"
	"github.com/taibuivan/digitalhub/pkg/pagination"
	"github.com/taibuivan/digitalhub/pkg/slice"
	"github.com/taibuivan/digitalhub/pkg/slug"
	"github.com/taibuivan/digitalhub/pkg/uuid"
)

// # Defaults & Limits

const (
	DefaultTrendingLimit = 10
	DefaultSearchLimit   = 20
	DefaultLanguage      = "fr"

	maxTitleLen    = 200
	maxCategoryLen = 60
	maxTags        = 20
	maxTagLen      = 40

	// EventPublished is sent on the news channel after a create.
	EventPublished = "article_published"
)

var languageCode = regexp.MustCompile(`^[a-z]{2,3}$`)

// Route cached listings live under the public news path.
const routeCachePattern = constants.RedisPrefixRoute + constants.APIBasePath + "/news*"

// # Service Layer

// Service orchestrates the news feed over storage, cache and notifications.
type Service struct {
	repository Repository
	cache      Cache
	publisher  Publisher
	cacheTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a news [Service]. A nil publisher disables notifications.
func NewService(repository Repository, cache Cache, publisher Publisher, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		publisher:  publisher,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

/*
List returns one page of published articles.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params (already clamped)

Returns:
  - []*Article: The page
  - pagination.Meta: Page, limit, total and page count
  - error: Storage failures
*/
func (service *Service) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Article, pagination.Meta, error) {
	articles, total, err := service.repository.List(context, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("news_service_list_failed: %w", err)
	}
	return articles, pagination.NewMeta(params, total), nil
}

// Get returns a published article and counts the view.
func (service *Service) Get(context context.Context, id string) (*Article, error) {
	article, err := service.repository.GetAndCountView(context, id)
	if err != nil {
		return nil, fmt.Errorf("news_service_get_failed: %w", err)
	}
	return article, nil
}

/*
Trending returns the most viewed articles, served from cache when possible.

Description: Cache read and write failures are logged and the request falls
back to Postgres.
*/
func (service *Service) Trending(context context.Context, limit int) ([]*Article, error) {
	limit = clampLimit(limit, DefaultTrendingLimit)
	key := fmt.Sprintf("%strending:%d", constants.RedisPrefixNews, limit)

	var cached []*Article
	if service.readCache(context, key, &cached) {
		return cached, nil
	}

	articles, err := service.repository.Trending(context, limit)
	if err != nil {
		return nil, fmt.Errorf("news_service_trending_failed: %w", err)
	}

	service.writeCache(context, key, articles)
	return articles, nil
}

// Categories returns the per-category article counts, served from cache when possible.
func (service *Service) Categories(context context.Context) ([]CategoryCount, error) {
	key := constants.RedisPrefixNews + "categories"

	var cached []CategoryCount
	if service.readCache(context, key, &cached) {
		return cached, nil
	}

	categories, err := service.repository.Categories(context)
	if err != nil {
		return nil, fmt.Errorf("news_service_categories_failed: %w", err)
	}

	service.writeCache(context, key, categories)
	return categories, nil
}

// Search matches articles by title, content or tag.
func (service *Service) Search(context context.Context, query, language string, limit int) ([]*Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validate.RequiredError("q", "Search query is required")
	}

	articles, err := service.repository.Search(context, query, language, clampLimit(limit, DefaultSearchLimit))
	if err != nil {
		return nil, fmt.Errorf("news_service_search_failed: %w", err)
	}
	return articles, nil
}

// CreateInput carries a new article. Published defaults to true when nil.
type CreateInput struct {
	Title     string
	Content   string
	Category  string
	Languages []string
	ImageURL  string
	Tags      []string
	Published *bool
	AuthorID  string
}

/*
Create publishes a new article.

Description: Validates and normalises the input, persists the article, drops
every cached news view (service keys and route cached listings) and announces
the article on the news channel.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Article: The stored article
  - error: Validation or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Article, error) {
	// ── 1. Normalise ──
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	input.Languages = normaliseList(input.Languages)
	input.Tags = normaliseList(input.Tags)
	if len(input.Languages) == 0 {
		input.Languages = []string{DefaultLanguage}
	}

	// ── 2. Validate ──
	validator := &validate.Validator{}
	validator.Required("title", input.Title).MaxLen("title", input.Title, maxTitleLen)
	validator.Required("content", strings.TrimSpace(input.Content))
	validator.Required("category", input.Category).MaxLen("category", input.Category, maxCategoryLen)
	validator.Custom("languages", slices.ContainsFunc(input.Languages, func(code string) bool {
		return !languageCode.MatchString(code)
	}), "Languages must be ISO 639 codes")
	validator.Custom("tags", len(input.Tags) > maxTags, fmt.Sprintf("At most %d tags are allowed", maxTags))
	validator.Custom("tags", slices.ContainsFunc(input.Tags, func(tag string) bool {
		return len(tag) > maxTagLen
	}), fmt.Sprintf("Tags must be at most %d characters", maxTagLen))
	if input.AuthorID != "" {
		validator.UUID("author", input.AuthorID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	articleSlug := slug.From(input.Title)
	if articleSlug == "" {
		return nil, apperr.ValidationError("Title must contain letters or digits")
	}

	// ── 3. Persist ──
	now := service.now()
	article := &Article{
		ID:        uuid.New(),
		Title:     input.Title,
		Slug:      articleSlug,
		Content:   input.Content,
		Category:  input.Category,
		Languages: input.Languages,
		ImageURL:  strings.TrimSpace(input.ImageURL),
		Tags:      input.Tags,
		Published: input.Published == nil || *input.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.AuthorID != "" {
		article.Author = &input.AuthorID
	}

	if err := service.repository.Create(context, article); err != nil {
		return nil, fmt.Errorf("news_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "news_article_created",
		slog.String("article_id", article.ID), slog.String("category", article.Category))

	// ── 4. Invalidate & Notify ──
	service.invalidate(context)
	if article.Published {
		service.notify(context, article)
	}

	return article, nil
}

func (service *Service) readCache(context context.Context, key string, dest any) bool {
	hit, err := service.cache.Get(context, key, dest)
	if err != nil {
		service.logger.WarnContext(context, "news_cache_read_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return hit
}

func (service *Service) writeCache(context context.Context, key string, value any) {
	if err := service.cache.Set(context, key, value, service.cacheTTL); err != nil {
		service.logger.WarnContext(context, "news_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (service *Service) invalidate(context context.Context) {
	for _, pattern := range []string{constants.RedisPrefixNews + "*", routeCachePattern} {
		removed, err := service.cache.DeletePattern(context, pattern)
		if err != nil {
			service.logger.WarnContext(context, "news_cache_invalidate_failed",
				slog.String("pattern", pattern), slog.Any("error", err))
			continue
		}
		service.logger.DebugContext(context, "news_cache_invalidated",
			slog.String("pattern", pattern), slog.Int64("removed", removed))
	}
}

func (service *Service) notify(context context.Context, article *Article) {
	if service.publisher == nil {
		return
	}

	payload := map[string]any{
		"id":        article.ID,
		"title":     article.Title,
		"slug":      article.Slug,
		"category":  article.Category,
		"languages": article.Languages,
	}
	if err := service.publisher.Publish(context, constants.ChannelNews, EventPublished, payload); err != nil {
		service.logger.WarnContext(context, "news_notify_failed",
			slog.String("article_id", article.ID), slog.Any("error", err))
	}
}

func clampLimit(limit, fallback int) int {
	switch {
	case limit < 1:
		return fallback
	case limit > pagination.MaxLimit:
		return pagination.MaxLimit
	default:
		return limit
	}
}

// normaliseList lowercases, trims and de-duplicates entries, dropping blanks.
func normaliseList(values []string) []string {
	return slice.Unique(slice.Filter(slice.Map(values, func(value string) string {
		return strings.ToLower(strings.TrimSpace(value))
	}), func(value string) bool {
		return value != ""
	}))
}
