// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/cache"
	"github.com/taibuivan/digitalhub/internal/platform/ctxutil"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/pkg/pagination"
	"github.com/taibuivan/digitalhub/pkg/pointer"
)

// # Fakes

type memoryRepository struct {
	mu            sync.Mutex
	articles      []*Article
	trendingCalls int
	categoryCalls int
	lastFilter    ListFilter
}

func (repository *memoryRepository) List(_ context.Context, filter ListFilter, limit, offset int) ([]*Article, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.lastFilter = filter
	var matched []*Article
	for _, article := range repository.articles {
		if !article.Published || (filter.Category != "" && article.Category != filter.Category) {
			continue
		}
		if filter.Language != "" && !slices.Contains(article.Languages, filter.Language) {
			continue
		}
		matched = append(matched, article)
	}

	total := len(matched)
	if offset >= total {
		return []*Article{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (repository *memoryRepository) GetAndCountView(_ context.Context, id string) (*Article, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, article := range repository.articles {
		if article.ID == id && article.Published {
			article.Views++
			clone := *article
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Article")
}

func (repository *memoryRepository) Trending(_ context.Context, limit int) ([]*Article, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.trendingCalls++
	sorted := slices.Clone(repository.articles)
	slices.SortFunc(sorted, func(a, b *Article) int { return b.Views - a.Views })
	return sorted[:min(limit, len(sorted))], nil
}

func (repository *memoryRepository) Categories(context.Context) ([]CategoryCount, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.categoryCalls++
	counts := map[string]int{}
	for _, article := range repository.articles {
		counts[article.Category]++
	}
	result := []CategoryCount{}
	for category, count := range counts {
		result = append(result, CategoryCount{Category: category, Count: count})
	}
	slices.SortFunc(result, func(a, b CategoryCount) int { return strings.Compare(a.Category, b.Category) })
	return result, nil
}

func (repository *memoryRepository) Search(_ context.Context, query, _ string, limit int) ([]*Article, error) {
	var matched []*Article
	for _, article := range repository.articles {
		if strings.Contains(strings.ToLower(article.Title), strings.ToLower(query)) {
			matched = append(matched, article)
		}
	}
	return matched[:min(limit, len(matched))], nil
}

func (repository *memoryRepository) Create(_ context.Context, article *Article) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.articles = append(repository.articles, article)
	return nil
}

type published struct {
	channel string
	event   string
	data    any
}

type recordingPublisher struct {
	events []published
	err    error
}

func (publisher *recordingPublisher) Publish(_ context.Context, channel, event string, data any) error {
	publisher.events = append(publisher.events, published{channel, event, data})
	return publisher.err
}

type newsFixture struct {
	service    *Service
	repository *memoryRepository
	publisher  *recordingPublisher
	redis      *miniredis.Miniredis
	store      *cache.Store
}

func newNewsFixture(t *testing.T) *newsFixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repository := &memoryRepository{articles: []*Article{
		{ID: "0190a1b2-0000-7000-8000-000000000001", Title: "Budget 2026 adopté", Category: "politics", Languages: []string{"fr"}, Published: true, Views: 4},
		{ID: "0190a1b2-0000-7000-8000-000000000002", Title: "Intamba win again", Category: "sport", Languages: []string{"en", "fr"}, Published: true, Views: 12},
		{ID: "0190a1b2-0000-7000-8000-000000000003", Title: "Draft piece", Category: "sport", Languages: []string{"fr"}, Published: false},
	}}
	publisher := &recordingPublisher{}
	store := cache.NewStore(client)

	service := NewService(repository, store, publisher, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &newsFixture{service: service, repository: repository, publisher: publisher, redis: server, store: store}
}

// # Service

func TestList_PaginatesPublished(t *testing.T) {
	f := newNewsFixture(t)

	articles, meta, err := f.service.List(context.Background(), ListFilter{}, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 1, Total: 2, Pages: 2}, meta)

	articles, _, err = f.service.List(context.Background(), ListFilter{Language: "en"}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "sport", articles[0].Category)
}

func TestGet_CountsViews(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	article, err := f.service.Get(ctx, "0190a1b2-0000-7000-8000-000000000001")
	require.NoError(t, err)
	assert.Equal(t, 5, article.Views)

	_, err = f.service.Get(ctx, "0190a1b2-0000-7000-8000-000000000003")
	assert.True(t, apperr.IsNotFound(err), "drafts are not readable")
}

func TestTrending_ServedFromCache(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	first, err := f.service.Trending(ctx, 2)
	require.NoError(t, err)
	second, err := f.service.Trending(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, f.repository.trendingCalls)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, f.redis.Exists("news:trending:2"))

	// Limits outside the allowed range share the clamped key.
	_, err = f.service.Trending(ctx, 0)
	require.NoError(t, err)
	assert.True(t, f.redis.Exists("news:trending:10"))

	f.redis.FastForward(2 * time.Minute)
	_, err = f.service.Trending(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, f.repository.trendingCalls)
}

func TestCategories_FallsBackWhenRedisIsDown(t *testing.T) {
	f := newNewsFixture(t)
	f.redis.Close()

	categories, err := f.service.Categories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, categories)
	assert.Equal(t, 1, f.repository.categoryCalls)
}

func TestSearch_RequiresQuery(t *testing.T) {
	f := newNewsFixture(t)

	_, err := f.service.Search(context.Background(), "   ", "", 10)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	articles, err := f.service.Search(context.Background(), "budget", "", 10)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestCreate_DefaultsAndInvalidation(t *testing.T) {
	f := newNewsFixture(t)
	ctx := context.Background()

	_, err := f.service.Categories(ctx)
	require.NoError(t, err)
	require.NoError(t, f.store.SetBytes(ctx, "cache:/api/v1/news?page=1", []byte(`{}`), time.Minute))
	require.NoError(t, f.store.SetBytes(ctx, "cache:/api/v1/other", []byte(`{}`), time.Minute))

	article, err := f.service.Create(ctx, CreateInput{
		Title:    "  Élections: résultats provisoires ",
		Content:  "...",
		Category: " Politics ",
		Tags:     []string{"Vote", "vote", " "},
		AuthorID: "0190a1b2-0000-7000-8000-0000000000aa",
	})
	require.NoError(t, err)

	assert.Equal(t, "elections-resultats-provisoires", article.Slug)
	assert.Equal(t, "politics", article.Category)
	assert.Equal(t, []string{DefaultLanguage}, article.Languages)
	assert.Equal(t, []string{"vote"}, article.Tags)
	assert.True(t, article.Published)
	require.NotNil(t, article.Author)

	assert.False(t, f.redis.Exists("news:categories"))
	assert.False(t, f.redis.Exists("cache:/api/v1/news?page=1"))
	assert.True(t, f.redis.Exists("cache:/api/v1/other"))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "news", f.publisher.events[0].channel)
	assert.Equal(t, EventPublished, f.publisher.events[0].event)
}

func TestCreate_DraftIsNotAnnounced(t *testing.T) {
	f := newNewsFixture(t)

	article, err := f.service.Create(context.Background(), CreateInput{
		Title: "Draft", Content: "x", Category: "sport", Published: pointer.To(false),
	})
	require.NoError(t, err)
	assert.False(t, article.Published)
	assert.Empty(t, f.publisher.events)
}

func TestCreate_PublisherFailureDoesNotFail(t *testing.T) {
	f := newNewsFixture(t)
	f.publisher.err = errors.New("redis down")

	_, err := f.service.Create(context.Background(), CreateInput{Title: "Hello", Content: "x", Category: "sport"})
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	f := newNewsFixture(t)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing title", CreateInput{Content: "x", Category: "sport"}},
		{"missing content", CreateInput{Title: "t", Category: "sport"}},
		{"missing category", CreateInput{Title: "t", Content: "x"}},
		{"bad language", CreateInput{Title: "t", Content: "x", Category: "sport", Languages: []string{"french"}}},
		{"punctuation title", CreateInput{Title: "!!!", Content: "x", Category: "sport"}},
		{"long tag", CreateInput{Title: "t", Content: "x", Category: "sport", Tags: []string{strings.Repeat("x", maxTagLen+1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), tt.input)
			assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
		})
	}
	assert.Empty(t, f.publisher.events)
}

// # HTTP

func withRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{UserID: "0190a1b2-0000-7000-8000-0000000000aa", Role: role})
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func TestHandler(t *testing.T) {
	f := newNewsFixture(t)
	routes := NewHandler(f.service, cache.NewResponseCache(f.store).Middleware(time.Minute)).Routes()

	router := chi.NewRouter()
	router.Mount("/api/v1/news", routes)
	router.With(withRole(sec.RoleUser)).Mount("/as-user/news", routes)
	router.With(withRole(sec.RoleAdmin)).Mount("/as-admin/news", routes)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	recorder := send(http.MethodGet, "/api/v1/news?limit=1&category=sport", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"total":1`)
	assert.Equal(t, "sport", f.repository.lastFilter.Category)
	assert.True(t, f.redis.Exists("cache:/api/v1/news?limit=1&category=sport"))

	recorder = send(http.MethodGet, "/api/v1/news/categories", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = send(http.MethodGet, "/api/v1/news/search", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = send(http.MethodGet, "/api/v1/news/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = send(http.MethodGet, "/api/v1/news/0190a1b2-0000-7000-8000-000000000002", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"views":13`)

	body := `{"title":"Nouvelle route","content":"...","category":"infrastructure"}`
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodPost, "/api/v1/news", body).Code)
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, "/as-user/news", body).Code)

	recorder = send(http.MethodPost, "/as-admin/news", body)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"slug":"nouvelle-route"`)
	assert.False(t, f.redis.Exists("cache:/api/v1/news?limit=1&category=sport"))
}
