// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/digitalhub/internal/platform/middleware"
	requestutil "github.com/taibuivan/digitalhub/internal/platform/request"
	"github.com/taibuivan/digitalhub/internal/platform/respond"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/pkg/pagination"
	"github.com/taibuivan/digitalhub/pkg/query"
)

// Handler implements the HTTP layer for the news feed.
type Handler struct {
	newsService *Service
	listCache   func(http.Handler) http.Handler
}

// NewHandler constructs a news [Handler]. listCache wraps the public listing
// (typically a response cache); nil serves it uncached.
func NewHandler(service *Service, listCache func(http.Handler) http.Handler) *Handler {
	if listCache == nil {
		listCache = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{newsService: service, listCache: listCache}
}

// Routes returns a [chi.Router] configured with the news endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.With(handler.listCache).Get("/", handler.list)
	router.Get("/trending", handler.trending)
	router.Get("/categories", handler.categories)
	router.Get("/search", handler.search)
	router.Get("/{id}", handler.get)

	// Editorial endpoints
	router.With(middleware.RequireRole(sec.RoleAdmin)).Post("/", handler.create)

	return router
}

/*
GET /api/v1/news.

Request:
  - query: page, limit, category, language, tags (comma separated)

Response:
  - 200: []Article with pagination meta
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	filter := ListFilter{
		Category: strings.ToLower(strings.TrimSpace(values.Get("category"))),
		Language: strings.ToLower(strings.TrimSpace(values.Get("language"))),
		Tags:     normaliseList(query.StringSlice(values.Get("tags"))),
	}

	articles, meta, err := handler.newsService.List(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, articles, meta)
}

// GET /api/v1/news/trending?limit=n.
func (handler *Handler) trending(writer http.ResponseWriter, request *http.Request) {
	limit := requestutil.QueryInt(request, "limit", DefaultTrendingLimit)

	articles, err := handler.newsService.Trending(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Trending articles retrieved successfully", articles)
}

// GET /api/v1/news/categories.
func (handler *Handler) categories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.newsService.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Categories retrieved successfully", categories)
}

/*
GET /api/v1/news/search.

Request:
  - query: q (required), language, limit

Response:
  - 200: []Article
  - 400: VALIDATION_ERROR: Missing q
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()
	limit := requestutil.QueryInt(request, "limit", DefaultSearchLimit)

	articles, err := handler.newsService.Search(request.Context(),
		values.Get("q"), strings.ToLower(strings.TrimSpace(values.Get("language"))), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Search results retrieved successfully", articles)
}

/*
GET /api/v1/news/{id}.

Response:
  - 200: Article: Includes the view just counted
  - 400: VALIDATION_ERROR: Malformed id
  - 404: NOT_FOUND: Unknown or unpublished article
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	article, err := handler.newsService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Article retrieved successfully", article)
}

type createRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Languages []string `json:"languages"`
	ImageURL  string   `json:"imageUrl"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

/*
POST /api/v1/news.

Description: Publishes an article authored by the calling administrator.

Response:
  - 201: Article
  - 400: VALIDATION_ERROR: Missing or malformed fields
  - 401: AUTHENTICATION_ERROR: No bearer token
  - 403: AUTHORIZATION_ERROR: Caller is not an administrator
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	article, err := handler.newsService.Create(request.Context(), CreateInput{
		Title:     input.Title,
		Content:   input.Content,
		Category:  input.Category,
		Languages: input.Languages,
		ImageURL:  input.ImageURL,
		Tags:      input.Tags,
		Published: input.Published,
		AuthorID:  userID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Article created successfully", article)
}
