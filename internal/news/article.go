// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package news implements the public news feed of the portal.

Articles are written by administrators and read anonymously. Listing is
paginated and filterable by category and language, the trending and category
views are served from the Redis cache, and every publication is announced on
the "news" notification channel.
*/
package news

import (
	"context"
	"time"
)

// # Domain Entities

// Article is a published (or draft) news item.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Languages []string  `json:"languages"`
	Author    *string   `json:"author"`
	ImageURL  string    `json:"imageUrl"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryCount is the number of published articles in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ListFilter narrows the public listing. Empty fields are ignored.
// Tags match articles carrying any of the given tags.
type ListFilter struct {
	Category string
	Language string
	Tags     []string
}

// # Interfaces

// Repository is the persistence contract for articles.
//
// Every read method only ever returns published articles.
type Repository interface {
	List(context context.Context, filter ListFilter, limit, offset int) ([]*Article, int, error)
	GetAndCountView(context context.Context, id string) (*Article, error)
	Trending(context context.Context, limit int) ([]*Article, error)
	Categories(context context.Context) ([]CategoryCount, error)
	Search(context context.Context, query, language string, limit int) ([]*Article, error)
	Create(context context.Context, article *Article) error
}

// Cache is the subset of the Redis JSON cache the service relies on.
type Cache interface {
	Get(context context.Context, key string, dest any) (bool, error)
	Set(context context.Context, key string, value any, ttl time.Duration) error
	DeletePattern(context context.Context, pattern string) (int64, error)
}

// Publisher broadcasts an event to subscribers of a notification channel.
type Publisher interface {
	Publish(context context.Context, channel, event string, data any) error
}
