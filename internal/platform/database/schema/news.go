// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// NewsArticlesTable represents the 'news_articles' table
type NewsArticlesTable struct {
	Table     string
	ID        string
	Title     string
	Slug      string
	Content   string
	Category  string
	Languages string
	Author    string
	ImageURL  string
	Tags      string
	Published string
	Views     string
	CreatedAt string
	UpdatedAt string
}

// NewsArticles is the schema definition for news_articles
var NewsArticles = NewsArticlesTable{
	Table:     "news_articles",
	ID:        "id",
	Title:     "title",
	Slug:      "slug",
	Content:   "content",
	Category:  "category",
	Languages: "languages",
	Author:    "author",
	ImageURL:  "image_url",
	Tags:      "tags",
	Published: "published",
	Views:     "views",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

// Columns returns all column names in scan order.
func (t NewsArticlesTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Content, t.Category, t.Languages, t.Author,
		t.ImageURL, t.Tags, t.Published, t.Views, t.CreatedAt, t.UpdatedAt,
	}
}
