// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// Valid reports whether the status is one of the two known states.
func (s ArticleStatus) Valid() bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished
}

// Article is a knowledge base article. Content is sanitized HTML produced
// by the admin rich-text editor and re-sanitized on ingestion. The slug is
// globally unique and serves as the public route key.
type Article struct {
	ID            uuid.UUID     `json:"id"`
	SubcategoryID uuid.UUID     `json:"subcategory_id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Excerpt       string        `json:"excerpt"`
	Content       string        `json:"content"`
	Status        ArticleStatus `json:"status"`
	Tags          []string      `json:"tags"`
	SortOrder     int           `json:"sort_order"`
	Views         int64         `json:"views"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article is visible to public readers.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// ArticleWithContext is an article joined with its ancestor names and
// slugs, used by the admin article list, search results, and the public
// article response.
type ArticleWithContext struct {
	Article
	SubcategoryName  string    `json:"subcategory_name"`
	SubcategorySlug  string    `json:"subcategory_slug"`
	MainCategoryID   uuid.UUID `json:"main_category_id"`
	MainCategoryName string    `json:"main_category_name"`
	MainCategorySlug string    `json:"main_category_slug"`
}

// SubcategoryRef returns the breadcrumb reference for the article's
// subcategory.
func (a *ArticleWithContext) SubcategoryRef() CategoryRef {
	return CategoryRef{ID: a.SubcategoryID, Name: a.SubcategoryName, Slug: a.SubcategorySlug}
}

// MainCategoryRef returns the breadcrumb reference for the article's
// main category.
func (a *ArticleWithContext) MainCategoryRef() CategoryRef {
	return CategoryRef{ID: a.MainCategoryID, Name: a.MainCategoryName, Slug: a.MainCategorySlug}
}
