// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MainCategory is the top level of the knowledge base hierarchy.
// Its slug is the public routing key and is unique across all categories.
type MainCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	SubcategoryCount int           `json:"subcategory_count"`
	ArticleCount     int           `json:"article_count"`
	Subcategories    []Subcategory `json:"subcategories,omitempty"`
}

// Subcategory is the middle level of the hierarchy. Its slug is unique
// within its parent category and used for public article listings.
type Subcategory struct {
	ID             uuid.UUID `json:"id"`
	MainCategoryID uuid.UUID `json:"main_category_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Virtual field populated by store methods.
	ArticleCount int `json:"article_count"`
}

// CategoryRef is a denormalized ancestor reference embedded in public
// article responses so clients can render breadcrumbs without extra calls.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}
