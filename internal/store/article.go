// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"kbpress/internal/models"
)

// ArticleStore manages articles in the database.
//
// Concurrent updates to the same article are last-write-wins; there is no
// version column or conditional write.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore returns a new ArticleStore.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `a.id, a.subcategory_id, a.title, a.slug, a.excerpt, a.content,
       a.status, a.tags, a.sort_order, a.views, a.created_at, a.updated_at`

// contextColumns carries the ancestor names and slugs alongside an
// article row, enough to build breadcrumbs without extra queries.
const contextColumns = `sc.name, sc.slug, mc.id, mc.name, mc.slug`

// contextJoin joins an article row with its ancestors.
const contextJoin = `
	FROM articles a
	JOIN subcategories sc ON sc.id = a.subcategory_id
	JOIN main_categories mc ON mc.id = sc.main_category_id`

func scanArticleContext(scanner interface{ Scan(...any) error }) (*models.ArticleWithContext, error) {
	var a models.ArticleWithContext
	var tags []byte
	err := scanner.Scan(
		&a.ID, &a.SubcategoryID, &a.Title, &a.Slug, &a.Excerpt, &a.Content,
		&a.Status, &tags, &a.SortOrder, &a.Views, &a.CreatedAt, &a.UpdatedAt,
		&a.SubcategoryName, &a.SubcategorySlug,
		&a.MainCategoryID, &a.MainCategoryName, &a.MainCategorySlug,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &a.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return &a, nil
}

// marshalTags encodes a tag list as JSON for the jsonb column. A nil slice
// is stored as an empty array, never null.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// Filter narrows the admin article listing. Zero values match everything;
// provided filters combine with AND semantics.
type Filter struct {
	Status        models.ArticleStatus
	SubcategoryID *uuid.UUID
	Search        string
}

// List returns articles matching the filter, joined with ancestor names,
// ordered by sort_order then most recently created. Used by the admin API.
func (s *ArticleStore) List(f Filter) ([]models.ArticleWithContext, error) {
	query := `SELECT ` + articleColumns + `,
	       ` + contextColumns + contextJoin
	var conds []string
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.SubcategoryID != nil {
		args = append(args, *f.SubcategoryID)
		conds = append(conds, fmt.Sprintf("a.subcategory_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(a.title ILIKE $%d OR a.excerpt ILIKE $%d OR a.content ILIKE $%d)", n, n, n))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY a.sort_order, a.created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// ListPublishedBySubcategory returns published articles under a subcategory,
// ordered by sort_order. Used by the public listing.
func (s *ArticleStore) ListPublishedBySubcategory(subcategoryID uuid.UUID) ([]models.ArticleWithContext, error) {
	rows, err := s.db.Query(`
		SELECT `+articleColumns+`, `+contextColumns+contextJoin+`
		WHERE a.subcategory_id = $1 AND a.status = 'published'
		ORDER BY a.sort_order, a.created_at DESC
	`, subcategoryID)
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// FindByID retrieves an article by UUID regardless of status, with ancestor
// names. Returns nil if not found. Used by the admin API, so drafts resolve.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.ArticleWithContext, error) {
	row := s.db.QueryRow(`
		SELECT `+articleColumns+`, `+contextColumns+contextJoin+`
		WHERE a.id = $1
	`, id)
	a, err := scanArticleContext(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindPublishedBySlug retrieves a published article by its slug, with
// ancestor names. Drafts behave as nonexistent: nil, no error.
func (s *ArticleStore) FindPublishedBySlug(slug string) (*models.ArticleWithContext, error) {
	row := s.db.QueryRow(`
		SELECT `+articleColumns+`, `+contextColumns+contextJoin+`
		WHERE a.slug = $1 AND a.status = 'published'
	`, slug)
	a, err := scanArticleContext(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// Create inserts a new article and returns it with ancestor names.
// Returns ErrParentNotFound for an unknown subcategory and ErrDuplicateSlug
// for a slug collision.
func (s *ArticleStore) Create(a *models.Article) (*models.ArticleWithContext, error) {
	tags, err := marshalTags(a.Tags)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.db.QueryRow(`
		INSERT INTO articles (subcategory_id, title, slug, excerpt, content, status, tags, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		RETURNING id
	`, a.SubcategoryID, a.Title, a.Slug, a.Excerpt, a.Content, a.Status, tags, a.SortOrder,
	).Scan(&id)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies an existing article. Status changes ride the same write;
// publishing and unpublishing are just a different status value.
func (s *ArticleStore) Update(a *models.Article) error {
	tags, err := marshalTags(a.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		UPDATE articles SET
			subcategory_id = $1, title = $2, slug = $3, excerpt = $4,
			content = $5, status = $6, tags = $7::jsonb, sort_order = $8,
			updated_at = NOW()
		WHERE id = $9
	`, a.SubcategoryID, a.Title, a.Slug, a.Excerpt, a.Content, a.Status, tags, a.SortOrder, a.ID)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// Delete removes an article by ID. Immediate and non-recoverable.
func (s *ArticleStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter by one and returns the new value.
// Concurrent increments race benignly; the counter only ever grows.
func (s *ArticleStore) IncrementViews(id uuid.UUID) (int64, error) {
	var views int64
	err := s.db.QueryRow(`
		UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING views
	`, id).Scan(&views)
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// Search returns published articles whose title, excerpt, or content
// contains the query, case-insensitively. Results are capped at limit and
// ordered by update recency with the ID as a deterministic tie-break.
// Query-length policy lives in the handler layer.
func (s *ArticleStore) Search(query string, limit int) ([]models.ArticleWithContext, error) {
	rows, err := s.db.Query(`
		SELECT `+articleColumns+`, `+contextColumns+contextJoin+`
		WHERE a.status = 'published'
		  AND (a.title ILIKE $1 OR a.excerpt ILIKE $1 OR a.content ILIKE $1)
		ORDER BY a.updated_at DESC, a.id
		LIMIT $2
	`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// Stats holds the aggregate counters for the admin dashboard.
type Stats struct {
	TotalCategories    int   `json:"total_categories"`
	TotalSubcategories int   `json:"total_subcategories"`
	TotalArticles      int   `json:"total_articles"`
	PublishedArticles  int   `json:"published_articles"`
	DraftArticles      int   `json:"draft_articles"`
	TotalViews         int64 `json:"total_views"`
}

// Stats aggregates counts across the whole hierarchy. Views are summed
// over all articles regardless of status.
func (s *ArticleStore) Stats() (*Stats, error) {
	st := &Stats{}
	err := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM main_categories),
			(SELECT COUNT(*) FROM subcategories),
			COUNT(a.id),
			COUNT(a.id) FILTER (WHERE a.status = 'published'),
			COUNT(a.id) FILTER (WHERE a.status = 'draft'),
			COALESCE(SUM(a.views), 0)
		FROM articles a
	`).Scan(
		&st.TotalCategories, &st.TotalSubcategories, &st.TotalArticles,
		&st.PublishedArticles, &st.DraftArticles, &st.TotalViews,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// collectArticles drains a result set of context-joined article rows.
func collectArticles(rows *sql.Rows) ([]models.ArticleWithContext, error) {
	var items []models.ArticleWithContext
	for rows.Next() {
		a, err := scanArticleContext(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// likePattern wraps a query in ILIKE wildcards, escaping the pattern
// metacharacters so user input matches literally.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
