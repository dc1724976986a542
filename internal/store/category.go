// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"kbpress/internal/models"
)

// CategoryStore manages main categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, icon, sort_order, created_at, updated_at`

// scanCategory scans a row into a MainCategory struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.MainCategory, error) {
	var c models.MainCategory
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.Icon, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all main categories ordered by sort_order then name, with
// subcategory and article counts across all statuses. Used by the admin API.
func (s *CategoryStore) List() ([]models.MainCategory, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.icon, c.sort_order,
		       c.created_at, c.updated_at,
		       COUNT(DISTINCT sc.id) AS subcategory_count,
		       COUNT(a.id)           AS article_count
		FROM main_categories c
		LEFT JOIN subcategories sc ON sc.main_category_id = c.id
		LEFT JOIN articles a ON a.subcategory_id = sc.id
		GROUP BY c.id
		ORDER BY c.sort_order, c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.MainCategory
	for rows.Next() {
		var c models.MainCategory
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.SortOrder,
			&c.CreatedAt, &c.UpdatedAt,
			&c.SubcategoryCount, &c.ArticleCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// PublishedTree returns all main categories with their subcategories nested,
// counting published articles only. This is the public catalog projection.
func (s *CategoryStore) PublishedTree() ([]models.MainCategory, error) {
	cats, err := s.List()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT sc.id, sc.main_category_id, sc.name, sc.slug, sc.description,
		       sc.sort_order, sc.created_at, sc.updated_at,
		       COUNT(a.id) FILTER (WHERE a.status = 'published') AS article_count
		FROM subcategories sc
		LEFT JOIN articles a ON a.subcategory_id = sc.id
		GROUP BY sc.id
		ORDER BY sc.sort_order, sc.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list subcategories for tree: %w", err)
	}
	defer rows.Close()

	byParent := make(map[uuid.UUID][]models.Subcategory)
	for rows.Next() {
		var sc models.Subcategory
		err := rows.Scan(
			&sc.ID, &sc.MainCategoryID, &sc.Name, &sc.Slug, &sc.Description,
			&sc.SortOrder, &sc.CreatedAt, &sc.UpdatedAt, &sc.ArticleCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		byParent[sc.MainCategoryID] = append(byParent[sc.MainCategoryID], sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cats {
		subs := byParent[cats[i].ID]
		cats[i].Subcategories = subs
		cats[i].SubcategoryCount = len(subs)
		// Public article counts only include published articles.
		total := 0
		for _, sc := range subs {
			total += sc.ArticleCount
		}
		cats[i].ArticleCount = total
	}
	return cats, nil
}

// FindByID retrieves a main category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.MainCategory, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM main_categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a main category by its public slug. Returns nil if
// not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.MainCategory, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM main_categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new main category and returns it.
// Returns ErrDuplicateSlug if the slug is taken.
func (s *CategoryStore) Create(c *models.MainCategory) (*models.MainCategory, error) {
	row := s.db.QueryRow(`
		INSERT INTO main_categories (name, slug, description, icon, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.Icon, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing main category.
// Returns ErrDuplicateSlug if the new slug collides with another category.
func (s *CategoryStore) Update(c *models.MainCategory) error {
	_, err := s.db.Exec(`
		UPDATE main_categories SET
			name = $1, slug = $2, description = $3, icon = $4,
			sort_order = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Name, c.Slug, c.Description, c.Icon, c.SortOrder, c.ID)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a main category by ID. The ON DELETE CASCADE constraints
// remove all descendant subcategories and articles in the same transaction,
// so the subtree never ends up partially deleted.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM main_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
