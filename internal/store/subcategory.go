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

// SubcategoryStore manages subcategories in the database.
type SubcategoryStore struct {
	db *sql.DB
}

// NewSubcategoryStore returns a new SubcategoryStore.
func NewSubcategoryStore(db *sql.DB) *SubcategoryStore {
	return &SubcategoryStore{db: db}
}

const subcategoryColumns = `id, main_category_id, name, slug, description, sort_order, created_at, updated_at`

func scanSubcategory(scanner interface{ Scan(...any) error }) (*models.Subcategory, error) {
	var sc models.Subcategory
	err := scanner.Scan(
		&sc.ID, &sc.MainCategoryID, &sc.Name, &sc.Slug, &sc.Description,
		&sc.SortOrder, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// List returns subcategories ordered by sort_order then name, with article
// counts across all statuses. Pass a non-nil mainCategoryID to filter by
// parent. Used by the admin API.
func (s *SubcategoryStore) List(mainCategoryID *uuid.UUID) ([]models.Subcategory, error) {
	query := `
		SELECT sc.id, sc.main_category_id, sc.name, sc.slug, sc.description,
		       sc.sort_order, sc.created_at, sc.updated_at,
		       COUNT(a.id) AS article_count
		FROM subcategories sc
		LEFT JOIN articles a ON a.subcategory_id = sc.id
	`
	var args []any
	if mainCategoryID != nil {
		query += ` WHERE sc.main_category_id = $1`
		args = append(args, *mainCategoryID)
	}
	query += ` GROUP BY sc.id ORDER BY sc.sort_order, sc.name`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var items []models.Subcategory
	for rows.Next() {
		var sc models.Subcategory
		err := rows.Scan(
			&sc.ID, &sc.MainCategoryID, &sc.Name, &sc.Slug, &sc.Description,
			&sc.SortOrder, &sc.CreatedAt, &sc.UpdatedAt, &sc.ArticleCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}

// FindByID retrieves a subcategory by ID. Returns nil if not found.
func (s *SubcategoryStore) FindByID(id uuid.UUID) (*models.Subcategory, error) {
	row := s.db.QueryRow(`SELECT `+subcategoryColumns+` FROM subcategories WHERE id = $1`, id)
	sc, err := scanSubcategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory by id: %w", err)
	}
	return sc, nil
}

// FindBySlug retrieves a subcategory by its slug. Subcategory slugs are
// only unique within a parent, but the public listing route addresses them
// bare; the first match in sort order wins for the rare cross-category
// collision.
func (s *SubcategoryStore) FindBySlug(slug string) (*models.Subcategory, error) {
	row := s.db.QueryRow(`
		SELECT `+subcategoryColumns+` FROM subcategories
		WHERE slug = $1
		ORDER BY sort_order, name
		LIMIT 1
	`, slug)
	sc, err := scanSubcategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory by slug: %w", err)
	}
	return sc, nil
}

// Create inserts a new subcategory and returns it.
// Returns ErrParentNotFound if the main category does not exist and
// ErrDuplicateSlug if the slug is taken within the parent.
func (s *SubcategoryStore) Create(sc *models.Subcategory) (*models.Subcategory, error) {
	row := s.db.QueryRow(`
		INSERT INTO subcategories (main_category_id, name, slug, description, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+subcategoryColumns,
		sc.MainCategoryID, sc.Name, sc.Slug, sc.Description, sc.SortOrder,
	)
	result, err := scanSubcategory(row)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("create subcategory: %w", err)
	}
	return result, nil
}

// Update modifies an existing subcategory.
func (s *SubcategoryStore) Update(sc *models.Subcategory) error {
	_, err := s.db.Exec(`
		UPDATE subcategories SET
			main_category_id = $1, name = $2, slug = $3, description = $4,
			sort_order = $5, updated_at = NOW()
		WHERE id = $6
	`, sc.MainCategoryID, sc.Name, sc.Slug, sc.Description, sc.SortOrder, sc.ID)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update subcategory: %w", err)
	}
	return nil
}

// Delete removes a subcategory by ID. Articles underneath cascade in the
// same transaction.
func (s *SubcategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	return nil
}
