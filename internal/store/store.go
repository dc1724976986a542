// Package store provides database access methods for all KBPress entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
//
// Conventions: lookups return (nil, nil) when no row matches; constraint
// violations surface as the sentinel errors below so handlers can map them
// to API error codes without string matching.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicateSlug is returned when a write collides with an existing
	// slug (unique or per-parent unique constraint).
	ErrDuplicateSlug = errors.New("slug already exists")

	// ErrParentNotFound is returned when a child row references a parent
	// that does not exist.
	ErrParentNotFound = errors.New("parent not found")
)

// PostgreSQL error codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateConstraint maps PostgreSQL constraint violations to sentinel
// errors. Returns nil if err is not a recognized constraint violation.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrDuplicateSlug
	case pgForeignKeyViolation:
		return ErrParentNotFound
	}
	return nil
}
