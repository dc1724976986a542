package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kbpress/internal/models"
)

// AdminStore handles all admin-account database operations.
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new AdminStore with the given database connection.
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

const adminColumns = `id, username, password_hash, totp_secret, totp_enabled, created_at, updated_at`

func scanAdmin(scanner interface{ Scan(...any) error }) (*models.Admin, error) {
	var a models.Admin
	err := scanner.Scan(
		&a.ID, &a.Username, &a.PasswordHash,
		&a.TOTPSecret, &a.TOTPEnabled, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Count returns the number of admin accounts. The setup endpoint uses this
// as its one-time guard.
func (s *AdminStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// FindByUsername retrieves an admin by username. Returns nil if not found.
func (s *AdminStore) FindByUsername(username string) (*models.Admin, error) {
	row := s.db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE username = $1`, username)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return a, nil
}

// FindByID retrieves an admin by UUID. Returns nil if not found.
func (s *AdminStore) FindByID(id uuid.UUID) (*models.Admin, error) {
	row := s.db.QueryRow(`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return a, nil
}

// Create inserts a new admin with a bcrypt-hashed password.
func (s *AdminStore) Create(username, password string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		RETURNING `+adminColumns,
		username, string(hash),
	)
	a, err := scanAdmin(row)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

// setupLockID keys the advisory lock that serializes first-admin creation.
const setupLockID = 0x6b627072

// CreateFirst inserts the initial admin account, but only while the admins
// table is empty. The count check and the insert run in one transaction
// under an advisory lock, so two concurrent setup calls cannot both
// succeed. Returns nil, nil when an admin already exists.
func (s *AdminStore) CreateFirst(username, password string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create first admin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, setupLockID); err != nil {
		return nil, fmt.Errorf("acquire setup lock: %w", err)
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	row := tx.QueryRow(`
		INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		RETURNING `+adminColumns,
		username, string(hash),
	)
	a, err := scanAdmin(row)
	if err != nil {
		return nil, fmt.Errorf("create first admin: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create first admin: %w", err)
	}
	return a, nil
}

// CheckPassword verifies a plaintext password against the admin's stored hash.
func (s *AdminStore) CheckPassword(admin *models.Admin, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil
}

// UpdatePassword re-hashes and stores a new password for the admin.
func (s *AdminStore) UpdatePassword(id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE admins SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for an admin (during 2FA setup).
// The factor is not active until EnableTOTP is called.
func (s *AdminStore) SetTOTPSecret(id uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE admins SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, id)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active (after successful code verification).
func (s *AdminStore) EnableTOTP(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE admins SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// DisableTOTP clears the TOTP secret and deactivates the second factor.
func (s *AdminStore) DisableTOTP(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE admins SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("disable totp: %w", err)
	}
	return nil
}
