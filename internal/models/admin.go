// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the domain types shared by the store,
// handlers, and cache layers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is an administrator account. Credentials and the TOTP secret
// never appear in API responses.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	TOTPSecret   *string   `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasTOTP reports whether the account has an active second factor.
func (a *Admin) HasTOTP() bool {
	return a.TOTPEnabled && a.TOTPSecret != nil && *a.TOTPSecret != ""
}
