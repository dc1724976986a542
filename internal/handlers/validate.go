// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"
)

// Field limits for user-supplied content. Measured in runes so multi-byte
// input is not penalized.
const (
	maxNameLen     = 200
	maxTitleLen    = 300
	maxSlugLen     = 300
	maxExcerptLen  = 1000
	maxContentLen  = 100_000
	minPasswordLen = 6
	maxUsernameLen = 100
)

// fieldError carries a validation failure for a single request field.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string {
	return e.Field + ": " + e.Message
}

// validateName checks a category or subcategory display name.
func validateName(name string) *fieldError {
	name = strings.TrimSpace(name)
	if name == "" {
		return &fieldError{Field: "name", Message: "Name is required."}
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return &fieldError{Field: "name", Message: "Name must be at most 200 characters."}
	}
	return nil
}

// validateTitle checks an article title.
func validateTitle(title string) *fieldError {
	title = strings.TrimSpace(title)
	if title == "" {
		return &fieldError{Field: "title", Message: "Title is required."}
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return &fieldError{Field: "title", Message: "Title must be at most 300 characters."}
	}
	return nil
}

// validateSlug checks an explicitly supplied slug. An empty slug is valid
// here because handlers derive one from the name or title when absent.
func validateSlug(slug string) *fieldError {
	if slug == "" {
		return nil
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return &fieldError{Field: "slug", Message: "Slug must be at most 300 characters."}
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return &fieldError{Field: "slug", Message: "Slug may only contain lowercase letters, digits, and hyphens."}
		}
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return &fieldError{Field: "slug", Message: "Slug may not start or end with a hyphen."}
	}
	return nil
}

// validateExcerpt checks an optional article excerpt.
func validateExcerpt(excerpt string) *fieldError {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return &fieldError{Field: "excerpt", Message: "Excerpt must be at most 1000 characters."}
	}
	return nil
}

// validateContent checks article body content.
func validateContent(content string) *fieldError {
	if utf8.RuneCountInString(content) > maxContentLen {
		return &fieldError{Field: "content", Message: "Content must be at most 100000 characters."}
	}
	return nil
}

// validatePassword enforces the minimum password length.
func validatePassword(password string) *fieldError {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return &fieldError{Field: "password", Message: "Password must be at least 6 characters."}
	}
	return nil
}

// validateUsername checks an admin username.
func validateUsername(username string) *fieldError {
	username = strings.TrimSpace(username)
	if username == "" {
		return &fieldError{Field: "username", Message: "Username is required."}
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return &fieldError{Field: "username", Message: "Username must be at most 100 characters."}
	}
	return nil
}
