// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"kbpress/internal/models"
	"kbpress/internal/store"
	"kbpress/internal/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// adminKey is the context key for the authenticated admin.
const adminKey contextKey = "admin"

// RequireAuth authenticates requests via the Authorization bearer header.
// The token must verify and resolve to an existing admin; anything else
// gets a uniform 401 so callers discard their cached token. The admin is
// stored in the request context for downstream handlers.
func RequireAuth(tokens *token.Manager, admins *store.AdminStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthenticated(w)
				return
			}

			adminID, err := tokens.Verify(raw)
			if err != nil {
				unauthenticated(w)
				return
			}

			admin, err := admins.FindByID(adminID)
			if err != nil {
				slog.Error("auth admin lookup failed", "error", err)
				unauthenticated(w)
				return
			}
			if admin == nil {
				// Token outlived the account it was issued for.
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromCtx extracts the authenticated admin from the request context.
// Returns nil outside a RequireAuth-protected route.
func AdminFromCtx(ctx context.Context) *models.Admin {
	admin, _ := ctx.Value(adminKey).(*models.Admin)
	return admin
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" for a missing or malformed header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// unauthenticated writes the 401 error body shared by every gated route.
func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"unauthenticated","message":"Missing or invalid bearer token."}}`))
}
