// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router assembles the HTTP route tree.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kbpress/internal/handlers"
	"kbpress/internal/middleware"
)

// Rate limits for the anonymous endpoints. Login is kept tight against
// credential stuffing; search is looser but still bounded.
const (
	loginRateLimit  = 10
	searchRateLimit = 30
	rateLimitWindow = time.Minute
)

// Deps carries everything the route tree needs.
type Deps struct {
	Auth        *handlers.AuthHandler
	Admin       *handlers.AdminHandler
	Media       *handlers.MediaHandler
	Public      *handlers.PublicHandler
	RequireAuth func(http.Handler) http.Handler
}

// New builds the chi router with all public and admin routes mounted
// under /api/kb.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	loginLimiter := middleware.NewRateLimiter(loginRateLimit, rateLimitWindow)
	searchLimiter := middleware.NewRateLimiter(searchRateLimit, rateLimitWindow)

	r.Route("/api/kb", func(r chi.Router) {
		// Public reader endpoints. Published content only.
		r.Get("/categories", d.Public.ListCategories)
		r.Get("/categories/{slug}", d.Public.GetCategoryBySlug)
		r.Get("/subcategories/{slug}/articles", d.Public.ListArticlesInSubcategory)
		r.Get("/articles/{slug}", d.Public.GetArticleBySlug)
		r.With(searchLimiter.Middleware).Get("/search", d.Public.Search)

		r.Route("/admin", func(r chi.Router) {
			// The only two admin routes reachable without a token.
			r.Post("/setup", d.Auth.Setup)
			r.With(loginLimiter.Middleware).Post("/login", d.Auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(d.RequireAuth)

				r.Get("/me", d.Auth.Me)
				r.Put("/password", d.Auth.ChangePassword)
				r.Post("/2fa/setup", d.Auth.TwoFASetup)
				r.Post("/2fa/enable", d.Auth.TwoFAEnable)
				r.Post("/2fa/disable", d.Auth.TwoFADisable)

				r.Get("/stats", d.Admin.GetStats)

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", d.Admin.ListCategories)
					r.Post("/", d.Admin.CreateCategory)
					r.Get("/{id}", d.Admin.GetCategory)
					r.Put("/{id}", d.Admin.UpdateCategory)
					r.Delete("/{id}", d.Admin.DeleteCategory)
				})

				r.Route("/subcategories", func(r chi.Router) {
					r.Get("/", d.Admin.ListSubcategories)
					r.Post("/", d.Admin.CreateSubcategory)
					r.Get("/{id}", d.Admin.GetSubcategory)
					r.Put("/{id}", d.Admin.UpdateSubcategory)
					r.Delete("/{id}", d.Admin.DeleteSubcategory)
				})

				r.Route("/articles", func(r chi.Router) {
					r.Get("/", d.Admin.ListArticles)
					r.Post("/", d.Admin.CreateArticle)
					r.Get("/{id}", d.Admin.GetArticle)
					r.Put("/{id}", d.Admin.UpdateArticle)
					r.Delete("/{id}", d.Admin.DeleteArticle)
				})

				r.Post("/upload", d.Media.Upload)
				r.Route("/media", func(r chi.Router) {
					r.Get("/", d.Media.List)
					r.Get("/{id}", d.Media.Get)
					r.Delete("/{id}", d.Media.Delete)
				})
			})
		})
	})

	return r
}
