// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"kbpress/internal/cache"
	"kbpress/internal/models"
	"kbpress/internal/store"
)

// PublicHandler serves the unauthenticated reader endpoints. Only
// published content is ever visible here; drafts behave as nonexistent.
type PublicHandler struct {
	categories    *store.CategoryStore
	subcategories *store.SubcategoryStore
	articles      *store.ArticleStore
	catalog       *cache.Catalog
	searchMin     int
	searchLimit   int
}

// NewPublicHandler creates a PublicHandler. catalog may be nil (tests).
func NewPublicHandler(
	categories *store.CategoryStore,
	subcategories *store.SubcategoryStore,
	articles *store.ArticleStore,
	catalog *cache.Catalog,
	searchMin, searchLimit int,
) *PublicHandler {
	return &PublicHandler{
		categories:    categories,
		subcategories: subcategories,
		articles:      articles,
		catalog:       catalog,
		searchMin:     searchMin,
		searchLimit:   searchLimit,
	}
}

// writeRawJSON writes pre-serialized JSON, used for cached projections.
func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		slog.Error("response write failed", "error", err)
	}
}

// ListCategories returns the full published catalog tree: every main
// category with its subcategories nested and published article counts.
func (h *PublicHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.catalog != nil {
		if cached, ok := h.catalog.Get(ctx, cache.TreeKey()); ok {
			writeRawJSON(w, http.StatusOK, cached)
			return
		}
	}

	tree, err := h.categories.PublishedTree()
	if err != nil {
		writeInternal(w, err)
		return
	}
	if tree == nil {
		tree = []models.MainCategory{}
	}

	payload, err := json.Marshal(tree)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if h.catalog != nil {
		h.catalog.Set(ctx, cache.TreeKey(), payload)
	}
	writeRawJSON(w, http.StatusOK, payload)
}

// GetCategoryBySlug returns a single main category with its subcategories
// and published article counts. A category with no subcategories is still
// a 200 with an empty list.
func (h *PublicHandler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	catSlug := chi.URLParam(r, "slug")

	if h.catalog != nil {
		if cached, ok := h.catalog.Get(ctx, cache.CategoryKey(catSlug)); ok {
			writeRawJSON(w, http.StatusOK, cached)
			return
		}
	}

	tree, err := h.categories.PublishedTree()
	if err != nil {
		writeInternal(w, err)
		return
	}

	var found *models.MainCategory
	for i := range tree {
		if tree[i].Slug == catSlug {
			found = &tree[i]
			break
		}
	}
	if found == nil {
		writeNotFound(w)
		return
	}
	if found.Subcategories == nil {
		found.Subcategories = []models.Subcategory{}
	}

	payload, err := json.Marshal(found)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if h.catalog != nil {
		h.catalog.Set(ctx, cache.CategoryKey(catSlug), payload)
	}
	writeRawJSON(w, http.StatusOK, payload)
}

type subcategoryArticlesResponse struct {
	Subcategory *models.Subcategory         `json:"subcategory"`
	Articles    []models.ArticleWithContext `json:"articles"`
}

// ListArticlesInSubcategory returns the published articles under a
// subcategory addressed by slug. An empty subcategory is a 200 with an
// empty article list, not a 404.
func (h *PublicHandler) ListArticlesInSubcategory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subcategories.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		writeInternal(w, err)
		return
	}
	if sub == nil {
		writeNotFound(w)
		return
	}

	articles, err := h.articles.ListPublishedBySubcategory(sub.ID)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if articles == nil {
		articles = []models.ArticleWithContext{}
	}
	sub.ArticleCount = len(articles)

	writeJSON(w, http.StatusOK, subcategoryArticlesResponse{
		Subcategory: sub,
		Articles:    articles,
	})
}

type publicArticleResponse struct {
	*models.ArticleWithContext
	Subcategory  models.CategoryRef `json:"subcategory"`
	MainCategory models.CategoryRef `json:"main_category"`
}

// GetArticleBySlug returns a published article with its breadcrumb refs
// and counts the read. The response carries the post-increment view count.
func (h *PublicHandler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.FindPublishedBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		writeInternal(w, err)
		return
	}
	if article == nil {
		writeNotFound(w)
		return
	}

	views, err := h.articles.IncrementViews(article.ID)
	if err != nil {
		// Serve the article anyway; losing one count beats a 500.
		slog.Warn("view increment failed", "article", article.ID, "error", err)
	} else {
		article.Views = views
	}

	writeJSON(w, http.StatusOK, publicArticleResponse{
		ArticleWithContext: article,
		Subcategory:        article.SubcategoryRef(),
		MainCategory:       article.MainCategoryRef(),
	})
}

type searchResponse struct {
	Query   string                      `json:"query"`
	Results []models.ArticleWithContext `json:"results"`
	Total   int                         `json:"total"`
}

// Search finds published articles matching ?q= in their title, excerpt,
// or content. A query shorter than the configured minimum is an empty
// result set, never an error and never a full-table match.
func (h *PublicHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(query) < h.searchMin {
		writeJSON(w, http.StatusOK, searchResponse{
			Query:   query,
			Results: []models.ArticleWithContext{},
			Total:   0,
		})
		return
	}

	results, err := h.articles.Search(query, h.searchLimit)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if results == nil {
		results = []models.ArticleWithContext{}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Results: results,
		Total:   len(results),
	})
}
