// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kbpress/internal/cache"
	"kbpress/internal/models"
	"kbpress/internal/sanitize"
	"kbpress/internal/slug"
	"kbpress/internal/store"
)

// AdminHandler serves the authenticated content-management endpoints:
// category, subcategory, and article CRUD plus dashboard stats.
type AdminHandler struct {
	categories    *store.CategoryStore
	subcategories *store.SubcategoryStore
	articles      *store.ArticleStore
	catalog       *cache.Catalog
}

// NewAdminHandler creates an AdminHandler. catalog may be nil when no
// cache is wired (tests).
func NewAdminHandler(
	categories *store.CategoryStore,
	subcategories *store.SubcategoryStore,
	articles *store.ArticleStore,
	catalog *cache.Catalog,
) *AdminHandler {
	return &AdminHandler{
		categories:    categories,
		subcategories: subcategories,
		articles:      articles,
		catalog:       catalog,
	}
}

// invalidateCatalog drops the cached public projections after a mutation.
func (h *AdminHandler) invalidateCatalog(r *http.Request) {
	if h.catalog != nil {
		h.catalog.Invalidate(r.Context())
	}
}

// urlUUID parses the {id} route parameter. Reports false after writing a
// 404, since an unparseable ID can never name an existing resource.
func urlUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w)
		return uuid.Nil, false
	}
	return id, true
}

// writeStoreError maps the store's constraint sentinels onto API errors.
// Returns false when err was nil and nothing was written.
func writeStoreError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, store.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, codeDuplicateSlug, "Slug is already in use.")
	case errors.Is(err, store.ErrParentNotFound):
		writeFieldError(w, codeParentNotFound, "Parent does not exist.", "")
	default:
		writeInternal(w, err)
	}
	return true
}

// --- Main categories ---

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`
}

// validate normalizes the request and derives the slug from the name when
// one was not supplied.
func (req *categoryRequest) validate() *fieldError {
	req.Name = strings.TrimSpace(req.Name)
	if ferr := validateName(req.Name); ferr != nil {
		return ferr
	}
	if ferr := validateSlug(req.Slug); ferr != nil {
		return ferr
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}
	if req.Slug == "" {
		return &fieldError{Field: "slug", Message: "A slug could not be derived from the name; provide one explicitly."}
	}
	return nil
}

// ListCategories returns every main category with admin counts.
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List()
	if err != nil {
		writeInternal(w, err)
		return
	}
	if cats == nil {
		cats = []models.MainCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// CreateCategory creates a main category.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if ferr := req.validate(); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}

	created, err := h.categories.Create(&models.MainCategory{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
	})
	if writeStoreError(w, err) {
		return
	}

	h.invalidateCatalog(r)
	writeJSON(w, http.StatusCreated, created)
}

// GetCategory returns a single main category by ID.
func (h *AdminHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if cat == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// UpdateCategory replaces a main category's fields.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	existing, err := h.categories.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if ferr := req.validate(); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}

	existing.Name = req.Name
	existing.Slug = req.Slug
	existing.Description = req.Description
	existing.Icon = req.Icon
	existing.SortOrder = req.SortOrder

	if writeStoreError(w, h.categories.Update(existing)) {
		return
	}

	h.invalidateCatalog(r)
	writeJSON(w, http.StatusOK, existing)
}

// DeleteCategory removes a main category and everything beneath it.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	existing, err := h.categories.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		writeInternal(w, err)
		return
	}

	h.invalidateCatalog(r)
	w.WriteHeader(http.StatusNoContent)
}

// --- Subcategories ---

type subcategoryRequest struct {
	MainCategoryID uuid.UUID `json:"main_category_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	SortOrder      int       `json:"sort_order"`
}

func (req *subcategoryRequest) validate() *fieldError {
	if req.MainCategoryID == uuid.Nil {
		return &fieldError{Field: "main_category_id", Message: "Parent category is required."}
	}
	req.Name = strings.TrimSpace(req.Name)
	if ferr := validateName(req.Name); ferr != nil {
		return ferr
	}
	if ferr := validateSlug(req.Slug); ferr != nil {
		return ferr
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	}
	if req.Slug == "" {
		return &fieldError{Field: "slug", Message: "A slug could not be derived from the name; provide one explicitly."}
	}
	return nil
}

// ListSubcategories returns subcategories, optionally filtered by parent
// via ?main_category_id=.
func (h *AdminHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	var parent *uuid.UUID
	if raw := r.URL.Query().Get("main_category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeFieldError(w, codeValidation, "Invalid main_category_id.", "main_category_id")
			return
		}
		parent = &id
	}

	subs, err := h.subcategories.List(parent)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if subs == nil {
		subs = []models.Subcategory{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// CreateSubcategory creates a subcategory under an existing main category.
func (h *AdminHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req subcategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if ferr := req.validate(); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}

	created, err := h.subcategories.Create(&models.Subcategory{
		MainCategoryID: req.MainCategoryID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		SortOrder:      req.SortOrder,
	})
	if writeStoreError(w, err) {
		return
	}

	h.invalidateCatalog(r)
	writeJSON(w, http.StatusCreated, created)
}

// GetSubcategory returns a single subcategory by ID.
func (h *AdminHandler) GetSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	sub, err := h.subcategories.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if sub == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// UpdateSubcategory replaces a subcategory's fields, including moving it
// to a different parent.
func (h *AdminHandler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	existing, err := h.subcategories.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	var req subcategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if ferr := req.validate(); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}

	existing.MainCategoryID = req.MainCategoryID
	existing.Name = req.Name
	existing.Slug = req.Slug
	existing.Description = req.Description
	existing.SortOrder = req.SortOrder

	if writeStoreError(w, h.subcategories.Update(existing)) {
		return
	}

	h.invalidateCatalog(r)
	writeJSON(w, http.StatusOK, existing)
}

// DeleteSubcategory removes a subcategory and its articles.
func (h *AdminHandler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	existing, err := h.subcategories.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	if err := h.subcategories.Delete(id); err != nil {
		writeInternal(w, err)
		return
	}

	h.invalidateCatalog(r)
	w.WriteHeader(http.StatusNoContent)
}

// --- Articles ---

type articleRequest struct {
	SubcategoryID uuid.UUID `json:"subcategory_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	Status        string    `json:"status"`
	Tags          []string  `json:"tags"`
	SortOrder     int       `json:"sort_order"`
}

// validate normalizes the request: trims the title, defaults the status to
// draft, derives a slug from the title when absent, and sanitizes the HTML
// content. Sanitization happens here so nothing downstream ever sees raw
// editor input.
func (req *articleRequest) validate() *fieldError {
	if req.SubcategoryID == uuid.Nil {
		return &fieldError{Field: "subcategory_id", Message: "Subcategory is required."}
	}
	req.Title = strings.TrimSpace(req.Title)
	if ferr := validateTitle(req.Title); ferr != nil {
		return ferr
	}
	if ferr := validateSlug(req.Slug); ferr != nil {
		return ferr
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}
	if req.Slug == "" {
		return &fieldError{Field: "slug", Message: "A slug could not be derived from the title; provide one explicitly."}
	}
	if ferr := validateExcerpt(req.Excerpt); ferr != nil {
		return ferr
	}
	if ferr := validateContent(req.Content); ferr != nil {
		return ferr
	}
	if req.Status == "" {
		req.Status = string(models.ArticleStatusDraft)
	}
	if !models.ArticleStatus(req.Status).Valid() {
		return &fieldError{Field: "status", Message: "Status must be draft or published."}
	}
	req.Content = sanitize.HTML(req.Content)
	return nil
}

func (req *articleRequest) toModel() *models.Article {
	return &models.Article{
		SubcategoryID: req.SubcategoryID,
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Status:        models.ArticleStatus(req.Status),
		Tags:          req.Tags,
		SortOrder:     req.SortOrder,
	}
}

// ListArticles returns articles for the admin list, filtered by the
// optional ?status=, ?subcategory_id=, and ?search= query parameters.
func (h *AdminHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter store.Filter
	if raw := q.Get("status"); raw != "" {
		status := models.ArticleStatus(raw)
		if !status.Valid() {
			writeFieldError(w, codeValidation, "Status must be draft or published.", "status")
			return
		}
		filter.Status = status
	}
	if raw := q.Get("subcategory_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeFieldError(w, codeValidation, "Invalid subcategory_id.", "subcategory_id")
			return
		}
		filter.SubcategoryID = &id
	}
	filter.Search = strings.TrimSpace(q.Get("search"))

	items, err := h.articles.List(filter)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if items == nil {
		items = []models.ArticleWithContext{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetArticle returns a single article by ID, drafts included.
func (h *AdminHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	article, err := h.articles.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if article == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// CreateArticle creates an article, defaulting to draft status.
func (h *AdminHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if ferr := req.validate(); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}

	created, err := h.articles.Create(req.toModel())
	if writeStoreError(w, err) {
		return
	}

	h.invalidateCatalog(r)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateArticle replaces an article's fields. Publishing and unpublishing
// are just a status change on this endpoint.
func (h *AdminHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	existing, err := h.articles.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid JSON body.")
		return
	}
	if ferr := req.validate(); ferr != nil {
		writeFieldError(w, codeValidation, ferr.Message, ferr.Field)
		return
	}

	updated := req.toModel()
	updated.ID = existing.ID

	if writeStoreError(w, h.articles.Update(updated)) {
		return
	}

	h.invalidateCatalog(r)

	// Re-read so the response carries fresh ancestor names and timestamps.
	result, err := h.articles.FindByID(existing.ID)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteArticle removes an article permanently.
func (h *AdminHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	existing, err := h.articles.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if existing == nil {
		writeNotFound(w)
		return
	}

	if err := h.articles.Delete(id); err != nil {
		writeInternal(w, err)
		return
	}

	h.invalidateCatalog(r)
	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns the aggregate dashboard counters.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.articles.Stats()
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
