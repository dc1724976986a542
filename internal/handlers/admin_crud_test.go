package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"kbpress/internal/models"
)

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/kb/admin/me"},
		{http.MethodGet, "/api/kb/admin/stats"},
		{http.MethodGet, "/api/kb/admin/categories/"},
		{http.MethodPost, "/api/kb/admin/articles/"},
		{http.MethodDelete, "/api/kb/admin/categories/" + uuid.New().String()},
	}

	for _, route := range protected {
		rec := env.request(t, route.method, route.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

func TestCategoryCRUDOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	tok := env.adminToken(t)

	// Create with no slug: one is derived from the name.
	rec := env.request(t, http.MethodPost, "/api/kb/admin/categories/", tok, map[string]any{
		"name":        "Frequently Asked Questions " + uuid.New().String()[:8],
		"description": "Answers to common questions",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want 201: %s", rec.Code, rec.Body.String())
	}
	created := decode[models.MainCategory](t, rec)
	t.Cleanup(func() { env.cats.Delete(created.ID) })

	if created.Slug == "" {
		t.Fatal("slug was not derived from the name")
	}

	// Duplicate slug is a 409.
	rec = env.request(t, http.MethodPost, "/api/kb/admin/categories/", tok, map[string]any{
		"name": "Impostor",
		"slug": created.Slug,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: got %d, want 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "duplicate_slug" {
		t.Errorf("error code = %q, want duplicate_slug", code)
	}

	// Update.
	rec = env.request(t, http.MethodPut, "/api/kb/admin/categories/"+created.ID.String(), tok, map[string]any{
		"name":       "Renamed FAQ",
		"slug":       created.Slug,
		"sort_order": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	updated := decode[models.MainCategory](t, rec)
	if updated.Name != "Renamed FAQ" || updated.SortOrder != 3 {
		t.Errorf("update not reflected: %+v", updated)
	}

	// Delete.
	rec = env.request(t, http.MethodDelete, "/api/kb/admin/categories/"+created.ID.String(), tok, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d, want 204", rec.Code)
	}
	rec = env.request(t, http.MethodDelete, "/api/kb/admin/categories/"+created.ID.String(), tok, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("re-delete: got %d, want 404", rec.Code)
	}
}

func TestCategoryValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.adminToken(t)

	rec := env.request(t, http.MethodPost, "/api/kb/admin/categories/", tok, map[string]any{
		"name": "",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty name: got %d, want 422", rec.Code)
	}
	if code := errorCode(t, rec); code != "validation_error" {
		t.Errorf("error code = %q, want validation_error", code)
	}
}

func TestSubcategoryParentChecks(t *testing.T) {
	env := newTestEnv(t)
	tok := env.adminToken(t)

	rec := env.request(t, http.MethodPost, "/api/kb/admin/subcategories/", tok, map[string]any{
		"main_category_id": uuid.New().String(),
		"name":             "Orphan Child",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing parent: got %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "parent_not_found" {
		t.Errorf("error code = %q, want parent_not_found", code)
	}
}

func TestArticleCreatePublishLifecycle(t *testing.T) {
	env := newTestEnv(t)
	tok := env.adminToken(t)
	cat, sub := env.seedHierarchy(t)

	// Created without status: defaults to draft. Script tags in the
	// content never survive ingestion.
	rec := env.request(t, http.MethodPost, "/api/kb/admin/articles/", tok, map[string]any{
		"subcategory_id": sub.ID.String(),
		"title":          "Lifecycle Article " + uuid.New().String()[:8],
		"content":        `<p>safe</p><script>alert(1)</script>`,
		"tags":           []string{"guide"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, want 201: %s", rec.Code, rec.Body.String())
	}
	article := decode[models.ArticleWithContext](t, rec)

	if article.Status != models.ArticleStatusDraft {
		t.Errorf("status = %q, want draft", article.Status)
	}
	if article.Slug == "" {
		t.Error("slug was not derived from the title")
	}
	for _, c := range []string{"<script", "alert"} {
		if strings.Contains(article.Content, c) {
			t.Errorf("content retained %q after sanitization: %s", c, article.Content)
		}
	}

	// Drafts are invisible on the public route.
	rec = env.request(t, http.MethodGet, "/api/kb/articles/"+article.Slug, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("public draft read: got %d, want 404", rec.Code)
	}

	// Publish via update.
	rec = env.request(t, http.MethodPut, "/api/kb/admin/articles/"+article.ID.String(), tok, map[string]any{
		"subcategory_id": sub.ID.String(),
		"title":          article.Title,
		"slug":           article.Slug,
		"content":        article.Content,
		"status":         "published",
		"tags":           article.Tags,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// Now it resolves publicly, and the first read counts one view.
	rec = env.request(t, http.MethodGet, "/api/kb/articles/"+article.Slug, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public read: got %d, want 200", rec.Code)
	}
	public := decode[struct {
		models.ArticleWithContext
		Subcategory  models.CategoryRef `json:"subcategory"`
		MainCategory models.CategoryRef `json:"main_category"`
	}](t, rec)
	if public.Views != 1 {
		t.Errorf("views = %d, want 1 after first read", public.Views)
	}
	if public.Subcategory.ID != sub.ID || public.Subcategory.Slug != sub.Slug {
		t.Errorf("subcategory breadcrumb = %+v, want %s/%s", public.Subcategory, sub.ID, sub.Slug)
	}
	if public.MainCategory.ID != cat.ID || public.MainCategory.Slug != cat.Slug {
		t.Errorf("main category breadcrumb = %+v, want %s/%s", public.MainCategory, cat.ID, cat.Slug)
	}
}

func TestMediaEndpoints(t *testing.T) {
	env := newTestEnv(t)
	tok := env.adminToken(t)

	rec := env.request(t, http.MethodGet, "/api/kb/admin/media/"+uuid.New().String(), tok, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown media: got %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "not_found" {
		t.Errorf("error code = %q, want not_found", code)
	}

	rec = env.request(t, http.MethodGet, "/api/kb/admin/media/", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list media: got %d, want 200", rec.Code)
	}
	listing := decode[struct {
		Items []models.Media `json:"items"`
		Total int            `json:"total"`
	}](t, rec)
	if listing.Total < len(listing.Items) {
		t.Errorf("total %d below page size %d", listing.Total, len(listing.Items))
	}
}

func TestArticleRejectsBadStatus(t *testing.T) {
	env := newTestEnv(t)
	tok := env.adminToken(t)
	_, sub := env.seedHierarchy(t)

	rec := env.request(t, http.MethodPost, "/api/kb/admin/articles/", tok, map[string]any{
		"subcategory_id": sub.ID.String(),
		"title":          "Bad Status",
		"status":         "archived",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d, want 422", rec.Code)
	}
}

func TestStatsTrackHierarchy(t *testing.T) {
	env := newTestEnv(t)
	tok := env.adminToken(t)

	before := decode[map[string]int64](t, env.request(t, http.MethodGet, "/api/kb/admin/stats", tok, nil))

	cat, sub := env.seedHierarchy(t)
	rec := env.request(t, http.MethodPost, "/api/kb/admin/articles/", tok, map[string]any{
		"subcategory_id": sub.ID.String(),
		"title":          "Stat Article " + uuid.New().String()[:8],
		"status":         "published",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create article: got %d: %s", rec.Code, rec.Body.String())
	}

	during := decode[map[string]int64](t, env.request(t, http.MethodGet, "/api/kb/admin/stats", tok, nil))
	if during["total_categories"] != before["total_categories"]+1 {
		t.Errorf("categories: %d, want %d", during["total_categories"], before["total_categories"]+1)
	}
	if during["published_articles"] != before["published_articles"]+1 {
		t.Errorf("published: %d, want %d", during["published_articles"], before["published_articles"]+1)
	}

	// Deleting the category takes the whole subtree with it.
	rec = env.request(t, http.MethodDelete, "/api/kb/admin/categories/"+cat.ID.String(), tok, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete category: got %d, want 204", rec.Code)
	}

	after := decode[map[string]int64](t, env.request(t, http.MethodGet, "/api/kb/admin/stats", tok, nil))
	if after["total_articles"] != before["total_articles"] {
		t.Errorf("articles after cascade: %d, want %d", after["total_articles"], before["total_articles"])
	}
	if after["total_subcategories"] != before["total_subcategories"] {
		t.Errorf("subcategories after cascade: %d, want %d", after["total_subcategories"], before["total_subcategories"])
	}
}
