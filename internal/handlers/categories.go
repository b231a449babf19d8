// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"threadpress/internal/models"
	"threadpress/internal/store"
)

// defaultTagLimit is the size of the tag cloud when ?limit= is absent.
const defaultTagLimit = 20

// CategoryTreeLoader loads the category hierarchy.
type CategoryTreeLoader interface {
	Tree(ctx context.Context) (*store.CategoryTree, error)
}

// CategoryArticleLister lists published articles filed under categories.
type CategoryArticleLister interface {
	ListPublishedInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]models.Article, error)
}

// TagCloud lists tags by the number of published articles carrying them.
type TagCloud interface {
	Popular(ctx context.Context, n int) ([]models.Tag, error)
}

// Catalog groups the category and tag browsing endpoints.
type Catalog struct {
	categories CategoryTreeLoader
	articles   CategoryArticleLister
	tags       TagCloud
}

// NewCatalog creates the catalog handler group.
func NewCatalog(categories CategoryTreeLoader, articles CategoryArticleLister, tags TagCloud) *Catalog {
	return &Catalog{categories: categories, articles: articles, tags: tags}
}

// Categories returns every category in display order: pre-order, siblings
// by title, each row carrying its depth.
func (c *Catalog) Categories(w http.ResponseWriter, r *http.Request) {
	t, err := c.categories.Tree(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Flat())
}

// CategoryArticles returns the published articles of a category and all
// of its subcategories.
func (c *Catalog) CategoryArticles(w http.ResponseWriter, r *http.Request) {
	t, err := c.categories.Tree(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	cat, ok := t.BySlug(chi.URLParam(r, "slug"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	items, err := c.articles.ListPublishedInCategories(r.Context(), t.SubtreeIDs(cat.ID))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": cat,
		"articles": summarize(items),
	})
}

// PopularTags returns the tag cloud.
func (c *Catalog) PopularTags(w http.ResponseWriter, r *http.Request) {
	n, ok := limitParam(r, defaultTagLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	tags, err := c.tags.Popular(r.Context(), n)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}
