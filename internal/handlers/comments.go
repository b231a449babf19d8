// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"threadpress/internal/discussion"
	"threadpress/internal/middleware"
	"threadpress/internal/models"
)

// defaultLatestLimit is the number of comments in the "latest" feed.
const defaultLatestLimit = 5

// Discussion is the comment thread behind the comment endpoints.
type Discussion interface {
	Post(ctx context.Context, articleID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*discussion.Posted, error)
	ListVisible(ctx context.Context, articleID uuid.UUID) ([]discussion.Entry, error)
	Latest(ctx context.Context, n int) ([]models.Comment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error
}

// PublishedArticleFinder resolves article slugs.
type PublishedArticleFinder interface {
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Article, error)
}

// Comments groups the discussion endpoints.
type Comments struct {
	thread   Discussion
	articles PublishedArticleFinder
}

// NewComments creates the comment handler group.
func NewComments(thread Discussion, articles PublishedArticleFinder) *Comments {
	return &Comments{thread: thread, articles: articles}
}

// List returns the visible comments of an article in thread order, each
// with its depth.
func (c *Comments) List(w http.ResponseWriter, r *http.Request) {
	article, ok := c.article(w, r)
	if !ok {
		return
	}

	entries, err := c.thread.ListVisible(r.Context(), article.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []discussion.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Create posts a comment, or a reply when parent_id is given, as the
// session's user. Requires RequireSession upstream.
func (c *Comments) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	article, ok := c.article(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	posted, err := c.thread.Post(r.Context(), article.ID, sess.UserID, req.Content, req.ParentID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, posted)
}

// Latest returns the newest published comments across all articles.
func (c *Comments) Latest(w http.ResponseWriter, r *http.Request) {
	n, ok := limitParam(r, defaultLatestLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	items, err := c.thread.Latest(r.Context(), n)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if items == nil {
		items = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, items)
}

// SetStatus publishes or hides a comment. Hiding a comment also hides the
// replies beneath it from public listings.
func (c *Comments) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validationMessage(req); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if err := c.thread.SetStatus(r.Context(), id, req.Status); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Comments) article(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	article, err := c.articles.FindPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleError(w, r, err)
		return nil, false
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return article, true
}
