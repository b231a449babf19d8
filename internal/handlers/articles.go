// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"threadpress/internal/markdown"
	"threadpress/internal/metrics"
	"threadpress/internal/middleware"
	"threadpress/internal/models"
	"threadpress/internal/ranking"
)

// ArticleReader loads published articles.
type ArticleReader interface {
	ListPublished(ctx context.Context) ([]models.Article, error)
	ListPublishedByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Article, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Article, error)
	TagsFor(ctx context.Context, articleID uuid.UUID) ([]models.Tag, error)
}

// ViewRecorder records and counts article views.
type ViewRecorder interface {
	RecordView(ctx context.Context, articleID uuid.UUID, viewerID string) (bool, error)
	CountViews(ctx context.Context, articleID uuid.UUID) (int, error)
}

// PopularRanker returns the most viewed articles.
type PopularRanker interface {
	RankTop(ctx context.Context, n int, now time.Time) []uuid.UUID
}

// SimilarRanker returns articles sharing tags with a given one.
type SimilarRanker interface {
	SimilarTo(ctx context.Context, articleID uuid.UUID, n int) []uuid.UUID
}

// Searcher runs full-text queries over published articles.
type Searcher interface {
	Search(ctx context.Context, query string) []ranking.Hit
}

// CommentCounter counts the visible comments of an article.
type CommentCounter interface {
	Count(ctx context.Context, articleID uuid.UUID) (int, error)
}

// Limits holds the default list sizes and the timezone "today" is measured in.
type Limits struct {
	Popular  int
	Similar  int
	Location *time.Location
}

// Articles groups the article, ranking and search endpoints.
type Articles struct {
	articles ArticleReader
	views    ViewRecorder
	popular  PopularRanker
	similar  SimilarRanker
	search   Searcher
	comments CommentCounter
	limits   Limits
	now      func() time.Time
}

// NewArticles creates the article handler group.
func NewArticles(articles ArticleReader, views ViewRecorder, popular PopularRanker, similar SimilarRanker,
	search Searcher, comments CommentCounter, limits Limits) *Articles {
	if limits.Popular <= 0 {
		limits.Popular = ranking.DefaultPopularLimit
	}
	if limits.Similar <= 0 {
		limits.Similar = ranking.DefaultSimilarLimit
	}
	if limits.Location == nil {
		limits.Location = time.UTC
	}
	return &Articles{
		articles: articles,
		views:    views,
		popular:  popular,
		similar:  similar,
		search:   search,
		comments: comments,
		limits:   limits,
		now:      time.Now,
	}
}

// articleSummary is the list representation of an article.
type articleSummary struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	ShortDescription string    `json:"short_description"`
	Fixed            bool      `json:"fixed"`
	CategoryID       uuid.UUID `json:"category_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func summarize(items []models.Article) []articleSummary {
	out := make([]articleSummary, len(items))
	for i, a := range items {
		out[i] = articleSummary{
			ID:               a.ID,
			Title:            a.Title,
			Slug:             a.Slug,
			ShortDescription: a.ShortDescription,
			Fixed:            a.Fixed,
			CategoryID:       a.CategoryID,
			CreatedAt:        a.CreatedAt,
		}
	}
	return out
}

// articleDetail is the full representation served for a single article.
type articleDetail struct {
	models.Article
	BodyHTML     string           `json:"body_html"`
	Views        int              `json:"views"`
	CommentCount int              `json:"comment_count"`
	Similar      []articleSummary `json:"similar"`
}

// List returns every published article, fixed ones first.
func (a *Articles) List(w http.ResponseWriter, r *http.Request) {
	items, err := a.articles.ListPublished(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(items))
}

// Show returns a published article and records a view by the requesting
// client. A failed view write is logged; the article is still served.
func (a *Articles) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	article, ok := a.findBySlug(w, r)
	if !ok {
		return
	}

	created, err := a.views.RecordView(ctx, article.ID, middleware.ClientIP(r))
	if err != nil {
		slog.Warn("record view failed", "article", article.ID, "error", err)
	} else {
		metrics.RecordView(created)
	}

	html, err := markdown.ToHTML(article.Body)
	if err != nil {
		handleError(w, r, err)
		return
	}
	tags, err := a.articles.TagsFor(ctx, article.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	views, err := a.views.CountViews(ctx, article.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	count, err := a.comments.Count(ctx, article.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	similar, err := a.hydrate(ctx, a.similar.SimilarTo(ctx, article.ID, a.limits.Similar))
	if err != nil {
		handleError(w, r, err)
		return
	}

	article.Tags = tags
	writeJSON(w, http.StatusOK, articleDetail{
		Article:      *article,
		BodyHTML:     html,
		Views:        views,
		CommentCount: count,
		Similar:      similar,
	})
}

// Popular returns the most viewed articles of the last week.
func (a *Articles) Popular(w http.ResponseWriter, r *http.Request) {
	n, ok := limitParam(r, a.limits.Popular)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	now := a.now().In(a.limits.Location)
	items, err := a.hydrate(r.Context(), a.popular.RankTop(r.Context(), n, now))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Similar returns articles sharing the most tags with the given one.
func (a *Articles) Similar(w http.ResponseWriter, r *http.Request) {
	article, ok := a.findBySlug(w, r)
	if !ok {
		return
	}
	n, ok := limitParam(r, a.limits.Similar)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	items, err := a.hydrate(r.Context(), a.similar.SimilarTo(r.Context(), article.ID, n))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Search ranks published articles against ?q=.
func (a *Articles) Search(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{Query: r.URL.Query().Get("q")}
	if msg := validationMessage(req); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": a.search.Search(r.Context(), req.Query),
	})
}

// findBySlug resolves the {slug} URL parameter, writing a 404 when the
// article is missing or unpublished.
func (a *Articles) findBySlug(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	article, err := a.articles.FindPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
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

// hydrate loads ranked ids as summaries, keeping the ranking order.
func (a *Articles) hydrate(ctx context.Context, ids []uuid.UUID) ([]articleSummary, error) {
	if len(ids) == 0 {
		return []articleSummary{}, nil
	}
	items, err := a.articles.ListPublishedByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return summarize(items), nil
}
