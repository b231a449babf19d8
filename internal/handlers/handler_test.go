// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes for the handler groups and a
// helper that serves one request through a chi route.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"threadpress/internal/middleware"
	"threadpress/internal/models"
	"threadpress/internal/ranking"
	"threadpress/internal/session"
)

// serve routes a single request through pattern and returns the recorder.
// A non-nil sess is attached to the request context.
func serve(t *testing.T, method, pattern, target string, h http.HandlerFunc, body string, sess *session.Data) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.RemoteAddr = "203.0.113.7:52100"
	if sess != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), sess))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the recorder body into dst.
func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
}

type fakeArticles struct {
	items []models.Article
	tags  map[uuid.UUID][]models.Tag
	err   error
}

func (f *fakeArticles) ListPublished(context.Context) ([]models.Article, error) {
	return f.items, f.err
}

func (f *fakeArticles) ListPublishedByIDs(_ context.Context, ids []uuid.UUID) ([]models.Article, error) {
	var out []models.Article
	for _, id := range ids {
		for _, a := range f.items {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out, f.err
}

func (f *fakeArticles) FindPublishedBySlug(_ context.Context, slug string) (*models.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.items {
		if a.Slug == slug {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeArticles) TagsFor(_ context.Context, id uuid.UUID) ([]models.Tag, error) {
	return f.tags[id], nil
}

func (f *fakeArticles) ListPublishedInCategories(_ context.Context, ids []uuid.UUID) ([]models.Article, error) {
	var out []models.Article
	for _, a := range f.items {
		if slices.Contains(ids, a.CategoryID) {
			out = append(out, a)
		}
	}
	return out, f.err
}

type fakeViews struct {
	seen      map[uuid.UUID][]string
	recordErr error
}

func (f *fakeViews) RecordView(_ context.Context, articleID uuid.UUID, viewer string) (bool, error) {
	if f.recordErr != nil {
		return false, f.recordErr
	}
	if f.seen == nil {
		f.seen = make(map[uuid.UUID][]string)
	}
	if slices.Contains(f.seen[articleID], viewer) {
		return false, nil
	}
	f.seen[articleID] = append(f.seen[articleID], viewer)
	return true, nil
}

func (f *fakeViews) CountViews(_ context.Context, articleID uuid.UUID) (int, error) {
	return len(f.seen[articleID]), nil
}

type fakePopular struct {
	ids    []uuid.UUID
	gotN   int
	gotNow time.Time
}

func (f *fakePopular) RankTop(_ context.Context, n int, now time.Time) []uuid.UUID {
	f.gotN, f.gotNow = n, now
	if len(f.ids) > n {
		return f.ids[:n]
	}
	return f.ids
}

type fakeSimilar struct {
	ids  []uuid.UUID
	gotN int
}

func (f *fakeSimilar) SimilarTo(_ context.Context, _ uuid.UUID, n int) []uuid.UUID {
	f.gotN = n
	return f.ids
}

type fakeSearch struct {
	hits     []ranking.Hit
	gotQuery string
}

func (f *fakeSearch) Search(_ context.Context, q string) []ranking.Hit {
	f.gotQuery = q
	return f.hits
}

type fakeCounter struct{ n int }

func (f fakeCounter) Count(context.Context, uuid.UUID) (int, error) { return f.n, nil }

// article builds a published article with a predictable slug.
func article(title string, category uuid.UUID) models.Article {
	return models.Article{
		ID:         uuid.New(),
		Title:      title,
		Slug:       strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Body:       "# " + title,
		Status:     models.StatusPublished,
		CategoryID: category,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
