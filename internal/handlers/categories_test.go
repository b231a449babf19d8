// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"threadpress/internal/models"
	"threadpress/internal/store"
)

type fakeCategories struct {
	rows []models.Category
}

func (f fakeCategories) Tree(context.Context) (*store.CategoryTree, error) {
	return store.NewCategoryTree(f.rows)
}

type fakeTagCloud struct {
	tags []models.Tag
	gotN int
}

func (f *fakeTagCloud) Popular(_ context.Context, n int) ([]models.Tag, error) {
	f.gotN = n
	return f.tags, nil
}

func TestCatalogCategories(t *testing.T) {
	root := models.Category{ID: uuid.New(), Title: "Programming", Slug: "programming"}
	py := models.Category{ID: uuid.New(), Title: "Python", Slug: "python", ParentID: &root.ID}
	goCat := models.Category{ID: uuid.New(), Title: "Go", Slug: "go", ParentID: &root.ID}

	h := NewCatalog(fakeCategories{rows: []models.Category{root, py, goCat}}, &fakeArticles{}, &fakeTagCloud{})
	rr := serve(t, "GET", "/api/categories", "/api/categories", h.Categories, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var got []models.Category
	decode(t, rr, &got)
	want := []struct {
		slug  string
		depth int
	}{{"programming", 0}, {"go", 1}, {"python", 1}}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Slug != w.slug || got[i].Depth != w.depth {
			t.Errorf("row %d: got %s@%d, want %s@%d", i, got[i].Slug, got[i].Depth, w.slug, w.depth)
		}
	}
}

func TestCatalogCategoryArticles(t *testing.T) {
	root := models.Category{ID: uuid.New(), Title: "Programming", Slug: "programming"}
	child := models.Category{ID: uuid.New(), Title: "Go", Slug: "go", ParentID: &root.ID}
	other := models.Category{ID: uuid.New(), Title: "Travel", Slug: "travel"}

	inRoot, inChild, elsewhere := article("Intro", root.ID), article("Channels", child.ID), article("Lisbon", other.ID)
	articles := &fakeArticles{items: []models.Article{inRoot, inChild, elsewhere}}
	h := NewCatalog(fakeCategories{rows: []models.Category{root, child, other}}, articles, &fakeTagCloud{})

	rr := serve(t, "GET", "/api/categories/{slug}/articles", "/api/categories/programming/articles", h.CategoryArticles, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var body struct {
		Category models.Category  `json:"category"`
		Articles []articleSummary `json:"articles"`
	}
	decode(t, rr, &body)
	if body.Category.ID != root.ID {
		t.Errorf("category: got %s", body.Category.Slug)
	}
	if len(body.Articles) != 2 {
		t.Fatalf("subtree articles: got %d, want 2", len(body.Articles))
	}
	for _, a := range body.Articles {
		if a.ID == elsewhere.ID {
			t.Error("article from an unrelated category leaked in")
		}
	}

	rr = serve(t, "GET", "/api/categories/{slug}/articles", "/api/categories/go/articles", h.CategoryArticles, "", nil)
	decode(t, rr, &body)
	if len(body.Articles) != 1 || body.Articles[0].ID != inChild.ID {
		t.Errorf("leaf category: got %+v", body.Articles)
	}

	rr = serve(t, "GET", "/api/categories/{slug}/articles", "/api/categories/unknown/articles", h.CategoryArticles, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown category: got %d, want 404", rr.Code)
	}
}

func TestCatalogPopularTags(t *testing.T) {
	tags := &fakeTagCloud{}
	h := NewCatalog(fakeCategories{}, &fakeArticles{}, tags)

	rr := serve(t, "GET", "/api/tags/popular", "/api/tags/popular", h.PopularTags, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if tags.gotN != defaultTagLimit {
		t.Errorf("n: got %d, want %d", tags.gotN, defaultTagLimit)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty cloud: got %q, want []", rr.Body.String())
	}

	tags.tags = []models.Tag{{ID: uuid.New(), Name: "go", Slug: "go", ArticleCount: 3}}
	rr = serve(t, "GET", "/api/tags/popular", "/api/tags/popular?limit=5", h.PopularTags, "", nil)
	var got []models.Tag
	decode(t, rr, &got)
	if tags.gotN != 5 || len(got) != 1 || got[0].ArticleCount != 3 {
		t.Errorf("cloud: n=%d got %+v", tags.gotN, got)
	}
}
