// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package discussion

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"threadpress/internal/models"
)

// memComments mimics the comments table, including the same-article
// parent constraint.
type memComments struct {
	mu    sync.Mutex
	rows  []models.Comment
	clock time.Time
}

func (m *memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ParentID != nil {
		ok := slices.ContainsFunc(m.rows, func(r models.Comment) bool {
			return r.ID == *c.ParentID && r.ArticleID == c.ArticleID
		})
		if !ok {
			return nil, models.ErrInvalidParent
		}
	}
	m.clock = m.clock.Add(time.Second)
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = m.clock
	m.rows = append(m.rows, row)
	return &row, nil
}

func (m *memComments) ListByArticle(_ context.Context, articleID uuid.UUID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, r := range m.rows {
		if r.ArticleID == articleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memComments) SetStatus(_ context.Context, id uuid.UUID, status models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Status = status
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memComments) Latest(_ context.Context, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].Status == models.StatusPublished {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memComments) CountByArticle(ctx context.Context, articleID uuid.UUID) (int, error) {
	rows, _ := m.ListByArticle(ctx, articleID)
	n := 0
	for _, r := range rows {
		if r.Status == models.StatusPublished {
			n++
		}
	}
	return n, nil
}

type publishedSet map[uuid.UUID]bool

func (p publishedSet) IsPublished(_ context.Context, id uuid.UUID) (bool, error) {
	return p[id], nil
}

func newThread(articles ...uuid.UUID) (*Thread, *memComments) {
	repo := &memComments{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	pub := publishedSet{}
	for _, a := range articles {
		pub[a] = true
	}
	return New(repo, pub), repo
}

func TestPost(t *testing.T) {
	article, author := uuid.New(), uuid.New()
	th, _ := newThread(article)
	ctx := context.Background()

	top, err := th.Post(ctx, article, author, "  Nice post  ", nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if top.IsReply {
		t.Error("top-level comment reported as reply")
	}
	if top.Comment.Status != models.StatusPublished {
		t.Errorf("status: got %q, want published", top.Comment.Status)
	}
	if top.Comment.Content != "Nice post" {
		t.Errorf("content should be trimmed, got %q", top.Comment.Content)
	}

	reply, err := th.Post(ctx, article, author, "Thanks", &top.Comment.ID)
	if err != nil {
		t.Fatalf("Post reply: %v", err)
	}
	if !reply.IsReply {
		t.Error("reply not reported as reply")
	}
}

func TestPostErrors(t *testing.T) {
	article, other, draft, author := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	th, repo := newThread(article, other)
	ctx := context.Background()

	foreign, err := th.Post(ctx, other, author, "elsewhere", nil)
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	ghost := uuid.New()

	tests := []struct {
		name    string
		article uuid.UUID
		content string
		parent  *uuid.UUID
		want    error
	}{
		{"empty content", article, "", nil, models.ErrValidation},
		{"blank content", article, "   \n", nil, models.ErrValidation},
		{"too long", article, strings.Repeat("é", models.MaxCommentLen+1), nil, models.ErrValidation},
		{"unpublished article", draft, "hello", nil, models.ErrNotFound},
		{"parent from another article", article, "hijack", &foreign.Comment.ID, models.ErrInvalidParent},
		{"unknown parent", article, "hello", &ghost, models.ErrInvalidParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(repo.rows)
			_, err := th.Post(ctx, tt.article, author, tt.content, tt.parent)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if len(repo.rows) != before {
				t.Error("a rejected comment must not be stored")
			}
		})
	}

	// Exactly MaxCommentLen characters is accepted, counted in runes.
	if _, err := th.Post(ctx, article, author, strings.Repeat("é", models.MaxCommentLen), nil); err != nil {
		t.Errorf("max length comment: %v", err)
	}
}

func TestListDepthAndOrder(t *testing.T) {
	article, author := uuid.New(), uuid.New()
	th, _ := newThread(article)
	ctx := context.Background()

	post := func(content string, parent *uuid.UUID) uuid.UUID {
		t.Helper()
		p, err := th.Post(ctx, article, author, content, parent)
		if err != nil {
			t.Fatalf("Post %q: %v", content, err)
		}
		return p.Comment.ID
	}
	a := post("a", nil)
	b := post("b", nil)
	a1 := post("a1", &a)
	a1x := post("a1x", &a1)
	a2 := post("a2", &a)
	b1 := post("b1", &b)

	entries, err := th.List(ctx, article)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var ids []uuid.UUID
	depth := map[uuid.UUID]int{}
	for _, e := range entries {
		ids = append(ids, e.ID)
		depth[e.ID] = e.Depth
	}
	if want := []uuid.UUID{a, a1, a1x, a2, b, b1}; !slices.Equal(ids, want) {
		t.Errorf("pre-order: got %v, want %v", ids, want)
	}

	for _, e := range entries {
		if e.ParentID == nil {
			if e.Depth != 0 {
				t.Errorf("root %q depth %d, want 0", e.Content, e.Depth)
			}
			continue
		}
		if e.Depth != depth[*e.ParentID]+1 {
			t.Errorf("%q depth %d, parent depth %d", e.Content, e.Depth, depth[*e.ParentID])
		}
	}
}

func TestListVisibleHidesSubtrees(t *testing.T) {
	article, author := uuid.New(), uuid.New()
	th, _ := newThread(article)
	ctx := context.Background()

	a, _ := th.Post(ctx, article, author, "a", nil)
	a1, _ := th.Post(ctx, article, author, "a1", &a.Comment.ID)
	th.Post(ctx, article, author, "a1x", &a1.Comment.ID)
	b, _ := th.Post(ctx, article, author, "b", nil)

	if err := th.SetStatus(ctx, a1.Comment.ID, models.StatusDraft); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	visible, err := th.ListVisible(ctx, article)
	if err != nil {
		t.Fatalf("ListVisible: %v", err)
	}
	var got []string
	for _, e := range visible {
		got = append(got, e.Content)
	}
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("visible: got %v, want [a b]", got)
	}

	all, _ := th.List(ctx, article)
	if len(all) != 4 {
		t.Errorf("List must keep hidden comments, got %d", len(all))
	}

	if n, _ := th.Count(ctx, article); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}

	latest, _ := th.Latest(ctx, 0)
	if len(latest) != 3 || latest[0].ID != b.Comment.ID {
		t.Errorf("Latest: got %d comments, first %v", len(latest), latest)
	}
}

func TestListEmpty(t *testing.T) {
	th, _ := newThread()
	entries, err := th.List(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}
