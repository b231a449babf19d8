// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package discussion manages the threaded comments of articles. Each
// article owns one comment forest; replies always stay inside the forest
// of their parent's article.
package discussion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"threadpress/internal/metrics"
	"threadpress/internal/models"
	"threadpress/internal/tree"
)

// DefaultLatestLimit is the number of comments Latest returns for n <= 0.
const DefaultLatestLimit = 5

// CommentRepository persists comments. Create must reject a parent from
// another article with models.ErrInvalidParent as part of the insert.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.Comment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error
	Latest(ctx context.Context, limit int) ([]models.Comment, error)
	CountByArticle(ctx context.Context, articleID uuid.UUID) (int, error)
}

// ArticleChecker reports whether an article can be commented on.
type ArticleChecker interface {
	IsPublished(ctx context.Context, id uuid.UUID) (bool, error)
}

// Thread posts and lists comments.
type Thread struct {
	comments CommentRepository
	articles ArticleChecker
	validate *validator.Validate
}

// New creates a Thread.
func New(comments CommentRepository, articles ArticleChecker) *Thread {
	return &Thread{
		comments: comments,
		articles: articles,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// postInput holds the user-supplied fields of a new comment.
type postInput struct {
	Content string `validate:"required,max=3000"`
}

// Posted is the result of a successful Post.
type Posted struct {
	Comment *models.Comment `json:"comment"`
	IsReply bool            `json:"is_reply"`
}

// Entry is a comment annotated with its depth in the thread.
type Entry struct {
	models.Comment
	Depth int `json:"depth"`
}

// Post adds a published comment to an article, as a reply when parentID is
// set. Either the comment is stored whole or nothing is stored.
func (t *Thread) Post(ctx context.Context, articleID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*Posted, error) {
	in := postInput{Content: strings.TrimSpace(content)}
	if err := t.validate.Struct(in); err != nil {
		metrics.RecordCommentRejected("validation")
		return nil, fmt.Errorf("post comment: %w: %s", models.ErrValidation, describe(err))
	}

	ok, err := t.articles.IsPublished(ctx, articleID)
	if err != nil {
		metrics.RecordCommentRejected("error")
		return nil, fmt.Errorf("post comment: %w", err)
	}
	if !ok {
		metrics.RecordCommentRejected("not_found")
		return nil, fmt.Errorf("post comment: article %s: %w", articleID, models.ErrNotFound)
	}

	c, err := t.comments.Create(ctx, &models.Comment{
		ArticleID: articleID,
		AuthorID:  authorID,
		Content:   in.Content,
		Status:    models.StatusPublished,
		ParentID:  parentID,
	})
	if err != nil {
		metrics.RecordCommentRejected(rejectReason(err))
		return nil, fmt.Errorf("post comment: %w", err)
	}

	metrics.RecordComment(c.IsReply())
	return &Posted{Comment: c, IsReply: c.IsReply()}, nil
}

// List returns every comment of an article, whatever its status, in
// pre-order with depth.
func (t *Thread) List(ctx context.Context, articleID uuid.UUID) ([]Entry, error) {
	return t.list(ctx, articleID, false)
}

// ListVisible is List for readers: unpublished comments are left out
// together with every reply beneath them.
func (t *Thread) ListVisible(ctx context.Context, articleID uuid.UUID) ([]Entry, error) {
	return t.list(ctx, articleID, true)
}

func (t *Thread) list(ctx context.Context, articleID uuid.UUID, publishedOnly bool) ([]Entry, error) {
	comments, err := t.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	forest, err := tree.Build(comments,
		func(c models.Comment) uuid.UUID { return c.ID },
		func(c models.Comment) *uuid.UUID { return c.ParentID },
	)
	if err != nil {
		return nil, fmt.Errorf("thread of article %s: %w", articleID, err)
	}

	byID := make(map[uuid.UUID]models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	entries := make([]Entry, 0, len(comments))
	hidden := make(map[uuid.UUID]bool)
	for id, depth := range forest.Walk() {
		c := byID[id]
		if publishedOnly {
			parent, hasParent := forest.ParentOf(id)
			if c.Status != models.StatusPublished || (hasParent && hidden[parent]) {
				hidden[id] = true
				continue
			}
		}
		entries = append(entries, Entry{Comment: c, Depth: depth})
	}
	return entries, nil
}

// SetStatus publishes or hides a comment.
func (t *Thread) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	return t.comments.SetStatus(ctx, id, status)
}

// Latest returns the n newest published comments across all articles.
func (t *Thread) Latest(ctx context.Context, n int) ([]models.Comment, error) {
	if n <= 0 {
		n = DefaultLatestLimit
	}
	return t.comments.Latest(ctx, n)
}

// Count returns the number of published comments on an article.
func (t *Thread) Count(ctx context.Context, articleID uuid.UUID) (int, error) {
	return t.comments.CountByArticle(ctx, articleID)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidParent):
		return "invalid_parent"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrValidation):
		return "validation"
	}
	return "error"
}

// describe turns validator errors into a short message.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, "content is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("content must be at most %s characters", fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("content failed %s", fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
