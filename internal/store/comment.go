// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"threadpress/internal/models"
)

// CommentStore handles comment persistence.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `c.id, c.article_id, c.author_id, c.content, c.status, c.parent_id,
	c.created_at, c.updated_at, u.display_name`

func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	err := scanner.Scan(
		&c.ID, &c.ArticleID, &c.AuthorID, &c.Content, &c.Status, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt, &c.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentStore) queryComments(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a comment in a single statement. The composite foreign key
// on (parent_id, article_id) rejects a parent from another article inside
// the same INSERT, so no partial comment is ever stored.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if c.Status == "" {
		c.Status = models.StatusPublished
	}

	created, err := scanComment(s.db.QueryRowContext(ctx, `
		WITH c AS (
			INSERT INTO comments (article_id, author_id, content, status, parent_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT `+commentColumns+`
		FROM c JOIN users u ON u.id = c.author_id
	`, c.ArticleID, c.AuthorID, c.Content, c.Status, c.ParentID))
	if err == nil {
		return created, nil
	}

	code, constraint := constraintError(err)
	switch {
	case code == codeForeignKeyViolation && constraint == "comments_parent_fk":
		return nil, fmt.Errorf("create comment: parent %v: %w", c.ParentID, models.ErrInvalidParent)
	case code == codeForeignKeyViolation:
		return nil, fmt.Errorf("create comment: article or author: %w", models.ErrNotFound)
	case code == codeCheckViolation:
		return nil, fmt.Errorf("create comment: %w", models.ErrValidation)
	}
	return nil, fmt.Errorf("create comment: %w", err)
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// ListByArticle returns every comment of an article, whatever its status,
// in creation order.
func (s *CommentStore) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.Comment, error) {
	items, err := s.queryComments(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.article_id = $1
		ORDER BY c.created_at, c.id
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return items, nil
}

// SetStatus publishes or hides a comment.
func (s *CommentStore) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("comment status %q: %w", status, models.ErrValidation)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET status = $1, updated_at = clock_timestamp() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("set comment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set comment status %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// Latest returns the newest published comments on published articles.
func (s *CommentStore) Latest(ctx context.Context, limit int) ([]models.Comment, error) {
	items, err := s.queryComments(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN articles a ON a.id = c.article_id
		WHERE c.status = 'published' AND a.status = 'published'
		ORDER BY c.created_at DESC, c.id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("latest comments: %w", err)
	}
	return items, nil
}

// CountByArticle returns the number of published comments on an article.
func (s *CommentStore) CountByArticle(ctx context.Context, articleID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE article_id = $1 AND status = 'published'`, articleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}
