// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"threadpress/internal/models"
	"threadpress/internal/slug"
)

// TagStore handles tag persistence.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// GetOrCreate returns the tag with the given name, creating it if needed.
// Names are trimmed; an empty name is a validation error.
func (s *TagStore) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name required: %w", models.ErrValidation)
	}

	base := slug.From(name)
	candidate := base
	for attempt := 0; ; attempt++ {
		var t models.Tag
		// The no-op update makes RETURNING yield the existing row on conflict.
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO tags (name, slug) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id, name, slug
		`, name, candidate).Scan(&t.ID, &t.Name, &t.Slug)
		if err == nil {
			return &t, nil
		}
		if isSlugConflict(err, "tags_slug_key") && attempt < maxSlugAttempts {
			candidate = slug.Disambiguate(base)
			continue
		}
		return nil, fmt.Errorf("get or create tag: %w", err)
	}
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(ctx context.Context, slugValue string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE slug = $1`, slugValue).
		Scan(&t.ID, &t.Name, &t.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return &t, nil
}

// Popular returns tags ordered by the number of published articles that
// carry them. Tags on no published article are left out.
func (s *TagStore) Popular(ctx context.Context, limit int) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, COUNT(*) AS article_count
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		JOIN articles a ON a.id = at.article_id AND a.status = 'published'
		GROUP BY t.id
		ORDER BY article_count DESC, t.name
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.ArticleCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
