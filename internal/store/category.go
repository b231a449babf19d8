// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"threadpress/internal/models"
	"threadpress/internal/slug"
	"threadpress/internal/tree"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, title, slug, description, parent_id, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description,
		&c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryTree is the category forest together with the rows it indexes.
type CategoryTree struct {
	Forest *tree.Forest[uuid.UUID]
	byID   map[uuid.UUID]models.Category
}

// BySlug returns the category row with the given slug.
func (t *CategoryTree) BySlug(slugValue string) (models.Category, bool) {
	for _, c := range t.byID {
		if c.Slug == slugValue {
			return c, true
		}
	}
	return models.Category{}, false
}

// Flat returns every category in display order (pre-order, siblings by
// title) with Depth set for indentation.
func (t *CategoryTree) Flat() []models.Category {
	result := make([]models.Category, 0, t.Forest.Len())
	for id, depth := range t.Forest.Walk() {
		c := t.byID[id]
		c.Depth = depth
		result = append(result, c)
	}
	return result
}

// SubtreeIDs returns id and all of its descendant category IDs.
func (t *CategoryTree) SubtreeIDs(id uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for c := range t.Forest.Subtree(id) {
		ids = append(ids, c)
	}
	return ids
}

// List returns all categories in creation order, with published article counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.slug, c.description, c.parent_id,
		       c.created_at, c.updated_at,
		       COUNT(a.id) AS article_count
		FROM categories c
		LEFT JOIN articles a ON a.category_id = c.id AND a.status = 'published'
		GROUP BY c.id
		ORDER BY c.created_at, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Title, &c.Slug, &c.Description,
			&c.ParentID, &c.CreatedAt, &c.UpdatedAt,
			&c.ArticleCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree loads all categories into a forest whose siblings are ordered by title.
func (s *CategoryStore) Tree(ctx context.Context) (*CategoryTree, error) {
	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCategoryTree(flat)
}

// NewCategoryTree indexes flat category rows as a forest whose siblings
// are ordered by title.
func NewCategoryTree(flat []models.Category) (*CategoryTree, error) {
	f, err := tree.Build(flat,
		func(c models.Category) uuid.UUID { return c.ID },
		func(c models.Category) *uuid.UUID { return c.ParentID },
	)
	if err != nil {
		return nil, fmt.Errorf("build category tree: %w", err)
	}

	byID := make(map[uuid.UUID]models.Category, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}
	tree.SortChildren(f, func(id uuid.UUID) string { return strings.ToLower(byID[id].Title) })

	return &CategoryTree{Forest: f, byID: byID}, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slugValue string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slugValue)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category as the last child of its parent (or as a
// root) and returns it. A missing parent fails with models.ErrInvalidParent.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if strings.TrimSpace(c.Title) == "" {
		return nil, fmt.Errorf("create category: title required: %w", models.ErrValidation)
	}

	base := c.Slug
	if base == "" {
		base = slug.From(c.Title)
	}

	candidate := base
	for attempt := 0; ; attempt++ {
		row := s.db.QueryRowContext(ctx, `
			INSERT INTO categories (title, slug, description, parent_id)
			VALUES ($1, $2, $3, $4)
			RETURNING `+categoryColumns,
			c.Title, candidate, c.Description, c.ParentID,
		)
		result, err := scanCategory(row)
		if err == nil {
			return result, nil
		}
		if isSlugConflict(err, "categories_slug_key") && attempt < maxSlugAttempts {
			candidate = slug.Disambiguate(base)
			continue
		}
		if code, _ := constraintError(err); code == codeForeignKeyViolation {
			return nil, fmt.Errorf("create category: %w", models.ErrInvalidParent)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
}

// SetParent moves a category under parentID (nil makes it a root). The
// cycle check and the write happen in one transaction holding a lock that
// blocks concurrent category writes, so two moves cannot race into a cycle.
func (s *CategoryStore) SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE categories IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock categories: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, parent_id FROM categories ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("load category links: %w", err)
	}
	type link struct {
		id     uuid.UUID
		parent *uuid.UUID
	}
	var links []link
	for rows.Next() {
		var l link
		if err := rows.Scan(&l.id, &l.parent); err != nil {
			rows.Close()
			return fmt.Errorf("scan category link: %w", err)
		}
		links = append(links, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load category links: %w", err)
	}

	f, err := tree.Build(links,
		func(l link) uuid.UUID { return l.id },
		func(l link) *uuid.UUID { return l.parent },
	)
	if err != nil {
		return fmt.Errorf("build category tree: %w", err)
	}
	if !f.Has(id) {
		return fmt.Errorf("set parent of %s: %w", id, models.ErrNotFound)
	}
	if parentID != nil {
		if err := f.CheckParent(id, *parentID); err != nil {
			return fmt.Errorf("set parent: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE categories SET parent_id = $1, updated_at = NOW() WHERE id = $2`, parentID, id); err != nil {
		return fmt.Errorf("update category parent: %w", err)
	}
	return tx.Commit()
}

// Update modifies title, slug and description of a category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET title = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
	`, c.Title, c.Slug, c.Description, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update category %s: %w", c.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a category and its whole subtree (ON DELETE CASCADE).
// It fails while any category in the subtree still files articles.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if code, _ := constraintError(err); code == codeForeignKeyViolation {
			return fmt.Errorf("delete category %s: category still has articles: %w", id, models.ErrValidation)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
