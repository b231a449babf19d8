// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"threadpress/internal/models"
	"threadpress/internal/slug"
)

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, title, slug, short_description, body, status, fixed,
	author_id, category_id, created_at, updated_at`

// listingOrder pins fixed articles first, then newest first.
const listingOrder = `ORDER BY fixed DESC, created_at DESC, id`

func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	a := &models.Article{}
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.ShortDescription, &a.Body, &a.Status, &a.Fixed,
		&a.AuthorID, &a.CategoryID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ArticleStore) queryArticles(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// validateArticle enforces the rules a published article must satisfy.
func validateArticle(a *models.Article) error {
	if !a.Status.Valid() {
		return fmt.Errorf("status %q: %w", a.Status, models.ErrValidation)
	}
	if a.IsPublished() && strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("published article needs a title: %w", models.ErrValidation)
	}
	if a.CategoryID == uuid.Nil {
		return fmt.Errorf("article needs a category: %w", models.ErrValidation)
	}
	return nil
}

// Create inserts a new article and returns it with the generated ID. An
// empty slug is derived from the title; a taken slug gets a random suffix.
func (s *ArticleStore) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	if a.Status == "" {
		a.Status = models.StatusDraft
	}
	if err := validateArticle(a); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	base := a.Slug
	if base == "" {
		base = slug.From(a.Title)
	}

	candidate := base
	for attempt := 0; ; attempt++ {
		created, err := scanArticle(s.db.QueryRowContext(ctx, `
			INSERT INTO articles (title, slug, short_description, body, status, fixed, author_id, category_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+articleColumns,
			a.Title, candidate, a.ShortDescription, a.Body, a.Status, a.Fixed, a.AuthorID, a.CategoryID,
		))
		if err == nil {
			return created, nil
		}
		if isSlugConflict(err, "articles_slug_key") && attempt < maxSlugAttempts {
			candidate = slug.Disambiguate(base)
			continue
		}
		if code, _ := constraintError(err); code == codeForeignKeyViolation {
			return nil, fmt.Errorf("create article: author or category: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
}

// Update modifies an existing article. Returns models.ErrNotFound when the
// article does not exist.
func (s *ArticleStore) Update(ctx context.Context, a *models.Article) error {
	if err := validateArticle(a); err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE articles SET
			title = $1, slug = $2, short_description = $3, body = $4, status = $5,
			fixed = $6, category_id = $7, updated_at = NOW()
		WHERE id = $8
	`, a.Title, a.Slug, a.ShortDescription, a.Body, a.Status, a.Fixed, a.CategoryID, a.ID)
	if err != nil {
		if code, _ := constraintError(err); code == codeForeignKeyViolation {
			return fmt.Errorf("update article: category: %w", models.ErrNotFound)
		}
		return fmt.Errorf("update article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update article %s: %w", a.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes an article. Its views, comments and tag links cascade.
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// FindByID retrieves an article by ID regardless of status. Returns nil if not found.
func (s *ArticleStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// FindPublishedBySlug retrieves a published article by slug. Returns nil
// if not found or not published.
func (s *ArticleStore) FindPublishedBySlug(ctx context.Context, slugValue string) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = $1 AND status = 'published'`, slugValue))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// ListPublished returns all published articles, fixed ones first.
func (s *ArticleStore) ListPublished(ctx context.Context) ([]models.Article, error) {
	items, err := s.queryArticles(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE status = 'published' `+listingOrder)
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	return items, nil
}

// ListPublishedInCategories returns published articles filed under any of
// the given categories.
func (s *ArticleStore) ListPublishedInCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]models.Article, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	items, err := s.queryArticles(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE status = 'published' AND category_id = ANY($1::uuid[])
		`+listingOrder, uuidArray(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("list articles by category: %w", err)
	}
	return items, nil
}

// ListPublishedByIDs loads the published articles among ids, in the order
// the ids were given. Unknown or unpublished ids are skipped.
func (s *ArticleStore) ListPublishedByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.queryArticles(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE status = 'published' AND id = ANY($1::uuid[])
	`, uuidArray(ids))
	if err != nil {
		return nil, fmt.Errorf("list articles by id: %w", err)
	}

	pos := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		if _, seen := pos[id]; !seen {
			pos[id] = i
		}
	}
	slices.SortFunc(items, func(a, b models.Article) int {
		return cmp.Compare(pos[a.ID], pos[b.ID])
	})
	return items, nil
}

// IsPublished reports whether a published article with the given ID exists.
func (s *ArticleStore) IsPublished(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1 AND status = 'published')`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check article published: %w", err)
	}
	return ok, nil
}

// SetTags replaces the tag set of an article in a single transaction.
func (s *ArticleStore) SetTags(ctx context.Context, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("clear article tags: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, articleID, tagID)
		if err != nil {
			if code, _ := constraintError(err); code == codeForeignKeyViolation {
				return fmt.Errorf("tag article %s with %s: %w", articleID, tagID, models.ErrNotFound)
			}
			return fmt.Errorf("tag article: %w", err)
		}
	}
	return tx.Commit()
}

// TagsFor returns the tags of an article ordered by name.
func (s *ArticleStore) TagsFor(ctx context.Context, articleID uuid.UUID) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug
		FROM tags t JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list article tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagIDs returns the tag set of an article.
func (s *ArticleStore) TagIDs(ctx context.Context, articleID uuid.UUID) ([]uuid.UUID, error) {
	tags, err := s.TagsFor(ctx, articleID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids, nil
}

// PublishedWithTags returns, for every published article other than
// exclude that carries at least one of tagIDs, the subset of tagIDs it
// carries.
func (s *ArticleStore) PublishedWithTags(ctx context.Context, tagIDs []uuid.UUID, exclude uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID)
	if len(tagIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT at.article_id, at.tag_id
		FROM article_tags at
		JOIN articles a ON a.id = at.article_id
		WHERE at.tag_id = ANY($1::uuid[])
		  AND a.status = 'published'
		  AND a.id <> $2
	`, uuidArray(tagIDs), exclude)
	if err != nil {
		return nil, fmt.Errorf("query tag overlap: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID, tagID uuid.UUID
		if err := rows.Scan(&articleID, &tagID); err != nil {
			return nil, fmt.Errorf("scan tag overlap: %w", err)
		}
		result[articleID] = append(result[articleID], tagID)
	}
	return result, rows.Err()
}

// uuidArray renders ids as a PostgreSQL array literal for uuid[] parameters.
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
