// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"threadpress/internal/models"
)

// ViewStore records article views. Each (article, viewer) pair is counted
// once; the first view wins and keeps its timestamp.
type ViewStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewViewStore creates a ViewStore stamping views with the wall clock.
func NewViewStore(db *sql.DB) *ViewStore {
	return &ViewStore{db: db, now: time.Now}
}

// WithClock returns a copy of the store that stamps views with now.
func (s *ViewStore) WithClock(now func() time.Time) *ViewStore {
	return &ViewStore{db: s.db, now: now}
}

// RecordView stores a view unless the viewer already viewed the article.
// It reports whether a new event was created. Concurrent calls for the
// same pair leave exactly one row; the loser sees created == false.
func (s *ViewStore) RecordView(ctx context.Context, articleID uuid.UUID, viewerID string) (bool, error) {
	if viewerID == "" {
		return false, fmt.Errorf("record view: empty viewer: %w", models.ErrValidation)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO article_views (article_id, viewer_id, viewed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_id, viewer_id) DO NOTHING
	`, articleID, viewerID, s.now())
	if err != nil {
		if code, _ := constraintError(err); code == codeForeignKeyViolation {
			return false, fmt.Errorf("record view of %s: %w", articleID, models.ErrNotFound)
		}
		return false, fmt.Errorf("record view: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record view: %w", err)
	}
	return n == 1, nil
}

// Find returns the view event of a viewer on an article. Returns nil if
// the viewer never opened it.
func (s *ViewStore) Find(ctx context.Context, articleID uuid.UUID, viewerID string) (*models.ViewEvent, error) {
	var v models.ViewEvent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, article_id, viewer_id, viewed_at
		FROM article_views WHERE article_id = $1 AND viewer_id = $2
	`, articleID, viewerID).Scan(&v.ID, &v.ArticleID, &v.ViewerID, &v.ViewedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find view: %w", err)
	}
	return &v, nil
}

// CountViews returns the number of distinct viewers of an article.
func (s *ViewStore) CountViews(ctx context.Context, articleID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_views WHERE article_id = $1`, articleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return n, nil
}

// CountViewsSince counts views at or after cutoff.
func (s *ViewStore) CountViewsSince(ctx context.Context, articleID uuid.UUID, cutoff time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_views WHERE article_id = $1 AND viewed_at >= $2`,
		articleID, cutoff).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count views since: %w", err)
	}
	return n, nil
}

// WindowCounts returns, for every published article, the views in
// [weekStart, now) and in [dayStart, now). Articles without views are
// included with zero counts.
func (s *ViewStore) WindowCounts(ctx context.Context, weekStart, dayStart, now time.Time) ([]models.ViewStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id,
		       COUNT(v.id) FILTER (WHERE v.viewed_at >= $1::timestamptz),
		       COUNT(v.id) FILTER (WHERE v.viewed_at >= $2::timestamptz)
		FROM articles a
		LEFT JOIN article_views v
		       ON v.article_id = a.id AND v.viewed_at >= LEAST($1::timestamptz, $2::timestamptz) AND v.viewed_at < $3::timestamptz
		WHERE a.status = 'published'
		GROUP BY a.id
	`, weekStart, dayStart, now)
	if err != nil {
		return nil, fmt.Errorf("window counts: %w", err)
	}
	defer rows.Close()

	var stats []models.ViewStats
	for rows.Next() {
		var st models.ViewStats
		if err := rows.Scan(&st.ArticleID, &st.Week, &st.Today); err != nil {
			return nil, fmt.Errorf("scan window counts: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
