// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ranking orders published articles three ways: by recent
// popularity, by tag similarity to another article, and by relevance to a
// free-text query. Rankers are read-only and safe for concurrent use.
package ranking

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"threadpress/internal/metrics"
	"threadpress/internal/models"
)

// DefaultPopularLimit is the list size used when the caller passes n <= 0.
const DefaultPopularLimit = 10

// popularWindow is the length of the long popularity window.
const popularWindow = 7 * 24 * time.Hour

// ViewStatsSource supplies windowed view counts for published articles.
type ViewStatsSource interface {
	WindowCounts(ctx context.Context, weekStart, dayStart, now time.Time) ([]models.ViewStats, error)
}

// Popularity ranks published articles by how many distinct viewers they
// had during the last seven days, then during the current day.
type Popularity struct {
	source ViewStatsSource
}

// NewPopularity creates a popularity ranker reading from source.
func NewPopularity(source ViewStatsSource) *Popularity {
	return &Popularity{source: source}
}

// Windows returns the start of the seven-day window and the start of the
// current day. Midnight is taken in now's location, so callers choose the
// timezone by choosing the clock.
func Windows(now time.Time) (weekStart, dayStart time.Time) {
	y, m, d := now.Date()
	return now.Add(-popularWindow), time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// RankTop returns the ids of the n most popular published articles as of
// now. A failing source yields an empty list; the error is logged and
// never reaches the caller.
func (p *Popularity) RankTop(ctx context.Context, n int, now time.Time) []uuid.UUID {
	if n <= 0 {
		n = DefaultPopularLimit
	}

	start := time.Now()
	weekStart, dayStart := Windows(now)
	stats, err := p.source.WindowCounts(ctx, weekStart, dayStart, now)
	metrics.RecordRanking("popular", time.Since(start), err)
	if err != nil {
		slog.Error("popularity ranking failed", "error", err)
		return []uuid.UUID{}
	}

	return RankPopular(stats, n)
}

// RankPopular orders stats by seven-day count descending, then today's
// count descending, then article id ascending, and returns the first n ids.
func RankPopular(stats []models.ViewStats, n int) []uuid.UUID {
	sorted := slices.Clone(stats)
	slices.SortFunc(sorted, func(a, b models.ViewStats) int {
		if a.Week != b.Week {
			return b.Week - a.Week
		}
		if a.Today != b.Today {
			return b.Today - a.Today
		}
		return compareIDs(a.ArticleID, b.ArticleID)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	ids := make([]uuid.UUID, len(sorted))
	for i, s := range sorted {
		ids[i] = s.ArticleID
	}
	return ids
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
