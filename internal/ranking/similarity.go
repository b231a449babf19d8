// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ranking

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"threadpress/internal/metrics"
)

// DefaultSimilarLimit is the list size used when the caller passes n <= 0.
const DefaultSimilarLimit = 6

// TagSource exposes the article-tag relation.
type TagSource interface {
	// TagIDs returns the tags of an article.
	TagIDs(ctx context.Context, articleID uuid.UUID) ([]uuid.UUID, error)
	// PublishedWithTags maps every published article except exclude that
	// carries at least one of tagIDs to the subset of tagIDs it carries.
	PublishedWithTags(ctx context.Context, tagIDs []uuid.UUID, exclude uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
}

// Similarity recommends published articles sharing tags with a given one.
type Similarity struct {
	source TagSource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimilarity creates a recommender. A nil rng uses a randomly seeded
// source; tests pass a fixed seed.
func NewSimilarity(source TagSource, rng *rand.Rand) *Similarity {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Similarity{source: source, rng: rng}
}

// SimilarTo returns up to n published articles sharing at least one tag
// with articleID, most shared tags first. Articles tied on shared tags
// come out in random order. An article without tags, or any lookup
// failure, yields an empty list.
func (s *Similarity) SimilarTo(ctx context.Context, articleID uuid.UUID, n int) []uuid.UUID {
	if n <= 0 {
		n = DefaultSimilarLimit
	}

	start := time.Now()
	shared, err := s.candidates(ctx, articleID)
	metrics.RecordRanking("similar", time.Since(start), err)
	if err != nil {
		slog.Error("similarity ranking failed", "article_id", articleID, "error", err)
		return []uuid.UUID{}
	}

	s.mu.Lock()
	ids := RankSimilar(shared, n, s.rng)
	s.mu.Unlock()
	return ids
}

func (s *Similarity) candidates(ctx context.Context, articleID uuid.UUID) (map[uuid.UUID]int, error) {
	tags, err := s.source.TagIDs(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}

	overlap, err := s.source.PublishedWithTags(ctx, tags, articleID)
	if err != nil {
		return nil, err
	}

	shared := make(map[uuid.UUID]int, len(overlap))
	for id, common := range overlap {
		if id == articleID || len(common) == 0 {
			continue
		}
		shared[id] = len(common)
	}
	return shared, nil
}

// RankSimilar shuffles the candidates, stably sorts them by shared-tag
// count descending and keeps the first n. Only ties are left to chance.
func RankSimilar(shared map[uuid.UUID]int, n int, rng *rand.Rand) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(shared))
	for id := range shared {
		ids = append(ids, id)
	}
	// Map order is already random, but not reproducible from rng.
	slices.SortFunc(ids, compareIDs)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	slices.SortStableFunc(ids, func(a, b uuid.UUID) int { return shared[b] - shared[a] })

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
