// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ranking

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"threadpress/internal/markdown"
	"threadpress/internal/metrics"
	"threadpress/internal/models"
)

// Search defaults. Title terms weigh like PostgreSQL class "A", body terms
// like class "B" in the setup this ranker replaces.
const (
	DefaultTitleWeight = 1.0
	DefaultBodyWeight  = 0.4
	DefaultMinRank     = 0.3
)

// Weights are the per-field multipliers of the relevance score.
type Weights struct {
	Title float64
	Body  float64
}

// Hit is a search result.
type Hit struct {
	ArticleID uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Score     float64   `json:"score"`
}

// Searcher scores articles against free-text queries.
type Searcher struct {
	weights Weights
	minRank float64
}

// NewSearcher creates a searcher. Zero weights or floor fall back to the
// defaults.
func NewSearcher(weights Weights, minRank float64) *Searcher {
	if weights.Title <= 0 {
		weights.Title = DefaultTitleWeight
	}
	if weights.Body <= 0 {
		weights.Body = DefaultBodyWeight
	}
	if minRank <= 0 {
		minRank = DefaultMinRank
	}
	return &Searcher{weights: weights, minRank: minRank}
}

// Search ranks articles against query. For every distinct query term a
// field contributes weight * tf/(tf+1), where tf is the number of times
// the term occurs in that field. Articles scoring below the floor are
// dropped; the rest are ordered by score, then title. Unpublished articles
// never match. An empty query matches nothing.
func (s *Searcher) Search(query string, articles []models.Article) []Hit {
	terms := uniqueTerms(Tokenize(query))
	if len(terms) == 0 {
		return []Hit{}
	}

	hits := []Hit{}
	for _, a := range articles {
		if !a.IsPublished() {
			continue
		}
		score := s.score(terms, a)
		if score < s.minRank {
			continue
		}
		hits = append(hits, Hit{ArticleID: a.ID, Title: a.Title, Slug: a.Slug, Score: score})
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return hits
}

func (s *Searcher) score(terms []string, a models.Article) float64 {
	title := termFrequencies(Tokenize(a.Title))
	body := termFrequencies(Tokenize(a.Body))

	var score float64
	for _, t := range terms {
		score += s.weights.Title * saturate(title[t])
		score += s.weights.Body * saturate(body[t])
	}
	return score
}

// saturate maps a term frequency onto [0, 1) so repetition has diminishing
// returns.
func saturate(tf int) float64 {
	return float64(tf) / float64(tf+1)
}

// Tokenize splits text into lower-cased words made of letters and digits.
// Everything else, markdown syntax included, separates words.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func termFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

func uniqueTerms(tokens []string) []string {
	slices.Sort(tokens)
	return slices.Compact(tokens)
}

// ArticleLister loads the searchable corpus.
type ArticleLister interface {
	ListPublished(ctx context.Context) ([]models.Article, error)
}

// SearchService runs a Searcher over the published articles of a store.
type SearchService struct {
	articles ArticleLister
	searcher *Searcher
}

// NewSearchService creates a SearchService.
func NewSearchService(articles ArticleLister, searcher *Searcher) *SearchService {
	return &SearchService{articles: articles, searcher: searcher}
}

// Search returns the hits for query. Loading failures yield no hits.
func (s *SearchService) Search(ctx context.Context, query string) []Hit {
	if strings.TrimSpace(query) == "" {
		return []Hit{}
	}

	start := time.Now()
	articles, err := s.articles.ListPublished(ctx)
	if err != nil {
		metrics.RecordRanking("search", time.Since(start), err)
		slog.Error("search failed", "error", err)
		return []Hit{}
	}

	// Bodies are markdown; rank their readable text only.
	for i := range articles {
		articles[i].Body = markdown.PlainText(articles[i].Body)
	}
	hits := s.searcher.Search(query, articles)
	metrics.RecordRanking("search", time.Since(start), nil)
	metrics.RecordSearch(len(hits))
	return hits
}
