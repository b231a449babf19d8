// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// ranking.go caches ranking results in Valkey. Popularity only moves as
// views come in, so a list a minute old is good enough for the homepage
// and saves a grouped scan of the view log on every request.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"threadpress/internal/metrics"
	"threadpress/internal/models"
)

const (
	// rankKeyPrefix is the Valkey key prefix for cached rankings.
	rankKeyPrefix = "rank:"

	// DefaultRankingTTL is how long a ranking stays cached.
	DefaultRankingTTL = time.Minute
)

// RankingCache stores JSON-encoded ranking results in Valkey.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRankingCache creates a ranking cache backed by the given Valkey client.
func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	if ttl == 0 {
		ttl = DefaultRankingTTL
	}
	return &RankingCache{client: client, ttl: ttl}
}

// get decodes the cached value of key into dst and reports a hit.
// Errors are logged and treated as misses.
func (rc *RankingCache) get(ctx context.Context, key string, dst any) bool {
	kind, _, _ := strings.Cut(key, ":")
	val, err := rc.client.Get(ctx, rankKeyPrefix+key).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheLookup(kind, "miss")
		return false
	}
	if err != nil {
		metrics.RecordCacheLookup(kind, "error")
		slog.Warn("ranking cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		metrics.RecordCacheLookup(kind, "error")
		slog.Warn("ranking cache decode error", "key", key, "error", err)
		return false
	}
	metrics.RecordCacheLookup(kind, "hit")
	return true
}

// set stores v under key with the configured TTL.
func (rc *RankingCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("ranking cache encode error", "key", key, "error", err)
		return
	}
	if err := rc.client.Set(ctx, rankKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		slog.Warn("ranking cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached ranking by scanning for the prefix.
func (rc *RankingCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, rankKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("ranking cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("ranking cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("ranking cache cleared", "deleted", deleted)
	}
}

// PopularKey returns the cache key for a popularity list of size n.
func PopularKey(n int) string {
	return fmt.Sprintf("popular:%d", n)
}

// TagsKey returns the cache key for a tag cloud of size n.
func TagsKey(n int) string {
	return fmt.Sprintf("tags:%d", n)
}

// PopularRanker is the ranking the cache sits in front of.
type PopularRanker interface {
	RankTop(ctx context.Context, n int, now time.Time) []uuid.UUID
}

// CachedPopular serves popularity lists from the cache, computing and
// storing them on a miss.
type CachedPopular struct {
	ranker PopularRanker
	cache  *RankingCache
}

// NewCachedPopular wraps ranker with cache.
func NewCachedPopular(ranker PopularRanker, cache *RankingCache) *CachedPopular {
	return &CachedPopular{ranker: ranker, cache: cache}
}

// RankTop returns the cached list for n when present. Empty results are
// not cached, so a failed ranking is retried on the next request.
func (c *CachedPopular) RankTop(ctx context.Context, n int, now time.Time) []uuid.UUID {
	key := PopularKey(n)
	var ids []uuid.UUID
	if c.cache.get(ctx, key, &ids) {
		return ids
	}

	ids = c.ranker.RankTop(ctx, n, now)
	if len(ids) > 0 {
		c.cache.set(ctx, key, ids)
	}
	return ids
}

// TagSource lists tags by popularity.
type TagSource interface {
	Popular(ctx context.Context, limit int) ([]models.Tag, error)
}

// CachedTags serves the tag cloud from the cache.
type CachedTags struct {
	source TagSource
	cache  *RankingCache
}

// NewCachedTags wraps source with cache.
func NewCachedTags(source TagSource, cache *RankingCache) *CachedTags {
	return &CachedTags{source: source, cache: cache}
}

// Popular returns the n most used tags.
func (c *CachedTags) Popular(ctx context.Context, n int) ([]models.Tag, error) {
	key := TagsKey(n)
	var tags []models.Tag
	if c.cache.get(ctx, key, &tags) {
		return tags, nil
	}

	tags, err := c.source.Popular(ctx, n)
	if err != nil {
		return nil, err
	}
	c.cache.set(ctx, key, tags)
	return tags, nil
}
