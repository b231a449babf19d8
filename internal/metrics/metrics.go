// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadpress_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadpress_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	HTTPPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadpress_http_panics_total",
			Help: "Handler panics turned into 500 responses",
		},
	)

	HTTPRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadpress_http_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	// Views
	ViewsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadpress_views_recorded_total",
			Help: "Article view attempts, split by whether a new view event was stored",
		},
		[]string{"created"},
	)

	// Discussion
	CommentsPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadpress_comments_posted_total",
			Help: "Comments accepted, split into top-level comments and replies",
		},
		[]string{"kind"}, // "comment", "reply"
	)

	CommentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadpress_comments_rejected_total",
			Help: "Comments refused, by reason",
		},
		[]string{"reason"}, // "validation", "not_found", "invalid_parent", "error"
	)

	// Ranking
	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threadpress_ranking_duration_seconds",
			Help:    "Time spent computing a ranking",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"ranker"}, // "popular", "similar", "search"
	)

	RankingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadpress_ranking_failures_total",
			Help: "Rankings that degraded to an empty result",
		},
		[]string{"ranker"},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "threadpress_search_results",
			Help:    "Number of hits returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadpress_cache_lookups_total",
			Help: "Ranking cache lookups by result",
		},
		[]string{"kind", "result"}, // result: "hit", "miss", "error"
	)
)

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordPanic counts a recovered handler panic.
func RecordPanic() {
	HTTPPanics.Inc()
}

// RecordRateLimited counts a request refused by the named limiter.
func RecordRateLimited(limiter string) {
	HTTPRateLimited.WithLabelValues(limiter).Inc()
}

// RecordView counts a RecordView call.
func RecordView(created bool) {
	ViewsRecorded.WithLabelValues(strconv.FormatBool(created)).Inc()
}

// RecordComment counts an accepted comment.
func RecordComment(isReply bool) {
	kind := "comment"
	if isReply {
		kind = "reply"
	}
	CommentsPosted.WithLabelValues(kind).Inc()
}

// RecordCommentRejected counts a refused comment.
func RecordCommentRejected(reason string) {
	CommentsRejected.WithLabelValues(reason).Inc()
}

// RecordRanking observes a ranking run; a non-nil err also counts a failure.
func RecordRanking(ranker string, duration time.Duration, err error) {
	RankingDuration.WithLabelValues(ranker).Observe(duration.Seconds())
	if err != nil {
		RankingFailures.WithLabelValues(ranker).Inc()
	}
}

// RecordSearch observes the size of a search result.
func RecordSearch(hits int) {
	SearchResults.Observe(float64(hits))
}

// RecordCacheLookup counts a cache lookup outcome.
func RecordCacheLookup(kind, result string) {
	CacheLookups.WithLabelValues(kind, result).Inc()
}
