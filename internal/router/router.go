// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// threadpress API.
package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"threadpress/internal/handlers"
	"threadpress/internal/middleware"
)

// readyTimeout bounds all readiness probes together.
const readyTimeout = 2 * time.Second

// Handlers bundles the handler groups mounted by the router.
type Handlers struct {
	Articles *handlers.Articles
	Catalog  *handlers.Catalog
	Comments *handlers.Comments
	Auth     *handlers.Auth
}

// Limiters are the rate limiters guarding write endpoints.
type Limiters struct {
	Comments *middleware.RateLimiter
	Login    *middleware.RateLimiter
}

// Check probes one backing service for /ready.
type Check func(ctx context.Context) error

// Deps is everything the router mounts.
type Deps struct {
	Sessions middleware.SessionLoader
	Limiters Limiters
	Handlers Handlers

	// Checks are run by /ready, keyed by service name.
	Checks map[string]Check

	// HSTS adds Strict-Transport-Security to every response.
	HSTS bool
}

// New creates the chi router with the global middleware and every route.
func New(d Deps) chi.Router {
	h := d.Handlers
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(d.HSTS))
	r.Use(middleware.LoadSession(d.Sessions))

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(d.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.Articles.List)
			r.Get("/popular", h.Articles.Popular)
			r.Get("/{slug}", h.Articles.Show)
			r.Get("/{slug}/similar", h.Articles.Similar)
			r.Get("/{slug}/comments", h.Comments.List)
			r.With(middleware.RequireSession, d.Limiters.Comments.By(middleware.SessionOrIP)).
				Post("/{slug}/comments", h.Comments.Create)
		})

		r.Get("/search", h.Articles.Search)

		r.Get("/categories", h.Catalog.Categories)
		r.Get("/categories/{slug}/articles", h.Catalog.CategoryArticles)
		r.Get("/tags/popular", h.Catalog.PopularTags)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/latest", h.Comments.Latest)
			r.With(middleware.RequireSession, middleware.RequireModerator).
				Patch("/{id}/status", h.Comments.SetStatus)
		})

		r.Route("/session", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.With(d.Limiters.Login.Middleware).Post("/", h.Auth.Login)
			r.Delete("/", h.Auth.Logout)
			r.Get("/", h.Auth.Me)
		})
	})

	return r
}

// healthHandler reports that the process is serving.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler runs every check and answers 503 if any failed.
func readyHandler(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.Warn("readiness check failed", "check", name, "error", err)
				results[name] = "unavailable"
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{"status": status, "checks": results})
	}
}
