// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"threadpress/internal/handlers"
	"threadpress/internal/middleware"
	"threadpress/internal/models"
	"threadpress/internal/session"
)

// stubSessions serves a fixed session, or none when data is nil.
type stubSessions struct{ data *session.Data }

func (s stubSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, nil
}

// newTestRouter wires the router with handler groups whose dependencies
// are nil; only routes that stop in middleware or the health, readiness
// and metrics endpoints may be exercised.
func newTestRouter(t *testing.T, sess *session.Data, opts ...func(*Deps)) chi.Router {
	t.Helper()

	comments := middleware.NewRateLimiter("comments", 10, time.Minute)
	login := middleware.NewRateLimiter("login", 1, time.Minute)
	t.Cleanup(func() {
		comments.Stop()
		login.Stop()
	})

	d := Deps{
		Sessions: stubSessions{data: sess},
		Limiters: Limiters{Comments: comments, Login: login},
		Handlers: Handlers{
			Articles: handlers.NewArticles(nil, nil, nil, nil, nil, nil, handlers.Limits{}),
			Catalog:  handlers.NewCatalog(nil, nil, nil),
			Comments: handlers.NewComments(nil, nil),
			Auth:     handlers.NewAuth(nil, nil),
		},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return New(d)
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRouterGlobalMiddleware(t *testing.T) {
	r := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should be applied globally")
	}
}

func TestRouterMetrics(t *testing.T) {
	r := newTestRouter(t, nil)

	// Serve one request first so the HTTP counters have a sample.
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "threadpress_http_requests_total") {
		t.Error("metrics output should include the HTTP request counter")
	}
}

func TestRouterAccessControl(t *testing.T) {
	reader := &session.Data{UserID: uuid.New(), Role: models.RoleReader}
	commentID := uuid.New().String()

	tests := []struct {
		name   string
		sess   *session.Data
		method string
		path   string
		status int
	}{
		{"anonymous comment", nil, "POST", "/api/articles/some-post/comments", http.StatusUnauthorized},
		{"anonymous moderation", nil, "PATCH", "/api/comments/" + commentID + "/status", http.StatusUnauthorized},
		{"reader moderation", reader, "PATCH", "/api/comments/" + commentID + "/status", http.StatusForbidden},
		{"unknown route", nil, "GET", "/api/nothing-here", http.StatusNotFound},
		{"wrong method", nil, "PUT", "/health", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.sess)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`)))
			if rr.Code != tt.status {
				t.Errorf("status: got %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestRouterLoginRateLimited(t *testing.T) {
	r := newTestRouter(t, nil)

	// A malformed body is rejected before any user lookup.
	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest("POST", "/api/session", strings.NewReader(`{`)))
	if first.Code != http.StatusBadRequest {
		t.Fatalf("first attempt: got %d, want 400", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest("POST", "/api/session", strings.NewReader(`{`)))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second attempt: got %d, want 429", second.Code)
	}
}

func TestRouterReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name   string
		checks map[string]Check
		status int
		want   string
	}{
		{"no checks", nil, http.StatusOK, "ready"},
		{"all up", map[string]Check{"postgres": ok, "valkey": ok}, http.StatusOK, "ready"},
		{"one down", map[string]Check{"postgres": ok, "valkey": down}, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, nil, func(d *Deps) { d.Checks = tt.checks })
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest("GET", "/ready", nil))

			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.status)
			}
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.want {
				t.Errorf("status field: got %q, want %q", body.Status, tt.want)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Errorf("checks: got %v", body.Checks)
			}
			if strings.Contains(rr.Body.String(), "connection refused") {
				t.Error("check errors must not be exposed")
			}
		})
	}
}

func TestRouterHSTS(t *testing.T) {
	r := newTestRouter(t, nil, func(d *Deps) { d.HSTS = true })
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS header")
	}
}

func TestRouterSessionNotCached(t *testing.T) {
	r := newTestRouter(t, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/session", nil))
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control: got %q, want no-store", got)
	}
}
