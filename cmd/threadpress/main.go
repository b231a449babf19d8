// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the threadpress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadpress/internal/cache"
	"threadpress/internal/config"
	"threadpress/internal/database"
	"threadpress/internal/discussion"
	"threadpress/internal/handlers"
	"threadpress/internal/middleware"
	"threadpress/internal/ranking"
	"threadpress/internal/router"
	"threadpress/internal/session"
	"threadpress/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON outside development unless LOG_FORMAT says otherwise.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.JSONLogs() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"timezone", cfg.Location.String(),
	)

	db, err := database.Connect(cfg.DSN(), database.DefaultPool)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(context.Background(), cache.ValkeyOptions{
		Host:     cfg.ValkeyHost,
		Port:     cfg.ValkeyPort,
		Password: cfg.ValkeyPassword,
		DB:       cfg.ValkeyDB,
	})
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Outside development the server sits behind TLS: cookies are Secure
	// and responses carry HSTS.
	secure := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secure)

	// Rankings cached by a previous deploy may have been computed with
	// different knobs; start clean.
	rankingCache := cache.NewRankingCache(valkeyClient, cfg.PopularCacheTTL)
	rankingCache.InvalidateAll(context.Background())

	// Data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	commentStore := store.NewCommentStore(db)
	tagStore := store.NewTagStore(db)
	viewStore := store.NewViewStore(db)

	// Ranking and discussion core.
	popular := cache.NewCachedPopular(ranking.NewPopularity(viewStore), rankingCache)
	similar := ranking.NewSimilarity(articleStore, nil)
	searcher := ranking.NewSearcher(ranking.Weights{
		Title: cfg.SearchTitleWeight,
		Body:  cfg.SearchBodyWeight,
	}, cfg.SearchMinRank)
	search := ranking.NewSearchService(articleStore, searcher)
	thread := discussion.New(commentStore, articleStore)
	tags := cache.NewCachedTags(tagStore, rankingCache)

	commentLimiter := middleware.NewRateLimiter("comments", cfg.CommentRateLimit, time.Minute)
	defer commentLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter("login", cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Sessions: sessionStore,
		Limiters: router.Limiters{Comments: commentLimiter, Login: loginLimiter},
		Handlers: router.Handlers{
			Articles: handlers.NewArticles(articleStore, viewStore, popular, similar, search, thread, handlers.Limits{
				Popular:  cfg.PopularLimit,
				Similar:  cfg.SimilarLimit,
				Location: cfg.Location,
			}),
			Catalog:  handlers.NewCatalog(categoryStore, articleStore, tags),
			Comments: handlers.NewComments(thread, articleStore),
			Auth:     handlers.NewAuth(userStore, sessionStore),
		},
		Checks: map[string]router.Check{
			"postgres": db.PingContext,
			"valkey":   func(ctx context.Context) error { return valkeyClient.Ping(ctx).Err() },
		},
		HSTS: secure,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
