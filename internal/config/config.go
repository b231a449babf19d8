// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Logging
	LogLevel  string // "debug", "info", "warn", "error"
	LogFormat string // "text" or "json"; empty picks by Env

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache and session store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// Ranking
	PopularLimit      int
	SimilarLimit      int
	SearchMinRank     float64
	SearchTitleWeight float64
	SearchBodyWeight  float64
	PopularCacheTTL   time.Duration

	// Location is the timezone in which "today" starts for popularity.
	Location *time.Location

	// Per-minute request allowances: comment posts per user, login
	// attempts per client IP.
	CommentRateLimit int
	LoginRateLimit   int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is read first when present; variables already set in the environment
// win over it. Returns an error if critical values are missing in
// production mode or a value cannot be parsed.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	p := &parser{}
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "threadpress"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "threadpress"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyDB:       p.int("VALKEY_DB", 0),

		PopularLimit:      p.int("POPULAR_LIMIT", 10),
		SimilarLimit:      p.int("SIMILAR_LIMIT", 6),
		SearchMinRank:     p.float("SEARCH_MIN_RANK", 0.3),
		SearchTitleWeight: p.float("SEARCH_TITLE_WEIGHT", 1.0),
		SearchBodyWeight:  p.float("SEARCH_BODY_WEIGHT", 0.4),
		PopularCacheTTL:   p.duration("POPULAR_CACHE_TTL", time.Minute),
		Location:          p.location("APP_TIMEZONE", "UTC"),

		CommentRateLimit: p.int("COMMENT_RATE_LIMIT", 10),
		LoginRateLimit:   p.int("LOGIN_RATE_LIMIT", 5),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel maps LogLevel onto a slog level; unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// JSONLogs reports whether logs should be written as JSON. An explicit
// LOG_FORMAT wins; otherwise development logs are text.
func (c *Config) JSONLogs() bool {
	switch strings.ToLower(c.LogFormat) {
	case "json":
		return true
	case "text":
		return false
	}
	return !c.IsDev()
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser reads typed values and remembers the first parse error.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: invalid value %q: %w", key, value, err)
	}
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}

func (p *parser) location(key, fallback string) *time.Location {
	name := envOrDefault(key, fallback)
	loc, err := time.LoadLocation(name)
	if err != nil {
		p.fail(key, name, err)
		return time.UTC
	}
	return loc
}
