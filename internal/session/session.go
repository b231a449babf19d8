// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps signed-in users in Valkey. The browser holds an
// opaque random token; Valkey holds the JSON payload under a hash of that
// token, so the keyspace alone cannot be replayed as cookies.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"threadpress/internal/models"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "tp_session"

	// DefaultTTL bounds a session's lifetime in Valkey and in the browser.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"

	// tokenLength is the length of rand.Text output.
	tokenLength = 26

	createAttempts = 3
)

var errTokenCollision = errors.New("session token collision")

// Data is what a session remembers about its user.
type Data struct {
	UserID      uuid.UUID   `json:"user_id"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Store issues, resolves and revokes sessions.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store. secure marks cookies Secure, for
// deployments served over TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

// WithTTL returns a copy of the store issuing sessions that live for ttl.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	c := *s
	c.ttl = ttl
	return &c
}

func storageKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Create stores data under a fresh token and sets the cookie carrying it.
// It returns the token.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	data.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	var token string
	for range createAttempts {
		token = rand.Text()
		ok, err := s.client.SetNX(ctx, storageKey(token), payload, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("session store: %w", err)
		}
		if ok {
			s.setCookie(w, token, int(s.ttl.Seconds()))
			return token, nil
		}
	}
	return "", fmt.Errorf("session create: %w", errTokenCollision)
}

// Get resolves the request's session cookie. It returns nil, nil when the
// request has no cookie or the session has expired.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	token, ok := tokenFrom(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, storageKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Destroy deletes the request's session, if any, and expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, ok := tokenFrom(r)
	if !ok {
		return nil
	}
	if err := s.client.Del(ctx, storageKey(token)).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	s.setCookie(w, "", -1)
	return nil
}

// tokenFrom reads the cookie, rejecting values no Create could have issued.
func tokenFrom(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || len(c.Value) != tokenLength {
		return "", false
	}
	return c.Value, true
}

func (s *Store) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
