// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"threadpress/internal/middleware"
	"threadpress/internal/models"
	"threadpress/internal/session"
)

// UserAuthenticator looks up users and checks their passwords.
type UserAuthenticator interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// SessionIssuer starts and ends sessions.
type SessionIssuer interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups the session endpoints.
type Auth struct {
	users    UserAuthenticator
	sessions SessionIssuer
}

// NewAuth creates the auth handler group.
func NewAuth(users UserAuthenticator, sessions SessionIssuer) *Auth {
	return &Auth{users: users, sessions: sessions}
}

// sessionUser is the public view of the signed-in user.
type sessionUser struct {
	ID          uuid.UUID   `json:"id"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
}

// Login checks credentials and starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if msg := validationMessage(req); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	// The password is checked even for unknown emails so both failures
	// take the same time.
	if ok := a.users.CheckPassword(user, req.Password); user == nil || !ok {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	data := &session.Data{UserID: user.ID, DisplayName: user.DisplayName, Role: user.Role}
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		handleError(w, r, err)
		return
	}

	slog.Info("user signed in", "user", user.ID)
	writeJSON(w, http.StatusOK, sessionUser{ID: user.ID, DisplayName: user.DisplayName, Role: user.Role})
}

// Logout ends the current session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user, or 401.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, sessionUser{ID: sess.UserID, DisplayName: sess.DisplayName, Role: sess.Role})
}
