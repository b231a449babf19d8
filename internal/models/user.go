// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleReader    Role = "reader"
)

// User is an account that can author articles and comments.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleReader:
		return true
	}
	return false
}

// CanModerate returns true if the role may change comment status.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleModerator
}

// CanModerate returns true if the user may change comment status.
func (u *User) CanModerate() bool {
	return u.Role.CanModerate()
}
