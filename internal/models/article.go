// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the publishing state shared by articles and comments.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Article is a blog post. A published article always belongs to exactly one
// category and has a non-empty title; slugs are unique across all articles.
type Article struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	ShortDescription string    `json:"short_description"`
	Body             string    `json:"body"`
	Status           Status    `json:"status"`
	Fixed            bool      `json:"fixed"`
	AuthorID         uuid.UUID `json:"author_id"`
	CategoryID       uuid.UUID `json:"category_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Populated by ArticleStore.SetTags / TagsFor, not a column.
	Tags []Tag `json:"tags,omitempty"`
}

// IsPublished returns true if the article is visible to readers.
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}
