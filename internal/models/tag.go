// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Tag labels articles. Tags are shared and outlive any single article.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`

	// Number of published articles carrying the tag; set by TagStore.Popular.
	ArticleCount int `json:"article_count,omitempty"`
}
