// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ViewEvent records the first time a viewer (identified by IP address)
// opened an article. There is at most one event per (article, viewer).
type ViewEvent struct {
	ID        int64     `json:"id"`
	ArticleID uuid.UUID `json:"article_id"`
	ViewerID  string    `json:"viewer_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// ViewStats holds the two windowed view counts of a published article used
// for popularity ranking.
type ViewStats struct {
	ArticleID uuid.UUID
	Week      int
	Today     int
}
