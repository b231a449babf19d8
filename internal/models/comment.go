// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxCommentLen is the longest comment body accepted, in characters.
const MaxCommentLen = 3000

// Comment is a node in an article's discussion forest. Its parent, when
// set, always belongs to the same article.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	ArticleID uuid.UUID  `json:"article_id"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Content   string     `json:"content"`
	Status    Status     `json:"status"`
	ParentID  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Joined from users for display.
	AuthorName string `json:"author_name,omitempty"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
