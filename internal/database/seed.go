package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdminEmail is the login of the development admin account.
const SeedAdminEmail = "admin@threadpress.local"

// Seed populates the database with initial development data: an admin
// author, a two-level category tree, a handful of tags and a published
// welcome article. It is a no-op once any user exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var adminID, rootID, childID, articleID string
	if err := tx.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, 'admin') RETURNING id
	`, SeedAdminEmail, string(hash), "Admin").Scan(&adminID); err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if err := tx.QueryRow(`
		INSERT INTO categories (title, slug, description)
		VALUES ('Programming', 'programming', 'Articles about writing software') RETURNING id
	`).Scan(&rootID); err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	if err := tx.QueryRow(`
		INSERT INTO categories (title, slug, description, parent_id)
		VALUES ('Go', 'go', 'The Go programming language', $1) RETURNING id
	`, rootID).Scan(&childID); err != nil {
		return fmt.Errorf("seed insert subcategory: %w", err)
	}

	if err := tx.QueryRow(`
		INSERT INTO articles (title, slug, short_description, body, status, fixed, author_id, category_id)
		VALUES ('Welcome to threadpress', 'welcome-to-threadpress',
		        'What this blog is about',
		        '# Welcome' || E'\n\n' || 'Threaded discussions, popular posts and related reading.',
		        'published', TRUE, $1, $2)
		RETURNING id
	`, adminID, childID).Scan(&articleID); err != nil {
		return fmt.Errorf("seed insert article: %w", err)
	}

	for _, name := range []string{"go", "backend", "welcome"} {
		if _, err := tx.Exec(`
			WITH t AS (INSERT INTO tags (name, slug) VALUES ($1, $1) RETURNING id)
			INSERT INTO article_tags (article_id, tag_id) SELECT $2, id FROM t
		`, name, articleID); err != nil {
			return fmt.Errorf("seed insert tag %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", SeedAdminEmail,
		"password", "admin",
	)

	return nil
}
