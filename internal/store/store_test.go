// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"

	"threadpress/internal/database"
	"threadpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "threadpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "threadpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(testDSN(), database.DefaultPool)
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// unique returns a name that will not collide across test runs.
func unique(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// fixtures creates the author and category every article needs, and
// removes everything they own when the test finishes.
type fixtures struct {
	t        *testing.T
	db       *sql.DB
	author   *models.User
	category *models.Category
}

func newFixtures(t *testing.T, db *sql.DB) *fixtures {
	t.Helper()
	ctx := context.Background()

	email := unique("author") + "@store-test.local"
	author, err := NewUserStore(db).Create(ctx, email, "testpass123", "Store Tester", models.RoleReader)
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	cat, err := NewCategoryStore(db).Create(ctx, &models.Category{Title: unique("Fixture")})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	f := &fixtures{t: t, db: db, author: author, category: cat}
	t.Cleanup(func() {
		db.Exec("DELETE FROM articles WHERE author_id = $1", author.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", cat.ID)
		cleanUsers(t, db, email)
	})
	return f
}

// article creates an article in the fixture category.
func (f *fixtures) article(title string, status models.Status) *models.Article {
	f.t.Helper()
	a, err := NewArticleStore(f.db).Create(context.Background(), &models.Article{
		Title:      title,
		Body:       "Body of " + title,
		Status:     status,
		AuthorID:   f.author.ID,
		CategoryID: f.category.ID,
	})
	if err != nil {
		f.t.Fatalf("create article %q: %v", title, err)
	}
	return a
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanTags removes test tags by name. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM tags WHERE name = $1", name)
	}
}
