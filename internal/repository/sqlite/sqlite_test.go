package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sakif/feedboard/internal/model"
)

// newTestDB opens a fresh database in a per-test temp directory. A file-backed
// database behaves the same under the connection pool as production does,
// which ":memory:" does not guarantee.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$fakehashfortesting",
		Name:         "Test User",
	}
	if err := db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *DB, creatorID, title string) *model.Post {
	t.Helper()

	post := &model.Post{
		Title:     title,
		Content:   "content for " + title,
		ImageURL:  "images/" + title + ".png",
		CreatorID: creatorID,
	}
	if err := db.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("creating test post: %v", err)
	}
	return post
}
