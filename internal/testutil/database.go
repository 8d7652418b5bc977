package testutil

import (
	"path/filepath"
	"testing"

	"cityguide/internal/db"
	"cityguide/internal/models"

	"gorm.io/gorm"
)

// NewTestDB opens a migrated SQLite database in a temp directory.
// The connection is closed when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := db.Open("file:" + path + "?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// CreatePost inserts a post with the given id and zeroed counters.
func CreatePost(t *testing.T, gdb *gorm.DB, id string) *models.Post {
	t.Helper()

	post := &models.Post{
		ID:        id,
		Type:      models.PostTypePlace,
		Title:     "Post " + id,
		Location:  "Malang",
		CreatedAt: PostTime,
	}
	if err := gdb.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}
