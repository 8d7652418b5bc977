package db

import (
	"path/filepath"
	"testing"
	"time"

	"cityguide/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Open("file:" + filepath.Join(t.TempDir(), "cityguide.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestIsSQLite(t *testing.T) {
	assert.True(t, isSQLite("file:/tmp/x.db?_foreign_keys=on"))
	assert.True(t, isSQLite(":memory:"))
	assert.True(t, isSQLite("cityguide.db"))
	assert.False(t, isSQLite("host=localhost user=postgres dbname=cityguide"))
	assert.False(t, isSQLite("postgres://postgres@localhost/cityguide"))
}

func TestSeedPostsIsIdempotent(t *testing.T) {
	gdb := openTestDB(t)

	require.NoError(t, SeedPosts(gdb))
	require.NoError(t, SeedPosts(gdb))

	var count int64
	require.NoError(t, gdb.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(len(seedPosts)), count)

	var post models.Post
	require.NoError(t, gdb.First(&post, "id = ?", SeedPostID("Coban Rondo Waterfall")).Error)
	assert.Equal(t, models.PostTypePlace, post.Type)
	assert.Equal(t, []string{"Nature", "Waterfall", "Adventure"}, post.Tags)
}

func TestLedgerRowsNeedExactlyOneIdentity(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, SeedPosts(gdb))
	postID := SeedPostID("Toko Oen - Heritage Ice Cream Since 1930")
	user, fp := "user-1", "fp123"

	both := models.HelpfulVote{ID: uuid.NewString(), PostID: postID, UserID: &user, BrowserFingerprint: &fp, CreatedAt: time.Now()}
	assert.Error(t, gdb.Omit("Post").Create(&both).Error)

	neither := models.PostView{ID: uuid.NewString(), PostID: postID, CreatedAt: time.Now()}
	assert.Error(t, gdb.Omit("Post").Create(&neither).Error)

	orphan := models.HelpfulVote{ID: uuid.NewString(), PostID: uuid.NewString(), UserID: &user, CreatedAt: time.Now()}
	assert.ErrorIs(t, gdb.Omit("Post").Create(&orphan).Error, gorm.ErrForeignKeyViolated)
}
