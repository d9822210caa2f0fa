package posts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "posts.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Post{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db), db
}

// createOwner inserts a user row directly; the password hook only needs a valid plain value.
func createOwner(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{Username: "reader", Email: email, Password: "pw1234"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func strPtr(s string) *string { return &s }

func TestRepository_CreateAndGetPost(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, db, "a@x.com")

	post := &entities.Post{Title: "Opening", Chapter: "1", PostContent: "Great start", UserID: owner.ID}
	require.NoError(t, repo.CreatePost(ctx, post))
	assert.NotZero(t, post.ID)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opening", got.Title)
	assert.Equal(t, "Great start", got.PostContent)
	assert.Equal(t, owner.ID, got.UserID)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetPostByID(ctx, post.ID+100)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRepository_CreatePost_Validation(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, db, "a@x.com")

	err := repo.CreatePost(ctx, &entities.Post{Title: "  ", UserID: owner.ID})
	assert.ErrorIs(t, err, entities.ErrInvalidContent)

	err = repo.CreatePost(ctx, &entities.Post{Title: "Orphan", UserID: owner.ID + 1})
	assert.ErrorIs(t, err, entities.ErrOwnerNotFound)
}

func TestRepository_UpdatePost_ScopedToOwner(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, db, "a@x.com")
	other := createOwner(t, db, "b@x.com")

	post := &entities.Post{Title: "Draft", UserID: owner.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	n, err := repo.UpdatePost(ctx, post.ID, other.ID, entities.PostUpdate{Title: strPtr("Hijacked")})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.UpdatePost(ctx, post.ID, owner.ID, entities.PostUpdate{Title: strPtr("Final"), Chapter: strPtr("2")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, "2", got.Chapter)

	_, err = repo.UpdatePost(ctx, post.ID, owner.ID, entities.PostUpdate{Title: strPtr("")})
	assert.ErrorIs(t, err, entities.ErrInvalidContent)
}

func TestRepository_DeletePost(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, db, "a@x.com")
	other := createOwner(t, db, "b@x.com")

	post := &entities.Post{Title: "Note", UserID: owner.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	n, err := repo.DeletePost(ctx, post.ID, other.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeletePost(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRepository_DeleteByUserAndOrphans(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	keep := createOwner(t, db, "a@x.com")
	gone := createOwner(t, db, "b@x.com")

	require.NoError(t, repo.CreatePost(ctx, &entities.Post{Title: "Kept", UserID: keep.ID}))
	require.NoError(t, repo.CreatePost(ctx, &entities.Post{Title: "Gone 1", UserID: gone.ID}))
	require.NoError(t, repo.CreatePost(ctx, &entities.Post{Title: "Gone 2", UserID: gone.ID}))

	require.NoError(t, db.Delete(&entities.User{}, gone.ID).Error)

	n, err := repo.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteByUser(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
