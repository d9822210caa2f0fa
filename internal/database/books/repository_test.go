package books

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
	dbPath := filepath.Join(t.TempDir(), "books.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Book{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db), db
}

func createOwner(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{Username: "reader", Email: email, Password: "pw1234"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func strPtr(s string) *string { return &s }

func TestRepository_ListBooks(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, db, "a@x.com")

	require.NoError(t, repo.CreateBook(ctx, &entities.Book{BookTitle: "Solaris", Author: "Stanislaw Lem", UserID: owner.ID}))
	require.NoError(t, repo.CreateBook(ctx, &entities.Book{BookTitle: "Dune", Author: "Frank Herbert", UserID: owner.ID}))

	books, err := repo.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].BookTitle)
	assert.Equal(t, "Solaris", books[1].BookTitle)
}

func TestRepository_CreateBook_Validation(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, db, "a@x.com")

	err := repo.CreateBook(ctx, &entities.Book{BookTitle: "", UserID: owner.ID})
	assert.ErrorIs(t, err, entities.ErrInvalidContent)

	err = repo.CreateBook(ctx, &entities.Book{BookTitle: "Dune", UserID: 999})
	assert.ErrorIs(t, err, entities.ErrOwnerNotFound)
}

func TestRepository_UpdateAndDeleteBook(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, db, "a@x.com")
	other := createOwner(t, db, "b@x.com")

	book := &entities.Book{BookTitle: "Dune", UserID: owner.ID}
	require.NoError(t, repo.CreateBook(ctx, book))

	n, err := repo.UpdateBook(ctx, book.ID, other.ID, entities.BookUpdate{Author: strPtr("Someone")})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.UpdateBook(ctx, book.ID, owner.ID, entities.BookUpdate{Author: strPtr("Frank Herbert")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.BookTitle)
	assert.Equal(t, "Frank Herbert", got.Author)

	n, err = repo.DeleteBook(ctx, book.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetBookByID(ctx, book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_DeleteOrphans(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	keep := createOwner(t, db, "a@x.com")
	gone := createOwner(t, db, "b@x.com")

	require.NoError(t, repo.CreateBook(ctx, &entities.Book{BookTitle: "Kept", UserID: keep.ID}))
	require.NoError(t, repo.CreateBook(ctx, &entities.Book{BookTitle: "Orphaned", UserID: gone.ID}))
	require.NoError(t, db.Delete(&entities.User{}, gone.ID).Error)

	n, err := repo.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	books, err := repo.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Kept", books[0].BookTitle)
}
