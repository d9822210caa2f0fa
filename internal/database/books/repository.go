// Package books provides database operations for books on a user's shelf.
//
// Like posts, writes are scoped to the owning user.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 123)
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
)

var ErrBookNotFound = errors.New("book not found")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBooks returns all books ordered by title.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("book_title ASC, id ASC").Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// GetBookByID retrieves a single book.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts a book after checking that its owner exists.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	if err := validateBookTitle(book.BookTitle); err != nil {
		return err
	}

	ok, err := users.Exists(ctx, r.db, book.UserID)
	if err != nil {
		return fmt.Errorf("failed to check book owner: %w", err)
	}
	if !ok {
		return entities.ErrOwnerNotFound
	}

	return r.db.WithContext(ctx).Create(book).Error
}

// UpdateBook applies the non-nil fields to a book owned by ownerID.
func (r *Repository) UpdateBook(ctx context.Context, id, ownerID uint, update entities.BookUpdate) (int64, error) {
	if update.IsEmpty() {
		return 0, nil
	}

	fields := make(map[string]any, 2)
	if update.BookTitle != nil {
		if err := validateBookTitle(*update.BookTitle); err != nil {
			return 0, err
		}
		fields["book_title"] = *update.BookTitle
	}
	if update.Author != nil {
		fields["author"] = *update.Author
	}

	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// DeleteBook removes a book owned by ownerID.
func (r *Repository) DeleteBook(ctx context.Context, id, ownerID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

// DeleteByUser removes every book of a user.
func (r *Repository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

// DeleteOrphans removes books whose owner no longer exists.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	result := db.Where("user_id NOT IN (?)", db.Model(&entities.User{}).Select("id")).Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

func validateBookTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: book_title is required", entities.ErrInvalidContent)
	}
	return nil
}
