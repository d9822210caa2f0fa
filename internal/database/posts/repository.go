// Package posts provides database operations for reading notes.
//
// Writes are scoped to an owner: updates and deletes match on both the post
// ID and the user ID, so a post owned by someone else behaves as missing.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
)

var ErrPostNotFound = errors.New("post not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPosts returns all posts, newest first.
func (r *Repository) ListPosts(ctx context.Context) ([]entities.Post, error) {
	var posts []entities.Post
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *Repository) GetPostByID(ctx context.Context, id uint) (*entities.Post, error) {
	var post entities.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// CreatePost inserts a post after checking that its owner exists.
func (r *Repository) CreatePost(ctx context.Context, post *entities.Post) error {
	if err := validateTitle(post.Title); err != nil {
		return err
	}

	ok, err := users.Exists(ctx, r.db, post.UserID)
	if err != nil {
		return fmt.Errorf("failed to check post owner: %w", err)
	}
	if !ok {
		return entities.ErrOwnerNotFound
	}

	return r.db.WithContext(ctx).Create(post).Error
}

// UpdatePost applies the non-nil fields to a post owned by ownerID.
func (r *Repository) UpdatePost(ctx context.Context, id, ownerID uint, update entities.PostUpdate) (int64, error) {
	if update.IsEmpty() {
		return 0, nil
	}

	fields := make(map[string]any, 3)
	if update.Title != nil {
		if err := validateTitle(*update.Title); err != nil {
			return 0, err
		}
		fields["title"] = *update.Title
	}
	if update.Chapter != nil {
		fields["chapter"] = *update.Chapter
	}
	if update.PostContent != nil {
		fields["post_content"] = *update.PostContent
	}

	result := r.db.WithContext(ctx).Model(&entities.Post{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// DeletePost removes a post owned by ownerID.
func (r *Repository) DeletePost(ctx context.Context, id, ownerID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&entities.Post{})
	return result.RowsAffected, result.Error
}

// DeleteByUser removes every post of a user.
func (r *Repository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.Post{})
	return result.RowsAffected, result.Error
}

// DeleteOrphans removes posts whose owner no longer exists.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	result := db.Where("user_id NOT IN (?)", db.Model(&entities.User{}).Select("id")).Delete(&entities.Post{})
	return result.RowsAffected, result.Error
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", entities.ErrInvalidContent)
	}
	return nil
}
