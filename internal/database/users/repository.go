// Package users provides database operations for user management.
//
// Passwords are hashed on the way in: the User BeforeCreate hook hashes on
// insert, and UpdateUser hashes a replacement password before writing it.
// Reads never clear the hash; callers rely on the `json:"-"` tag of
// entities.User to keep it out of responses.
//
// # Usage
//
//	repo := users.NewRepository(db, cfg.Auth.BcryptCost)
//	user, err := repo.GetUserByEmail(ctx, "a@x.com")
package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/crypto"
	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
)

// Repository handles all user database operations.
type Repository struct {
	db         *gorm.DB
	bcryptCost int
}

// NewRepository creates a new users repository hashing passwords with the given bcrypt cost.
func NewRepository(db *gorm.DB, bcryptCost int) *Repository {
	return &Repository{db: db, bcryptCost: bcryptCost}
}

func (r *Repository) withContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(crypto.WithCost(ctx, r.bcryptCost))
}

func withContent(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Books", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
}

// ListUsers returns every user with their posts and books.
func (r *Repository) ListUsers(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := withContent(r.withContext(ctx)).Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserByID retrieves a user with their posts and books.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := withContent(r.withContext(ctx)).First(&user, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by exact email match, without related content.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.withContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

// CreateUser inserts a user. The plain-text password is hashed by the entity hook.
func (r *Repository) CreateUser(ctx context.Context, username, email, password string) (*entities.User, error) {
	user := &entities.User{
		Username: username,
		Email:    email,
		Password: password,
	}

	if err := r.withContext(ctx).Create(user).Error; err != nil {
		return nil, translateWriteError(err)
	}

	return user, nil
}

// UpdateUser applies the non-nil fields of update and returns the number of rows changed.
func (r *Repository) UpdateUser(ctx context.Context, id uint, update entities.UserUpdate) (int64, error) {
	if update.IsEmpty() {
		return 0, nil
	}

	fields := make(map[string]any, 3)
	if update.Username != nil {
		if err := entities.ValidateUsername(*update.Username); err != nil {
			return 0, err
		}
		fields["username"] = *update.Username
	}
	if update.Email != nil {
		if err := entities.ValidateEmail(*update.Email); err != nil {
			return 0, err
		}
		fields["email"] = *update.Email
	}
	if update.Password != nil {
		hash, err := crypto.HashPassword(*update.Password, r.bcryptCost)
		if err != nil {
			if errors.Is(err, crypto.ErrPasswordTooShort) || errors.Is(err, crypto.ErrPasswordTooLong) {
				return 0, fmt.Errorf("%w: %v", entities.ErrInvalidUser, err)
			}
			return 0, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password"] = hash
	}

	result := r.withContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return 0, translateWriteError(result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteUser removes a user and returns the number of rows deleted.
// Posts and books are left for the purge task.
func (r *Repository) DeleteUser(ctx context.Context, id uint) (int64, error) {
	result := r.withContext(ctx).Delete(&entities.User{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Exists reports whether a user with the given ID is present. It takes a
// plain handle so the content repositories can check owners with it.
func Exists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}
