package http

import (
	"context"
	"time"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// This file consolidates the store interfaces used by HTTP controllers.
// The database repositories satisfy them; tests may substitute fakes.

// UserStore is implemented by users.Repository.
type UserStore interface {
	ListUsers(ctx context.Context) ([]entities.User, error)
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, username, email, password string) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint, update entities.UserUpdate) (int64, error)
	DeleteUser(ctx context.Context, id uint) (int64, error)
}

// PostStore is implemented by posts.Repository.
type PostStore interface {
	ListPosts(ctx context.Context) ([]entities.Post, error)
	GetPostByID(ctx context.Context, id uint) (*entities.Post, error)
	CreatePost(ctx context.Context, post *entities.Post) error
	UpdatePost(ctx context.Context, id, ownerID uint, update entities.PostUpdate) (int64, error)
	DeletePost(ctx context.Context, id, ownerID uint) (int64, error)
}

// BookStore is implemented by books.Repository.
type BookStore interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	UpdateBook(ctx context.Context, id, ownerID uint, update entities.BookUpdate) (int64, error)
	DeleteBook(ctx context.Context, id, ownerID uint) (int64, error)
}

// Pinger checks backend connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuditLogger records authentication and account events. Implemented by audit.Service.
type AuditLogger interface {
	LogAuth(userID uint, action string, info audit.RequestInfo, err error)
	LogUserChange(actorID, targetID uint, action, description string, info audit.RequestInfo)
}

// UserContentPurger schedules removal of a deleted user's posts and books.
// Implemented by tasks.Client.
type UserContentPurger interface {
	EnqueueUserPurge(ctx context.Context, userID uint) error
}

// MaintenanceStatus reports on the scheduled maintenance job. Implemented by
// scheduler.MaintenanceScheduler.
type MaintenanceStatus interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
}
