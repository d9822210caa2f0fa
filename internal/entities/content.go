package entities

import (
	"errors"
	"time"
)

// ErrOwnerNotFound is returned when content is written for a user that does not exist.
var ErrOwnerNotFound = errors.New("owner does not exist")

// ErrInvalidContent wraps field validation failures for posts and books.
var ErrInvalidContent = errors.New("invalid content")

// Post is a reading note written by a user, usually about one chapter.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Chapter     string    `gorm:"size:255" json:"chapter"`
	PostContent string    `gorm:"type:text" json:"post_content"`
	UserID      uint      `gorm:"index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PostUpdate struct {
	Title       *string `json:"title"`
	Chapter     *string `json:"chapter"`
	PostContent *string `json:"post_content"`
}

func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Chapter == nil && u.PostContent == nil
}

// Book is a title on a user's shelf.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookTitle string    `gorm:"size:512;not null" json:"book_title"`
	Author    string    `gorm:"size:256" json:"author"`
	UserID    uint      `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookUpdate struct {
	BookTitle *string `json:"book_title"`
	Author    *string `json:"author"`
}

func (u BookUpdate) IsEmpty() bool {
	return u.BookTitle == nil && u.Author == nil
}
