package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/crypto"
)

// ErrInvalidUser wraps every field validation failure for users.
var ErrInvalidUser = errors.New("invalid user")

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialized
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts"`
	Books     []Book    `gorm:"foreignKey:UserID" json:"books"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON always renders posts and books as arrays, also when they were not loaded.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	out := plain(u)
	if out.Posts == nil {
		out.Posts = []Post{}
	}
	if out.Books == nil {
		out.Books = []Book{}
	}
	return json.Marshal(out)
}

// UserUpdate holds the fields a client may change. Nil fields are left untouched.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// IsEmpty reports whether the update carries no fields.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil
}

// BeforeCreate validates the record and replaces the plain-text password with its hash.
// The bcrypt cost comes from the statement context (see crypto.WithCost).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(u.Password, crypto.CostFromContext(tx.Statement.Context))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	u.Password = hash
	return nil
}

// ValidateUsername rejects blank usernames and ones that do not fit the column.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if len(username) > 100 {
		return fmt.Errorf("%w: username exceeds 100 characters", ErrInvalidUser)
	}
	return nil
}

// ValidateEmail accepts a bare address such as "a@x.com".
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidUser)
	}
	if len(email) > 254 {
		return fmt.Errorf("%w: email exceeds 254 characters", ErrInvalidUser)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("%w: invalid email format", ErrInvalidUser)
	}
	return nil
}
