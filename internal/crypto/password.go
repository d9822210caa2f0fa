// Package crypto provides one-way password hashing for user credentials.
//
// Hashes are bcrypt strings. The cost is carried on the context so that
// persistence hooks, which only see a *gorm.DB, hash with the cost the
// repository was configured with.
package crypto

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted plain-text password.
const MinPasswordLength = 4

// MaxPasswordLength is bcrypt's input limit in bytes.
const MaxPasswordLength = 72

var (
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length of 72 bytes")
)

type costKey struct{}

// WithCost returns a context that makes HashPassword callers use the given bcrypt cost.
func WithCost(ctx context.Context, cost int) context.Context {
	return context.WithValue(ctx, costKey{}, cost)
}

// CostFromContext returns the bcrypt cost stored by WithCost, or bcrypt.DefaultCost.
func CostFromContext(ctx context.Context) int {
	if ctx == nil {
		return bcrypt.DefaultCost
	}
	if cost, ok := ctx.Value(costKey{}).(int); ok && cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		return cost
	}
	return bcrypt.DefaultCost
}

// ValidatePassword checks the plain-text length limits.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string, cost int) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether candidate matches the stored hash.
func VerifyPassword(hash, candidate string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
