package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@x.com", true},
		{"first.last@example.co.uk", true},
		{"", false},
		{"not-an-email", false},
		{"a@localhost", false},
		{"Alice <a@x.com>", false},
		{"a@@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidUser)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("a"))
	assert.ErrorIs(t, ValidateUsername(""), ErrInvalidUser)
	assert.ErrorIs(t, ValidateUsername("   "), ErrInvalidUser)
}

func TestUpdates_IsEmpty(t *testing.T) {
	name := "bob"

	assert.True(t, UserUpdate{}.IsEmpty())
	assert.False(t, UserUpdate{Username: &name}.IsEmpty())
	assert.True(t, PostUpdate{}.IsEmpty())
	assert.False(t, PostUpdate{Chapter: &name}.IsEmpty())
	assert.True(t, BookUpdate{}.IsEmpty())
	assert.False(t, BookUpdate{Author: &name}.IsEmpty())
}

func TestUser_MarshalJSON(t *testing.T) {
	t.Run("missing content renders as empty arrays", func(t *testing.T) {
		data, err := json.Marshal(&User{ID: 1, Username: "a", Email: "a@x.com", Password: "hash"})
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, []any{}, out["posts"])
		assert.Equal(t, []any{}, out["books"])
		assert.NotContains(t, out, "password")
	})

	t.Run("loaded content is kept", func(t *testing.T) {
		data, err := json.Marshal(User{Posts: []Post{{Title: "Opening"}}})
		require.NoError(t, err)

		var out map[string]any
		require.NoError(t, json.Unmarshal(data, &out))
		require.Len(t, out["posts"], 1)
		assert.Equal(t, []any{}, out["books"])
	})
}
