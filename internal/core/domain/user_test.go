package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Normalize(t *testing.T) {
	t.Run("should trim name and lowercase email", func(t *testing.T) {
		user := User{
			Name:  "  Ada Lovelace ",
			Email: "  Ada@Example.COM\t",
		}

		user.Normalize()

		assert.Equal(t, "Ada Lovelace", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
	})

	t.Run("should leave normalized values untouched", func(t *testing.T) {
		user := User{Name: "Bob", Email: "bob@example.com"}

		user.Normalize()

		assert.Equal(t, "Bob", user.Name)
		assert.Equal(t, "bob@example.com", user.Email)
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, NormalizeEmail("A@x.com"), NormalizeEmail(" a@x.com "))
}

func TestErrEmailConflict_Wrapped(t *testing.T) {
	err := fmt.Errorf("create user: %w", ErrEmailConflict)

	assert.True(t, errors.Is(err, ErrEmailConflict))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}
