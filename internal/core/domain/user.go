package domain

import (
	"strings"
	"time"
)

// User is the single resource managed by the API. ID and the timestamps are
// assigned by storage and never change after creation.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims the name and folds the email so that two addresses that
// differ only by casing or surrounding whitespace collide on the unique index.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
