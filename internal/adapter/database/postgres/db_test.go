package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersapi/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	duplicate := &pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"}
	notNull := &pgconn.PgError{Code: "23502"}

	assert.True(t, IsUniqueViolation(duplicate))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", duplicate)))
	assert.False(t, IsUniqueViolation(notNull))
	assert.False(t, IsUniqueViolation(errors.New("duplicate key value")))
}

func TestURL(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5433, User: "app", Password: "p@ss:word"}

	parsed, err := url.Parse(URL(cfg, "users_api"))

	require.NoError(t, err)
	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "db:5433", parsed.Host)
	assert.Equal(t, "/users_api", parsed.Path)
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))

	password, _ := parsed.User.Password()
	assert.Equal(t, "p@ss:word", password)
}
