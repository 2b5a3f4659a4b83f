package mysql

import (
	"errors"
	"fmt"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersapi/pkg/config"
)

func TestIsUniqueViolation(t *testing.T) {
	duplicate := &driver.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'uq_users_email'"}
	other := &driver.MySQLError{Number: 1048, Message: "Column 'name' cannot be null"}

	assert.True(t, IsUniqueViolation(duplicate))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", duplicate)))
	assert.False(t, IsUniqueViolation(other))
	assert.False(t, IsUniqueViolation(errors.New("Duplicate entry")))
}

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 3307, User: "app", Password: "secret", Name: "users_api"}

	parsed, err := driver.ParseDSN(DSN(cfg, cfg.Name, false))

	require.NoError(t, err)
	assert.Equal(t, "db:3307", parsed.Addr)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "users_api", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
	assert.False(t, parsed.MultiStatements)

	server, err := driver.ParseDSN(DSN(cfg, "", true))

	require.NoError(t, err)
	assert.Empty(t, server.DBName)
	assert.True(t, server.MultiStatements)
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users_api`", quoteIdentifier("users_api"))
	assert.Equal(t, "`we``ird`", quoteIdentifier("we`ird"))
}
