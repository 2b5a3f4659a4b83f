package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations_EveryDialectHasUpAndDown(t *testing.T) {
	for _, dialect := range []string{MySQL, Postgres, SQLite} {
		entries, err := fs.ReadDir(files, dialect)

		require.NoError(t, err, dialect)

		var names []string
		for _, entry := range entries {
			names = append(names, entry.Name())
		}

		assert.Contains(t, names, "000001_create_users_table.up.sql", dialect)
		assert.Contains(t, names, "000001_create_users_table.down.sql", dialect)
	}
}
