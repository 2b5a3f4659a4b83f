package test

import (
	"context"
	"log"

	"usersapi/internal/adapter/database/sqldb"
	"usersapi/internal/adapter/database/sqlite"
)

// InitTestDB returns an isolated, migrated in-memory SQLite database.
func InitTestDB() *sqldb.DB {
	db, err := sqlite.NewMemoryDB(context.Background())

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// CleanDB empties the users table and resets its id sequence.
func CleanDB(db *sqldb.DB) error {
	if _, err := db.Exec("DELETE FROM users"); err != nil {
		return err
	}

	_, err := db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")

	return err
}
