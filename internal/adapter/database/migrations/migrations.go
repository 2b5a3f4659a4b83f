package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed mysql/*.sql postgres/*.sql sqlite/*.sql
var files embed.FS

const (
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// New builds a migrator for dialect on top of an already connected driver.
func New(dialect string, driver database.Driver) (*migrate.Migrate, error) {
	source, err := iofs.New(files, dialect)

	if err != nil {
		return nil, fmt.Errorf("load %s migrations: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)

	if err != nil {
		return nil, fmt.Errorf("create %s migrator: %w", dialect, err)
	}

	return m, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
