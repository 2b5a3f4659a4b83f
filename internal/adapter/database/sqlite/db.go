package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"

	"usersapi/internal/adapter/database/migrations"
	"usersapi/internal/adapter/database/sqldb"
	"usersapi/pkg/config"
)

const driverName = "sqlite3"

// NewDB opens the SQLite file at cfg.Path and brings its schema up to date.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sqldb.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", cfg.Path)

	sqlDB, err := sqldb.Open(ctx, sqldb.Options{
		DriverName:   driverName,
		DSN:          dsn,
		System:       "sqlite",
		Name:         cfg.Path,
		MaxOpenConns: cfg.MaxOpenConns,
		SQLLog:       cfg.SQLLog,
	})

	if err != nil {
		return nil, err
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("SQLite database ready", zap.String("path", cfg.Path))

	return sqldb.New(sqlDB, config.DriverSQLite, IsUniqueViolation), nil
}

// NewMemoryDB opens a private in-memory database. Every call gets its own
// store, shared by the single connection the pool is allowed to hold.
func NewMemoryDB(ctx context.Context) (*sqldb.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	sqlDB, err := sqldb.Open(ctx, sqldb.Options{
		DriverName:   driverName,
		DSN:          dsn,
		System:       "sqlite",
		Name:         "memory",
		MaxOpenConns: 1,
	})

	if err != nil {
		return nil, err
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return sqldb.New(sqlDB, config.DriverSQLite, IsUniqueViolation), nil
}

func RunMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})

	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrations.New(migrations.SQLite, driver)

	if err != nil {
		return err
	}

	return migrations.Up(m)
}

func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error

	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
