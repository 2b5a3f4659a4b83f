package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"usersapi/internal/adapter/database/mongo"
	mongorepository "usersapi/internal/adapter/database/mongo/repository"
	"usersapi/internal/adapter/database/mysql"
	"usersapi/internal/adapter/database/postgres"
	pgrepository "usersapi/internal/adapter/database/postgres/repository"
	"usersapi/internal/adapter/database/sqldb"
	sqlrepository "usersapi/internal/adapter/database/sqldb/repository"
	"usersapi/internal/adapter/database/sqlite"
	"usersapi/internal/core/port"
	"usersapi/internal/core/telemetry"
	"usersapi/pkg/config"
)

// Store is an initialized backend: its user repository plus the hooks
// needed for health checks and shutdown.
type Store struct {
	Users  port.UserRepository
	driver string
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects the backend selected by cfg.Driver, creates the database
// and schema when missing and verifies connectivity. Any failure is
// returned; the caller must not serve traffic without a Store.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) (*Store, error) {
	store, err := open(ctx, cfg, logger)

	if err != nil {
		return nil, fmt.Errorf("initialize %s database: %w", cfg.Driver, err)
	}

	store.Users = NewInstrumentedRepository(store.Users, cfg.Driver, metrics)

	return store, nil
}

func open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := mysql.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db), nil

	case config.DriverSQLite:
		db, err := sqlite.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db), nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:  pgrepository.NewUserRepository(db),
			driver: config.DriverPostgres,
			ping:   db.Ping,
			close:  func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		db, err := mongo.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:  mongorepository.NewUserRepository(db),
			driver: config.DriverMongo,
			ping:   db.Ping,
			close:  db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// NewSQLStore wraps a database/sql backend (MySQL, SQLite).
func NewSQLStore(db *sqldb.DB) *Store {
	return &Store{
		Users:  sqlrepository.NewUserRepository(db),
		driver: db.Driver,
		ping:   db.PingContext,
		close:  func(context.Context) error { return db.Close() },
	}
}
