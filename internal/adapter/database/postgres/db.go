package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"usersapi/internal/adapter/database/migrations"
	"usersapi/pkg/config"
)

const (
	maintenanceDatabase = "postgres"
	uniqueViolationCode = "23505"
)

type DB struct {
	*pgxpool.Pool
	QueryBuilder *squirrel.StatementBuilderType
	url          string
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if err := ensureDatabase(ctx, cfg); err != nil {
		return nil, err
	}

	dbURL := URL(cfg, cfg.Name)

	poolConfig, err := pgxpool.ParseConfig(dbURL)

	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)

	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := RunMigrations(dbURL); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("PostgreSQL database ready",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	return &DB{
		Pool:         pool,
		QueryBuilder: &psql,
		url:          dbURL,
	}, nil
}

func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

func URL(cfg config.DatabaseConfig, database string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + database,
		RawQuery: "sslmode=disable",
	}

	return u.String()
}

func ensureDatabase(ctx context.Context, cfg config.DatabaseConfig) error {
	conn, err := pgx.Connect(ctx, URL(cfg, maintenanceDatabase))

	if err != nil {
		return fmt.Errorf("connect postgres server: %w", err)
	}

	defer conn.Close(ctx)

	var exists bool

	err = conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Name).Scan(&exists)

	if err != nil {
		return fmt.Errorf("look up database %s: %w", cfg.Name, err)
	}

	if exists {
		return nil
	}

	_, err = conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.Name}.Sanitize())

	// Another instance may have created it in the meantime.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P04" {
		return nil
	}

	if err != nil {
		return fmt.Errorf("create database %s: %w", cfg.Name, err)
	}

	return nil
}

func RunMigrations(dbURL string) error {
	sqlDB, err := sql.Open("pgx", dbURL)

	if err != nil {
		return err
	}

	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})

	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrations.New(migrations.Postgres, driver)

	if err != nil {
		return err
	}

	defer m.Close()

	return migrations.Up(m)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	return false
}
