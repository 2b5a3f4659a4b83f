package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"go.uber.org/zap"

	"usersapi/internal/adapter/database/migrations"
	"usersapi/internal/adapter/database/sqldb"
	"usersapi/pkg/config"
)

const errDuplicateEntry = 1062

// NewDB creates the configured database when missing, opens the pool and
// applies the embedded migrations.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sqldb.DB, error) {
	if err := ensureDatabase(ctx, cfg); err != nil {
		return nil, err
	}

	sqlDB, err := sqldb.Open(ctx, sqldb.Options{
		DriverName:      "mysql",
		DSN:             DSN(cfg, cfg.Name, false),
		System:          "mysql",
		Name:            cfg.Name,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: 5 * time.Minute,
		SQLLog:          cfg.SQLLog,
	})

	if err != nil {
		return nil, err
	}

	if err := RunMigrations(DSN(cfg, cfg.Name, true)); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("MySQL database ready",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	return sqldb.New(sqlDB, config.DriverMySQL, IsUniqueViolation), nil
}

// DSN renders a go-sql-driver DSN. clientFoundRows makes an UPDATE that
// leaves a row unchanged still report it as affected.
func DSN(cfg config.DatabaseConfig, database string, multiStatements bool) string {
	c := driver.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c.DBName = database
	c.ParseTime = true
	c.ClientFoundRows = true
	c.MultiStatements = multiStatements
	c.Params = map[string]string{"charset": "utf8mb4"}

	return c.FormatDSN()
}

func ensureDatabase(ctx context.Context, cfg config.DatabaseConfig) error {
	db, err := sql.Open("mysql", DSN(cfg, "", false))

	if err != nil {
		return fmt.Errorf("open mysql server: %w", err)
	}

	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql server: %w", err)
	}

	statement := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", quoteIdentifier(cfg.Name))

	if _, err := db.ExecContext(ctx, statement); err != nil {
		return fmt.Errorf("create database %s: %w", cfg.Name, err)
	}

	return nil
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// RunMigrations uses its own short-lived pool; the migrate driver pins a
// connection until it is closed.
func RunMigrations(dsn string) error {
	db, err := sql.Open("mysql", dsn)

	if err != nil {
		return err
	}

	defer db.Close()

	migrationDriver, err := migratemysql.WithInstance(db, &migratemysql.Config{})

	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrations.New(migrations.MySQL, migrationDriver)

	if err != nil {
		return err
	}

	defer m.Close()

	return migrations.Up(m)
}

func IsUniqueViolation(err error) bool {
	var mysqlErr *driver.MySQLError

	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDuplicateEntry
	}

	return false
}
