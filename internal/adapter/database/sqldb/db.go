package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
)

// DB is a database/sql pool plus the pieces the user repository needs to
// stay dialect agnostic.
type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
	Driver       string

	uniqueViolation func(error) bool
}

type Options struct {
	// DriverName is the registered database/sql driver ("mysql", "sqlite3").
	DriverName string
	DSN        string
	// System and Name label otelsql spans.
	System string
	Name   string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	SQLLog bool

	// UniqueViolation reports whether a driver error is a UNIQUE constraint failure.
	UniqueViolation func(error) bool
}

// Open builds an instrumented pool and checks it answers.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	sqlDB, err := otelsql.Open(opts.DriverName, opts.DSN,
		otelsql.WithDBSystem(opts.System),
		otelsql.WithDBName(opts.Name),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.System, err)
	}

	if opts.SQLLog {
		logger := zerolog.New(os.Stdout).With().Timestamp().Str("db", opts.System).Logger()

		logged := sqldblogger.OpenDriver(opts.DSN, sqlDB.Driver(), zerologadapter.New(logger),
			sqldblogger.WithSQLQueryAsMessage(true),
			sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
		)

		sqlDB.Close()
		sqlDB = logged
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.System, err)
	}

	return sqlDB, nil
}

func New(sqlDB *sql.DB, driver string, uniqueViolation func(error) bool) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:              sqlDB,
		QueryBuilder:    &queryBuilder,
		Driver:          driver,
		uniqueViolation: uniqueViolation,
	}
}

func (db *DB) IsUniqueViolation(err error) bool {
	if err == nil || db.uniqueViolation == nil {
		return false
	}

	return db.uniqueViolation(err)
}
