package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type AppConfig struct {
	Port        string
	GinMode     string
	LogLevel    string
	ServiceName string

	OTLPEndpoint string

	RateLimitEnabled bool

	Database DatabaseConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	Timeout      time.Duration
	Path         string
	MongoURI     string
	SQLLog       bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_NAME", "users-api")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("RATE_LIMIT_ENABLED", false)

	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 0)
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "users_api")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_TIMEOUT", "5s")
	v.SetDefault("DATABASE_PATH", "users.db")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("SQL_LOG", false)

	return v
}

// Load reads .env when present and then resolves every setting from the
// environment, falling back to defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER")))

	switch driver {
	case DriverMySQL, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	timeout := v.GetDuration("DB_TIMEOUT")

	if timeout <= 0 {
		return nil, fmt.Errorf("invalid DB_TIMEOUT %q", v.GetString("DB_TIMEOUT"))
	}

	cfg := &AppConfig{
		Port:             v.GetString("PORT"),
		GinMode:          v.GetString("GIN_MODE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		ServiceName:      v.GetString("SERVICE_NAME"),
		OTLPEndpoint:     v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitEnabled: v.GetBool("RATE_LIMIT_ENABLED"),
		Database: DatabaseConfig{
			Driver:       driver,
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			Timeout:      timeout,
			Path:         v.GetString("DATABASE_PATH"),
			MongoURI:     v.GetString("MONGO_URI"),
			SQLLog:       v.GetBool("SQL_LOG"),
		},
	}

	cfg.Database.applyDriverDefaults()

	return cfg, nil
}

func (d *DatabaseConfig) applyDriverDefaults() {
	if d.Port == 0 {
		switch d.Driver {
		case DriverMySQL:
			d.Port = 3306
		case DriverPostgres:
			d.Port = 5432
		case DriverMongo:
			d.Port = 27017
		}
	}

	if d.User == "" {
		switch d.Driver {
		case DriverMySQL:
			d.User = "root"
		case DriverPostgres:
			d.User = "postgres"
		}
	}

	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = 10
	}
}

func (c *AppConfig) Addr() string {
	return ":" + c.Port
}
