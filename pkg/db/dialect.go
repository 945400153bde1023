package db

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/smallbiznis/permitdesk/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Driver normalizes DATABASE_TYPE. Postgres is the default.
func Driver(cfg config.Config) string {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.DBType)); driver {
	case "", "postgresql", "pg":
		return DriverPostgres
	default:
		return driver
	}
}

// DSN builds the connection string for the configured driver. Every driver runs in UTC.
func DSN(cfg config.Config) (string, error) {
	switch Driver(cfg) {
	case DriverPostgres:
		sslMode := cfg.DBSSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode), nil
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName), nil
	case DriverSQLite:
		path := cfg.DBPath
		if path == "" {
			path = "permitdesk.db"
		}
		query := url.Values{}
		query.Set("_foreign_keys", "on")
		query.Set("_busy_timeout", "5000")
		return path + "?" + query.Encode(), nil
	default:
		return "", fmt.Errorf("unsupported database type %q", cfg.DBType)
	}
}

func Dialect(cfg config.Config) (gorm.Dialector, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	switch Driver(cfg) {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return postgres.Open(dsn), nil
	}
}
