package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&parkdomain.Park{},
		&applicationdomain.Application{},
		&invoicedomain.Invoice{},
		&auditdomain.AuditLog{},
	}
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate builds the schema from the models for dialects without SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	return db.AutoMigrate(Models()...)
}
