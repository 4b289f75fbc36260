// migrate.go handles database migration using golang-migrate.
//
// Migrations are SQL files embedded into the binary, one directory per
// dialect. Each migration has an "up" (apply) and "down" (rollback) file.
// The migrate library tracks which migrations have been applied in a
// schema_migrations table.
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFiles embed.FS

// RunMigrations applies all pending database migrations.
// This is called at application startup to ensure the schema is up to date.
func (db *DB) RunMigrations(log *zap.Logger) error {
	var (
		driver migratedb.Driver
		err    error
	)

	// Create the golang-migrate driver that matches our connection
	dialect := db.DriverName()
	switch dialect {
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.DB.DB, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db.DB.DB, &sqlite.Config{})
	default:
		return fmt.Errorf("no migrations for driver %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	// Run all pending migrations
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("database: no new migrations to apply", zap.String("driver", dialect))
	} else {
		version, dirty, _ := m.Version()
		log.Info("database: migrated",
			zap.String("driver", dialect),
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
	}

	return nil
}
