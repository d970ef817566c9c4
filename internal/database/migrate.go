package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	appconfig "github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/migrations"
)

// RunMigrations applies the embedded migrations for the connection's driver.
// The migrate instance is not closed because that would close db as well.
func RunMigrations(db *sqlx.DB) error {
	var (
		driver migratedb.Driver
		dir    string
		err    error
	)
	switch db.DriverName() {
	case appconfig.DriverSQLite:
		dir = "sqlite"
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	case appconfig.DriverPostgres:
		dir = "postgres"
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}
