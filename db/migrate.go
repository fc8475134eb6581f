package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending migration for the dialect of db.
func Migrate(db *sqlx.DB) error {
	driverName := db.DriverName()

	src, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", driverName, err)
	}

	var target database.Driver
	switch driverName {
	case DriverPostgres:
		// WithInstance would close the pool on Close, so the driver gets a
		// dedicated connection that is returned when migrations finish.
		conn, err := db.Conn(context.Background())
		if err != nil {
			return fmt.Errorf("failed to acquire migration connection: %w", err)
		}
		pg, err := postgres.WithConnection(context.Background(), conn, &postgres.Config{})
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to create postgres migrate driver: %w", err)
		}
		defer pg.Close()
		target = pg
	case DriverSQLite:
		// sqlite3 driver's Close closes db itself, so it is left open.
		target, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite3 migrate driver: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", driverName)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, target)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
