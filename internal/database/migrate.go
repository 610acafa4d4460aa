package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"caa_portal_backend/pkg/utils"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// Migrate applies (up) or rolls back (down) the embedded schema migrations.
func Migrate(db *sql.DB, up bool) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not read embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("could not create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration engine: %w", err)
	}
	// m.Close would also close db, which the caller still owns.
	defer src.Close()

	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		utils.LogError(verr, "Failed to read schema version")
	}
	utils.LogInfo("Database schema migrated", map[string]interface{}{
		"up":      up,
		"changes": !errors.Is(err, migrate.ErrNoChange),
		"version": version,
		"dirty":   dirty,
	})
	return nil
}
