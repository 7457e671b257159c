// Package store provides the shared SQLite-opening and schema-migration
// routine used by the three backing stores in the system: the authority
// server's dns_records table, the cache server's dns_cache table, and the
// client's ephemeral/stacks tables. Each of those lives in its own
// subpackage with its own embedded migrations, but all of them open their
// connection through Open.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // pure-Go driver, no cgo
)

// Open opens (creating if necessary) a WAL-mode SQLite database at path and
// applies the migrations embedded in migrationsFS under migrationsDir.
func Open(path string, migrationsFS embed.FS, migrationsDir string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	if err := RunMigrations(conn, migrationsFS, migrationsDir); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return conn, nil
}

// RunMigrations applies the migrations embedded in migrationsFS under dir
// to conn. Exposed (beyond Open's internal use) so a store's Reset method
// can re-apply its schema after dropping tables for the --overwrite flag.
func RunMigrations(conn *sql.DB, migrationsFS embed.FS, dir string) error {
	sourceDriver, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	dbDriver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("up: %w", err)
	}
	return nil
}
