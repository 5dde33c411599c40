package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/fatali-fataliyev/budget_dashboard/logging"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// runMySQLMigrations migrates through its own handle; closing the migrate
// instance closes that handle and releases the connection the driver pins.
func runMySQLMigrations(dsn string) error {
	migrateDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("open migration db: %w", err)
	}

	driver, err := migratemysql.WithInstance(migrateDB, &migratemysql.Config{})
	if err != nil {
		migrateDB.Close()
		return fmt.Errorf("create mysql migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/mysql")
	if err != nil {
		driver.Close()
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	return up(m)
}

// runSQLiteMigrations migrates on the application's own handle so an
// in-memory database is migrated in place. The migrate instance is not
// closed because that would close db.
func runSQLiteMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	return up(m)
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logging.Logger.Info("no new migration")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logging.Logger.Infof("database migrated to version %d (dirty=%t)", version, dirty)
	return nil
}
