package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatali-fataliyev/budget_dashboard/internal/budget"
	"github.com/fatali-fataliyev/budget_dashboard/internal/config"
	"github.com/fatali-fataliyev/budget_dashboard/logging"
	"github.com/go-sql-driver/mysql"
)

const (
	connectAttempts = 15
	connectDelay    = 3 * time.Second

	// One UTC layout for every stored timestamp, so they compare correctly
	// as text. Pragmas apply to every connection the pool opens.
	sqliteParams = "_time_format=sqlite&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

// Store is a budget.Storage that owns resources.
type Store interface {
	budget.Storage
	Close() error
}

// Open connects the storage backend named by cfg.StorageType and brings its
// schema up to date.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageType {
	case config.StorageInMemory:
		logging.Logger.Warn("using in-memory storage, data is lost on restart")
		return NewInMemoryStorage(), nil
	case config.StorageSQLite:
		db, err := OpenSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		return NewSQLStorage(db, config.StorageSQLite), nil
	case config.StorageMySQL:
		db, err := OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSQLStorage(db, config.StorageMySQL), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

// OpenSQLite opens path (or ":memory:") and migrates it. SQLite allows one
// writer, so the pool is held to a single connection; for ":memory:" that
// also keeps every query on the same database.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") && !strings.Contains(path, "?") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&" + sqliteParams
	} else {
		dsn += "?" + sqliteParams
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	logging.Logger.Info("Running migrations...")
	if err := runSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// OpenMySQL waits for the server, creates the database when it is missing,
// migrates it and returns the application handle.
func OpenMySQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn, err := cfg.MySQLDSN()
	if err != nil {
		return nil, err
	}
	dsnCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	dbname := dsnCfg.DBName
	if dbname == "" {
		return nil, fmt.Errorf("mysql dsn has no database name")
	}

	adminCfg := dsnCfg.Clone()
	adminCfg.DBName = ""

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %w", err)
	}
	defer adminDb.Close()

	if err := waitForDB(ctx, adminDb); err != nil {
		return nil, err
	}

	createDbSql := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_bin", strings.ReplaceAll(dbname, "`", "``"))
	if _, err := adminDb.ExecContext(ctx, createDbSql); err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	logging.Logger.Info("Running migrations...")
	if err := runMySQLMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Logger.Info("Connecting to database...")
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Logger.Info("Connected to database successfully")
	return db, nil
}

func waitForDB(ctx context.Context, db *sql.DB) error {
	for i := 0; i < connectAttempts; i++ {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/%d)", i+1, connectAttempts)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	return fmt.Errorf("database unreachable after multiple attempts")
}
