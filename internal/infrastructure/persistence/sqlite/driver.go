package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Registered database/sql driver names
const (
	// DriverCGO is github.com/mattn/go-sqlite3
	DriverCGO = "sqlite3"
	// DriverPureGo is modernc.org/sqlite
	DriverPureGo = "sqlite"
)

// Open opens (creating if needed) the database at path and migrates it
func Open(ctx context.Context, driver, path string) (*sql.DB, error) {
	switch driver {
	case "":
		driver = DriverCGO
	case DriverCGO, DriverPureGo:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	// One writer keeps the read-merge-write in Append serialised
	db.SetMaxOpenConns(1)

	if err := NewMigrator(db).Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
