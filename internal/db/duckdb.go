// Package db owns the process-wide DuckDB connection backing the
// geometry store.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Get returns the singleton DuckDB connection.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		// Extensions might already be installed; errors here are fine.
		for _, ext := range []string{"json", "spatial"} {
			_, _ = instance.Exec(fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext))
		}
	})
	return instance, initErr
}

// Open returns a standalone DuckDB connection at the given path,
// bypassing the singleton. Used by tests.
func Open(path string) (*sql.DB, error) {
	return sql.Open("duckdb", path)
}

// Close closes the singleton connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}
