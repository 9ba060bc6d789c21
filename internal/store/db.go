// Package store persists point selections in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is an open selection database.
type Store struct {
	db         *sql.DB
	Selections *SelectionRepo
}

// Open migrates and opens the database at path, creating it if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	if err := RunMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	// Foreign keys are off by default in SQLite; point rows cascade on delete.
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, Selections: NewSelectionRepo(db)}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
