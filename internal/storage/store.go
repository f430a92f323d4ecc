// Package storage provides the data persistence layer: a local SQLite
// database holding the expenses, categories, settings, and reminders
// collections. It is context-agnostic and safe to open from both the page
// gateway and the background worker.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hively/hively/internal/bus"
	"github.com/hively/hively/internal/common"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store wraps the single shared SQLite handle. Every mutating operation
// publishes exactly one change notification after it commits; bulk operations
// publish once for the whole batch.
type Store struct {
	db      *sql.DB
	changes *bus.Bus
	dbPath  string
}

// Open opens (creating if needed) the database at dbPath. The changes bus may
// be nil for read-only contexts such as the worker's periodic wake, which has
// no subscribers to notify.
func Open(dbPath string, changes *bus.Bus) (*Store, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %v", common.ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", common.ErrStoreUnavailable, err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", common.ErrStoreUnavailable, err)
	}

	return &Store{
		db:      db,
		dbPath:  dbPath,
		changes: changes,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// notify publishes a single change notification. Called once per mutating
// operation, after the commit.
func (s *Store) notify() {
	if s.changes != nil {
		s.changes.Publish()
	}
}
