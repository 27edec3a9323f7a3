// Package sqlite stores the ledger chain in a local SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const busyTimeoutMillis = 5000

// Repository is the ledger block store.
type Repository struct {
	db      *sql.DB
	metrics Metrics
}

// DSN returns the connection string for the database file at path. Write
// transactions start with BEGIN IMMEDIATE so concurrent writers serialize on
// the database lock instead of failing at commit.
func DSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// ReadOnlyDSN returns a connection string that opens path without write
// access and without touching its journal mode.
func ReadOnlyDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
	q.Set("mode", "ro")
	return "file:" + path + "?" + q.Encode()
}

// NewRepository opens the database at path. Call Migrate before use.
func NewRepository(path string, metrics Metrics) (*Repository, error) {
	return open(path, DSN(path), metrics)
}

// NewReadOnlyRepository opens an existing database for reading only.
// Appends and migrations fail.
func NewReadOnlyRepository(path string, metrics Metrics) (*Repository, error) {
	return open(path, ReadOnlyDSN(path), metrics)
}

func open(path, dsn string, metrics Metrics) (*Repository, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if metrics == nil {
		return nil, errors.New("sqlite metrics is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return &Repository{db: db, metrics: metrics}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// isConflict reports whether err means another writer got to the tail first.
func isConflict(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}
