package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var (
	_ Store    = (*SQLiteStore)(nil)
	_ Notifier = (*SQLiteStore)(nil)
)

// SQLiteStore implements Store backed by a single-table SQLite database.
// Events are published for changes made through this handle only.
type SQLiteStore struct {
	db *sql.DB
	*hub
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string, log *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}
	return &SQLiteStore{db: db, hub: newHub(log)}, nil
}

// Close unsubscribes every subscriber and closes the database connection.
func (s *SQLiteStore) Close() error {
	s.closeAll()
	return s.db.Close()
}

// Get returns the value stored under key. Read errors are reported as a
// missing key.
func (s *SQLiteStore) Get(key string) (string, bool) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err != nil {
		return "", false
	}
	return v, true
}

// Set inserts or replaces the value for key.
func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	s.broadcast(Event{Type: EventSet, Key: key, Value: value})
	return nil
}

// Delete removes keys in one transaction.
func (s *SQLiteStore) Delete(keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()
	for _, k := range keys {
		if _, err = tx.Exec(`DELETE FROM kv WHERE key = ?`, k); err != nil {
			return fmt.Errorf("deleting %s: %w", k, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.broadcast(Event{Type: EventDelete, Keys: keys})
	return nil
}
