package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS variables (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS macros (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			source TEXT NOT NULL,
			result TEXT NOT NULL,
			ts TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// GetVar retrieves a variable by name.
func (s *SQLite) GetVar(name string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v int64
	err := s.db.QueryRow("SELECT value FROM variables WHERE name = ?", name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// PutVar stores a variable by name, replacing a named expression of the same name.
func (s *SQLite) PutVar(name string, v int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM macros WHERE name = ?", name); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO variables (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value
		`, name, v)
		return err
	})
}

// Vars returns every stored variable.
func (s *SQLite) Vars() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, value FROM variables")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]int64)
	for rows.Next() {
		var name string
		var v int64
		if err := rows.Scan(&name, &v); err != nil {
			return nil, err
		}
		result[name] = v
	}
	return result, rows.Err()
}

// GetMacro retrieves a named expression.
func (s *SQLite) GetMacro(name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var src string
	err := s.db.QueryRow("SELECT source FROM macros WHERE name = ?", name).Scan(&src)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return src, true, nil
}

// PutMacro stores a named expression, replacing a variable of the same name.
func (s *SQLite) PutMacro(name, src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM variables WHERE name = ?", name); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO macros (name, source) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET source = excluded.source
		`, name, src)
		return err
	})
}

// Macros returns every named expression.
func (s *SQLite) Macros() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, source FROM macros")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]string)
	for rows.Next() {
		var name, src string
		if err := rows.Scan(&name, &src); err != nil {
			return nil, err
		}
		result[name] = src
	}
	return result, rows.Err()
}

// Delete removes a variable or named expression.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM variables WHERE name = ?", name); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM macros WHERE name = ?", name)
		return err
	})
}

// AppendHistory records one evaluation.
func (s *SQLite) AppendHistory(entry HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := entry.Ts
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO history (session, source, result, ts) VALUES (?, ?, ?, ?)
	`, entry.Session, entry.Source, entry.Result, ts.UTC().Format(time.RFC3339Nano))
	return err
}

// History returns the most recent entries, newest first.
func (s *SQLite) History(limit int) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query(
		"SELECT session, source, result, ts FROM history ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var ts string
		if err := rows.Scan(&e.Session, &e.Source, &e.Result, &ts); err != nil {
			return nil, err
		}
		e.Ts, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("history timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// inTx runs fn in a transaction (caller must hold lock).
func (s *SQLite) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
