// Package store persists crawl facts between runs.
package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStorage backs persistent facts with a SQLite database and
// keeps a log of runs. It implements engine.FactStorage. Concurrency
// control across sessions is SQLite's, not the engine's.
type SQLiteStorage struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStorage opens or creates the database at dbPath.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStorage{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS facts (
		name TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		script TEXT NOT NULL,
		started_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadAll returns every persisted fact.
func (s *SQLiteStorage) LoadAll() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM facts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Persist flushes one fact mutation. Inserting a present fact and
// deleting an absent one are both no-ops at the SQL level.
func (s *SQLiteStorage) Persist(name string, present bool) error {
	if present {
		_, err := s.db.Exec(
			`INSERT INTO facts (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			name, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("persist fact %q: %w", name, err)
		}
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM facts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("clear fact %q: %w", name, err)
	}
	return nil
}

// BeginRun records a run of the named script and returns its ID.
func (s *SQLiteStorage) BeginRun(script string) (string, error) {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, script, started_at) VALUES (?, ?, ?)`,
		id, script, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// Close releases the database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
