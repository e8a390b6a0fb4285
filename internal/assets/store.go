// Package assets implements the local store for user-provided dataset
// and model files. Entries are keyed by file name within a named
// partition and are independent of any training session.
package assets

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Partition names. These are the only two partitions the UI uses.
const (
	PartitionDatasets = "datasets"
	PartitionModels   = "models"
)

// Entry describes one stored file.
type Entry struct {
	Name      string
	Size      int64
	CreatedAt time.Time
}

// Store is a SQLite-backed key/value store for uploaded files.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS assets (
		partition  TEXT NOT NULL,
		name       TEXT NOT NULL,
		data       BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (partition, name)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Put stores data under (partition, name), replacing any existing entry
// with the same key.
func (s *Store) Put(partition, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("asset name must not be empty")
	}
	_, err := s.db.Exec(
		`INSERT INTO assets (partition, name, data, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (partition, name) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		partition, name, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", partition, name, err)
	}
	return nil
}

// Get returns the stored bytes for (partition, name).
func (s *Store) Get(partition, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		`SELECT data FROM assets WHERE partition = ? AND name = ?`,
		partition, name,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset %s/%s not found", partition, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", partition, name, err)
	}
	return data, nil
}

// List returns the entries in a partition, newest first.
func (s *Store) List(partition string) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT name, length(data), created_at FROM assets
		 WHERE partition = ? ORDER BY created_at DESC, name`,
		partition,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", partition, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.Name, &e.Size, &created); err != nil {
			return nil, fmt.Errorf("scan %s entry: %w", partition, err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes (partition, name). Deleting a missing entry is an error
// so the UI can tell the user the file was already gone.
func (s *Store) Delete(partition, name string) error {
	res, err := s.db.Exec(
		`DELETE FROM assets WHERE partition = ? AND name = ?`,
		partition, name,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", partition, name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("asset %s/%s not found", partition, name)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
