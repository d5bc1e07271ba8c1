// Package tokencache persists token counts in a small SQLite database so
// repeated scans skip re-encoding unchanged files.
package tokencache

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS token_counts (
	encoding  TEXT NOT NULL,
	checksum  TEXT NOT NULL,
	count     INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (encoding, checksum)
);
`

// Store is a SQLite-backed token count cache.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path and ensures the schema
// exists. WAL mode keeps concurrent readers cheap.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("tokencache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tokencache: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get looks up a count by encoding and content checksum.
func (s *Store) Get(encoding, checksum string) (int, bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT count FROM token_counts WHERE encoding = ? AND checksum = ?`,
		encoding, checksum,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("tokencache: get: %w", err)
	}
	return count, true, nil
}

// Put stores a count, replacing any previous entry for the same key.
func (s *Store) Put(encoding, checksum string, count int) error {
	_, err := s.db.Exec(
		`INSERT INTO token_counts (encoding, checksum, count) VALUES (?, ?, ?)
		 ON CONFLICT (encoding, checksum) DO UPDATE SET count = excluded.count`,
		encoding, checksum, count,
	)
	if err != nil {
		return fmt.Errorf("tokencache: put: %w", err)
	}
	return nil
}

// Bound adapts a Store to a single encoding namespace, satisfying the
// calculator's cache interface.
type Bound struct {
	store    *Store
	encoding string
}

// ForEncoding binds the store to one encoding.
func (s *Store) ForEncoding(encoding string) *Bound {
	return &Bound{store: s, encoding: encoding}
}

func (b *Bound) Get(checksum string) (int, bool, error) {
	return b.store.Get(b.encoding, checksum)
}

func (b *Bound) Put(checksum string, count int) error {
	return b.store.Put(b.encoding, checksum, count)
}
