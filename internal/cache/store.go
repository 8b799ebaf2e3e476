package cache

import (
	"database/sql"
	"fmt"
	"os"

	"lyricflow/internal/shared"
)

const createTranslationsTable = `
CREATE TABLE IF NOT EXISTS translations (
	text TEXT NOT NULL,
	lang TEXT NOT NULL,
	translated TEXT NOT NULL,
	recency INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	PRIMARY KEY (text, lang)
)`

// Row is one persisted translation.
type Row struct {
	Text       string
	Lang       string
	Translated string
	Recency    uint64
	Seq        uint64
}

// Store persists cache contents to a single SQLite file.
type Store struct {
	path string
	db   *sql.DB
}

// NewStore opens (or creates) the cache database at path.
func NewStore(path string) (*Store, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	if _, err := db.Exec(createTranslationsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", shared.ErrCacheCorrupt, err)
	}
	return &Store{path: path, db: db}, nil
}

// Load reads every persisted translation. An error means the file is
// unreadable or malformed; callers should treat the store as empty.
func (s *Store) Load() ([]Row, error) {
	rows, err := s.db.Query(`SELECT text, lang, translated, recency, seq FROM translations`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCacheCorrupt, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Text, &r.Lang, &r.Translated, &r.Recency, &r.Seq); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrCacheCorrupt, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCacheCorrupt, err)
	}
	return out, nil
}

// Save replaces the persisted contents with rows in a single transaction.
func (s *Store) Save(rows []Row) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM translations`); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear cache table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO translations (text, lang, translated, recency, seq) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Text, r.Lang, r.Translated, r.Recency, r.Seq); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert cache row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache: %w", err)
	}
	return nil
}

// Reset drops the database file and recreates an empty store.
func (s *Store) Reset() error {
	if s.db != nil {
		s.db.Close()
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}

	db, err := shared.NewDatabase(s.path)
	if err != nil {
		return fmt.Errorf("failed to recreate cache store: %w", err)
	}
	if _, err := db.Exec(createTranslationsTable); err != nil {
		db.Close()
		return fmt.Errorf("failed to recreate cache table: %w", err)
	}
	s.db = db
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
