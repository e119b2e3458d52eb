// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides note/model/character persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// Pragmas go in the DSN so they apply to every connection database/sql
	// pools, not just the one a plain Exec would hit. WAL for concurrent
	// readers, enforced foreign keys, and a bounded lock wait instead of an
	// immediate SQLITE_BUSY. _txlock=immediate makes write transactions take
	// the write lock at BEGIN, so a deferred read-to-write upgrade can never
	// fail mid-transaction.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);

		CREATE TABLE IF NOT EXISTS models (
			id INTEGER PRIMARY KEY,
			key TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 0 CHECK (active IN (0, 1))
		);

		CREATE UNIQUE INDEX IF NOT EXISTS ux_models_single_active
			ON models(active) WHERE active = 1;

		CREATE TABLE IF NOT EXISTS characters (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			prompt TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS user_characters (
			user_id INTEGER PRIMARY KEY,
			character_id INTEGER NOT NULL REFERENCES characters(id)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SeedModels inserts catalog entries that are not already present.
// Existing rows are left untouched, so the seed is safe to re-run and
// never disturbs the active flag.
func (s *SQLiteStore) SeedModels(ctx context.Context, models []*Model) error {
	for _, m := range models {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO models (id, key, label, active) VALUES (?, ?, ?, 0)`,
			m.ID, m.Key, m.Label,
		)
		if err != nil {
			return &StorageError{Op: "seeding model", Err: err}
		}
	}
	s.logger.Debug("seeded model catalog", "count", len(models))
	return nil
}

// SeedCharacters inserts persona catalog entries that are not already present.
func (s *SQLiteStore) SeedCharacters(ctx context.Context, characters []*Character) error {
	for _, c := range characters {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO characters (id, name, prompt) VALUES (?, ?, ?)`,
			c.ID, c.Name, c.Prompt,
		)
		if err != nil {
			return &StorageError{Op: "seeding character", Err: err}
		}
	}
	s.logger.Debug("seeded character catalog", "count", len(characters))
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
