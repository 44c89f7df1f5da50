package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs migrations.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single user, single writer. One connection also keeps per-connection
	// pragmas in force for every statement.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ProgressRepo returns a ProgressRepo backed by this store.
func (s *Store) ProgressRepo() ProgressRepo {
	return &progressRepo{db: s.db}
}

// SessionRepo returns a SessionRepo backed by this store.
func (s *Store) SessionRepo() SessionRepo {
	return &sessionRepo{db: s.db}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS progress (
		item_id            TEXT PRIMARY KEY,
		completion_status  TEXT NOT NULL DEFAULT 'not_started',
		progress_percent   REAL NOT NULL DEFAULT 0,
		last_accessed_at   TEXT,
		time_spent_minutes INTEGER NOT NULL DEFAULT 0,
		access_count       INTEGER NOT NULL DEFAULT 0,
		last_score         REAL,
		average_score      REAL,
		scored_sessions    INTEGER NOT NULL DEFAULT 0,
		completion_date    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		seq              INTEGER PRIMARY KEY AUTOINCREMENT,
		id               TEXT NOT NULL UNIQUE,
		item_id          TEXT NOT NULL,
		start_time       TEXT NOT NULL,
		end_time         TEXT,
		duration_minutes INTEGER,
		progress_at_end  REAL NOT NULL DEFAULT 0,
		score            REAL,
		notes            TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_start_time ON sessions (start_time)`,
	`CREATE INDEX IF NOT EXISTS sessions_item_id ON sessions (item_id)`,
}

// migrate creates the schema. Every statement is idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. UPSCPREP_DB environment variable
// 2. $XDG_DATA_HOME/upscprep/upscprep.db
// 3. ~/.local/share/upscprep/upscprep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("UPSCPREP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "upscprep", "upscprep.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
