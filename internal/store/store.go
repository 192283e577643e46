package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		key         TEXT PRIMARY KEY,
		coins       INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		user_key      TEXT NOT NULL REFERENCES users(key),
		title         TEXT NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		done          INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		completed_at  TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_key, done);

	CREATE TABLE IF NOT EXISTS focus_sessions (
		id                TEXT PRIMARY KEY,
		user_key          TEXT NOT NULL REFERENCES users(key),
		task_id           INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
		planned_duration  INTEGER NOT NULL,
		elapsed           INTEGER NOT NULL DEFAULT 0,
		state             TEXT NOT NULL DEFAULT 'running',
		completed         INTEGER NOT NULL DEFAULT 0,
		started_at        TEXT NOT NULL,
		ended_at          TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user  ON focus_sessions(user_key, state);
	CREATE INDEX IF NOT EXISTS idx_sessions_start ON focus_sessions(started_at);

	CREATE TABLE IF NOT EXISTS daily_rewards (
		user_key      TEXT NOT NULL REFERENCES users(key),
		date          TEXT NOT NULL,
		coins_earned  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_key, date)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		user_key        TEXT NOT NULL REFERENCES users(key),
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		type            TEXT NOT NULL,
		requirement     INTEGER NOT NULL,
		current_value   INTEGER NOT NULL DEFAULT 0,
		completed       INTEGER NOT NULL DEFAULT 0,
		reward          INTEGER NOT NULL DEFAULT 0,
		reward_claimed  INTEGER NOT NULL DEFAULT 0,
		UNIQUE(user_key, title)
	);

	CREATE TABLE IF NOT EXISTS streaks (
		user_key              TEXT PRIMARY KEY REFERENCES users(key),
		current_streak        INTEGER NOT NULL DEFAULT 0,
		longest_streak        INTEGER NOT NULL DEFAULT 0,
		last_qualifying_date  TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('default_duration', '1500'),
		('break_duration',   '30'),
		('daily_goal',       '120');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/rewardo/rewardo.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "rewardo", "rewardo.db"), nil
}
