// Package sqlite implements the repository interfaces on an embedded SQLite file.
//
// WHERE THIS FITS:
// Production data lives in the hosted Postgres database (repository/postgres).
// SQLite is the zero-setup store for local runs and the store every repository
// test runs against, using ":memory:" so each test gets a fresh database.
//
// modernc.org/sqlite is a pure Go translation of SQLite: no CGo, no C
// compiler, cross-compiles like any other Go package.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB owns the connection pool. The per-table repositories come from
// Projects, Notes and Users and share it.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/vault.db" → file-based database (persistent)
//   - ":memory:"      → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ":memory:" databases are per connection; a second pooled connection
	// would see an empty schema.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets page renders read while an admin save is writing.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the vault tables. CREATE ... IF NOT EXISTS keeps it safe to
// run on every start.
//
// tags is a JSON array in a TEXT column; SQLite has no native array type and
// JSON keeps element order and embedded spaces intact.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			link          TEXT NOT NULL DEFAULT '',
			preview_image TEXT NOT NULL DEFAULT '',
			tags          TEXT NOT NULL DEFAULT '[]',
			code_snippet  TEXT NOT NULL DEFAULT '',
			size          TEXT NOT NULL DEFAULT 'small',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			category   TEXT NOT NULL DEFAULT 'prompt',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating notes table: %w", err)
	}

	// github_id is UNIQUE: each GitHub account maps to exactly one row.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}

// orderClause turns the list direction into SQL. Only two literal strings are
// ever produced, so interpolating the result is safe.
func orderClause(ascending bool) string {
	if ascending {
		return "ORDER BY id ASC"
	}
	return "ORDER BY id DESC"
}

// limitArgs maps ListOptions paging onto SQLite's LIMIT/OFFSET. SQLite treats
// a negative LIMIT as "no limit".
func limitArgs(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
