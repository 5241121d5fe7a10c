// Package postgres implements the repository interfaces on the hosted
// Postgres database (Supabase in production).
//
// CONNECTING:
// The pgx driver is used through database/sql (pgx/v5/stdlib) rather than a
// pgxpool. That keeps the repositories on the same *sql.DB surface as the
// sqlite package, and lets the tests drive them with go-sqlmock.
//
// PGBOUNCER:
// Supabase's transaction pooler listens on port 6543 and does not support
// prepared statements. When that port is detected, and the connection string
// did not pick a mode itself, the connection switches to
// QueryExecModeCacheDescribe: extended protocol, no named prepared statements.
//
// TABLE PREFIX:
// Every table name is prefixed (dev_, test_, ...) so several environments can
// share one database. Table names are interpolated with fmt.Sprintf before
// the query is sent; they never come from user input.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sakif/project-vault/internal/apperror"
)

const pgBouncerPort = 6543

// TableNames holds the prefixed table names for the current environment.
type TableNames struct {
	Projects string
	Notes    string
	Users    string
}

func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Projects: fmt.Sprintf("%sprojects", prefix),
		Notes:    fmt.Sprintf("%snotes", prefix),
		Users:    fmt.Sprintf("%susers", prefix),
	}
}

// DB owns the connection pool and the table names. The per-table
// repositories come from Projects, Notes and Users.
type DB struct {
	conn   *sql.DB
	tables *TableNames
}

// Open parses databaseURL, applies the PgBouncer adjustment, pings the
// server and creates any missing tables.
func Open(ctx context.Context, databaseURL, tablePrefix string) (*DB, error) {
	config, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing connection string: %w", err)
	}

	if config.Port == pgBouncerPort && config.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", pgBouncerPort)
	}

	conn := stdlib.OpenDB(*config)
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := NewWithConn(conn, tablePrefix)
	if err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("postgres connected", "host", config.Host, "port", config.Port, "table_prefix", tablePrefix)
	return db, nil
}

// NewWithConn wraps an already open pool. Tests pass a sqlmock connection.
func NewWithConn(conn *sql.DB, tablePrefix string) *DB {
	return &DB{conn: conn, tables: NewTableNames(tablePrefix)}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping backs the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Migrate creates the vault tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			link          TEXT NOT NULL DEFAULT '',
			preview_image TEXT NOT NULL DEFAULT '',
			tags          TEXT[] NOT NULL DEFAULT '{}',
			code_snippet  TEXT NOT NULL DEFAULT '',
			size          TEXT NOT NULL DEFAULT 'small',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, db.tables.Projects),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			category   TEXT NOT NULL DEFAULT 'prompt',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, db.tables.Notes),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			github_id  BIGINT NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, db.tables.Users),
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: running migrations: %w", err)
		}
	}
	return nil
}

func orderClause(ascending bool) string {
	if ascending {
		return "ORDER BY id ASC"
	}
	return "ORDER BY id DESC"
}

// limitArgs maps ListOptions paging onto LIMIT/OFFSET. A NULL limit is
// "LIMIT ALL" in Postgres.
func limitArgs(limit, offset int) (any, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return nil, offset
	}
	return limit, offset
}

func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// isUniqueViolation reports a 23505 unique_violation from the server.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}
