// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C toolchain
// is needed and cross-compilation stays simple. The database file is the
// whole deployment story for the data layer: no separate server process.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and exposes the per-aggregate
// repositories that share it.
type DB struct {
	conn  *sql.DB
	Users *UserRepo
	Posts *PostRepo
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress. Handlers run
	// concurrently across requests, so this matters even for a small app.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{
		conn:  conn,
		Users: &UserRepo{conn: conn},
		Posts: &PostRepo{conn: conn},
	}

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

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'I am new!',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			image_url  TEXT NOT NULL,
			creator_id TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_creator_id ON posts(creator_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	// The owned-set. Kept as its own table rather than a JSON column so a
	// ref can be added/removed with a single-row statement.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_posts (
			user_id TEXT NOT NULL REFERENCES users(id),
			post_id TEXT NOT NULL,
			PRIMARY KEY (user_id, post_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating user_posts table: %w", err)
	}

	return nil
}
