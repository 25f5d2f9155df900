// Package sqlite implements the repository interfaces on an embedded SQLite
// database.
//
// The system's storage contract is a document store: named collections,
// filter-based reads, merge-style upserts. Rather than a table per content
// type, everything except users lives in one `documents` table of JSON
// bodies, with SQLite's JSON1 functions (json_patch, json_extract) providing
// the merge-upsert and field-filter operations. Users get a typed table
// because authorization reads their role on the hot path of every
// admin-gated request.
//
// WHY modernc.org/sqlite?
// It is a pure-Go translation of SQLite — no CGo, no C compiler, painless
// cross-compilation — and ":memory:" databases make repository tests
// self-contained.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB connection pool. It is constructed once at startup,
// handed to the server, and closed on shutdown — there is no ambient global
// handle. The repository implementations are views over the same pool,
// reached through Users and Documents.
type DB struct {
	conn *sql.DB
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

// Documents returns the document repository backed by this database.
func (db *DB) Documents() *DocumentStore {
	return &DocumentStore{conn: db.conn}
}

// New opens the database at dbPath (":memory:" for tests) and runs the
// schema migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only creates the pool; Ping forces a real connection so a
	// bad path or permissions problem surfaces here, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — needed for a web
	// server where requests overlap.
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

// Close closes the connection pool. Callers defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			email      TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			about      TEXT NOT NULL DEFAULT '',
			education  TEXT NOT NULL DEFAULT '',
			profession TEXT NOT NULL DEFAULT '',
			address    TEXT NOT NULL DEFAULT '',
			linkedin   TEXT NOT NULL DEFAULT '',
			img        TEXT NOT NULL DEFAULT '',
			role       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// One table for every document collection. The body column holds the
	// JSON document; the (collection, id) pair is the primary key the
	// filter-based operations address documents by.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS idx_documents_collection_created
			ON documents(collection, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}

	return nil
}
