// Package sqlite implements repository.Store on SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, and the
// binary cross-compiles like any other Go program. It registers itself with
// database/sql under the driver name "sqlite".
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB   : a connection pool (NOT a single connection!)
//   - sql.Row  : a single result row
//   - sql.Rows : multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/kudos-board/internal/repository"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

var _ repository.Store = (*DB)(nil)

// connPragmas are applied by the driver to EVERY pooled connection.
//
// PER-CONNECTION PRAGMAS:
// `PRAGMA foreign_keys=ON` executed once with db.Exec only affects whichever
// pooled connection happened to run it. Passing the pragmas in the DSN makes
// the driver apply them each time it opens a connection, so the users/kudos
// foreign keys are always enforced.
const connPragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/kudos.db" → file-based database (persistent)
//   - ":memory:"      → in-memory database (tests; lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand new, empty database.
	// Pinning the pool to one connection keeps a single shared database.
	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes every statement
// safe to run on each start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                TEXT PRIMARY KEY,
			email             TEXT,
			first_name        TEXT,
			last_name         TEXT,
			profile_image_url TEXT,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// AUTOINCREMENT guarantees ids are never reused, even after the highest
	// row is gone, so ids stay monotonic.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kudos (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			from_user_id TEXT NOT NULL REFERENCES users(id),
			to_user_id   TEXT NOT NULL REFERENCES users(id),
			message      TEXT NOT NULL,
			category     TEXT NOT NULL,
			hidden       BOOLEAN NOT NULL DEFAULT 0,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_kudos_created_at ON kudos(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating kudos table: %w", err)
	}

	return nil
}

func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + connPragmas
	}
	return dbPath + "?" + connPragmas
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// now returns the current time in UTC at microsecond precision.
// UTC() also drops the monotonic reading, so the stored text sorts correctly.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
