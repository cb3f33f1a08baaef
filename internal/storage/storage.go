// Package storage persists TIMD records, match schedules, and team baselines
// in a SQLite database.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// dsnOptions enables foreign keys and WAL journaling on every connection.
// Ingest and attribution interleave reads and writes on the same file; WAL
// keeps the readers from blocking.
const dsnOptions = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

// DB is the metrics store. All access goes through its query methods; the
// attribution engine sees it only through the BaselineSource interface.
type DB struct {
	conn *sql.DB
}

// Open opens the SQLite database at path, creating it and applying the schema
// when absent. The schema is idempotent, so opening an existing store is a
// no-op beyond the connection.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?%s", path, dsnOptions))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
