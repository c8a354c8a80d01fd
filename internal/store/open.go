// Package store is the server's SQLite persistence layer: users, sessions,
// topics, messages, and reactions.
package store

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the database at path and applies the
// schema. The caller owns the returned handle.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
