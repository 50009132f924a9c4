// Package database opens and prepares the embedded per-gallery store.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pictures (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	filename    TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	taken_on    TEXT,
	location    TEXT,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS picture_tags (
	picture_id INTEGER NOT NULL REFERENCES pictures(id) ON DELETE CASCADE,
	tag_id     INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (picture_id, tag_id)
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tokens (
	token          TEXT PRIMARY KEY,
	seq_cursor     INTEGER NOT NULL DEFAULT 0,
	shuffle_order  TEXT,
	shuffle_cursor INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL
);
`

// Open opens (creating if needed) the gallery database under dir.
// WAL mode for concurrent readers, foreign keys on so picture deletion
// cascades through tag associations, and a single writer connection —
// SQLite does not support more than one.
func Open(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "gallery.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}
