package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username         TEXT PRIMARY KEY,
	access_token     TEXT NOT NULL,
	bio              TEXT,
	location         TEXT,
	twitter_username TEXT,
	avatar_url       TEXT,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT,
	html_url         TEXT NOT NULL,
	owner            TEXT NOT NULL,
	avatar_url       TEXT,
	language         TEXT,
	stargazers_count INTEGER NOT NULL DEFAULT 0,
	num_code_files   INTEGER,
	repo_created_at  TEXT NOT NULL,
	repo_pushed_at   TEXT NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_products_owner_name ON products(owner, name);
`

// Open opens the SQLite database at path, configures the connection pool
// and creates the schema if it doesn't exist yet. The returned handle is
// meant to be passed into repositories; there is no package-level singleton.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	// Test the connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
