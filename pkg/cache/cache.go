// Package cache is a SQLite-backed store of raw HTTP response bodies,
// keyed by URL. It spares the upstream APIs on repeated runs; entries
// expire by age, they are never invalidated by content.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

type Cache struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at the given path. Use
// ":memory:" for tests.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// A single connection keeps in-memory databases coherent and is
	// plenty for a sequential scraper.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Get returns the cached body for url if it was fetched within maxAge.
// A maxAge of zero or less disables cache reads entirely.
func (c *Cache) Get(url string, maxAge time.Duration) ([]byte, bool, error) {
	if maxAge <= 0 {
		return nil, false, nil
	}

	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(
		"SELECT body, fetched_at FROM responses WHERE url = ?", url,
	).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache for %s: %w", url, err)
	}

	if time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores a response body for url, replacing any prior entry.
func (c *Cache) Put(url string, body []byte) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO responses (url, body, fetched_at) VALUES (?, ?, ?)",
		url, body, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache for %s: %w", url, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
