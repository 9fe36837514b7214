// Package pagecache persists fetched page bodies in sqlite so repeated
// scouting of the same URL does not hit the network.
package pagecache

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("page not found in cache")

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url TEXT PRIMARY KEY,
	contents BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);`

// DefaultLifetime is how long cached pages stay valid unless overridden.
const DefaultLifetime = time.Hour * 24

type Cache struct {
	db       *sql.DB
	lifetime time.Duration
}

// Open opens (creating when necessary) a page cache at the given path.
// `:memory:` is accepted. A lifetime <= 0 falls back to DefaultLifetime.
func Open(path string, lifetime time.Duration) (*Cache, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Cache{db: db, lifetime: lifetime}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached body for a URL, deleting and reporting ErrNotFound
// when the entry has expired.
func (c *Cache) Get(url string) ([]byte, error) {
	row := c.db.QueryRow(
		"SELECT contents, expires_at FROM pages WHERE url = ?",
		url,
	)

	var contents []byte
	var expiresAt int64
	err := row.Scan(&contents, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if time.Now().Unix() >= expiresAt {
		_, err = c.db.Exec("DELETE FROM pages WHERE url = ?", url)
		if err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return contents, nil
}

// Set upserts the cached body for a URL with a fresh expiry.
func (c *Cache) Set(url string, body []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO pages (url, contents, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET contents = excluded.contents, expires_at = excluded.expires_at`,
		url, body, time.Now().Add(c.lifetime).Unix(),
	)
	return err
}
