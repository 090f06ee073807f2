// Package crawl: discovery cache.
// Discovered units are kept in SQLite per index URL so repeated catalog
// listings do not refetch the index page.
package crawl

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Cache stores discovery results in SQLite.
type Cache struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// OpenCache opens or creates the cache database at dbPath.
// Use ":memory:" for a throwaway cache.
func OpenCache(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Cache{db: db, now: time.Now}
	if err := c.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return c, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS discoveries (
		index_url TEXT PRIMARY KEY,
		fetched_at INTEGER NOT NULL,
		items TEXT NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the items stored for indexURL when they are younger than
// ttl. A zero ttl never expires.
func (c *Cache) Get(ctx context.Context, indexURL string, ttl time.Duration) ([]Item, time.Time, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		fetched int64
		raw     string
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT fetched_at, items FROM discoveries WHERE index_url = ?", indexURL,
	).Scan(&fetched, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("query discovery: %w", err)
	}

	at := time.Unix(fetched, 0)
	if ttl > 0 && c.now().Sub(at) > ttl {
		return nil, at, false, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, at, false, fmt.Errorf("decode discovery: %w", err)
	}
	return items, at, true, nil
}

// Put replaces the items stored for indexURL.
func (c *Cache) Put(ctx context.Context, indexURL string, items []Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode discovery: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO discoveries (index_url, fetched_at, items) VALUES (?, ?, ?)
		 ON CONFLICT(index_url) DO UPDATE SET fetched_at = excluded.fetched_at, items = excluded.items`,
		indexURL, c.now().Unix(), string(raw),
	)
	if err != nil {
		return fmt.Errorf("store discovery: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// DiscoverCached returns cached items for indexURL when fresh, and
// otherwise discovers and stores them. refresh skips the lookup.
func DiscoverCached(ctx context.Context, c *Cache, indexURL string, ttl time.Duration, refresh bool, fetch func(context.Context, string) ([]Item, error)) ([]Item, bool, error) {
	if !refresh {
		items, _, ok, err := c.Get(ctx, indexURL, ttl)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return items, true, nil
		}
	}
	items, err := fetch(ctx, indexURL)
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(ctx, indexURL, items); err != nil {
		return nil, false, err
	}
	return items, false, nil
}
