package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobcrap/jobcrap-cli/internal/api"
)

// Cache is a short-lived local store for fetched feed pages and story
// details, so navigating away and back within the TTL does not refetch.
// Pages are keyed by the full query fingerprint plus page number, so
// distinct filters never collide.
type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS pages (
			query_key  TEXT NOT NULL,
			page       INTEGER NOT NULL,
			payload    TEXT NOT NULL,
			has_next   INTEGER NOT NULL,
			fetched_at DATETIME NOT NULL,
			PRIMARY KEY (query_key, page)
		);
		CREATE INDEX IF NOT EXISTS idx_pages_fetched ON pages(fetched_at);

		CREATE TABLE IF NOT EXISTS details (
			id         TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// PutPage stores one fetched feed page under its query fingerprint.
func (c *Cache) PutPage(queryKey string, page int, stories []api.Story, hasNext bool) error {
	payload, err := json.Marshal(stories)
	if err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}
	_, err = c.writeDB.Exec(`
		INSERT INTO pages (query_key, page, payload, has_next, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(query_key, page) DO UPDATE SET
			payload = excluded.payload,
			has_next = excluded.has_next,
			fetched_at = excluded.fetched_at
	`, queryKey, page, string(payload), boolToInt(hasNext), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing page %d for %q: %w", page, queryKey, err)
	}
	return nil
}

// GetPage returns a cached page no older than ttl. ok is false on a miss or
// an expired entry.
func (c *Cache) GetPage(queryKey string, page int, ttl time.Duration) (stories []api.Story, hasNext, ok bool, err error) {
	var (
		payload   string
		hasNextI  int
		fetchedAt time.Time
	)
	row := c.readDB.QueryRow(
		`SELECT payload, has_next, fetched_at FROM pages WHERE query_key = ? AND page = ?`,
		queryKey, page,
	)
	if err := row.Scan(&payload, &hasNextI, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, false, nil
		}
		return nil, false, false, fmt.Errorf("reading cached page: %w", err)
	}
	if time.Since(fetchedAt) > ttl {
		return nil, false, false, nil
	}
	if err := json.Unmarshal([]byte(payload), &stories); err != nil {
		return nil, false, false, fmt.Errorf("decoding cached page: %w", err)
	}
	return stories, hasNextI != 0, true, nil
}

// InvalidatePages drops every cached page for the given query fingerprint.
func (c *Cache) InvalidatePages(queryKey string) error {
	_, err := c.writeDB.Exec(`DELETE FROM pages WHERE query_key = ?`, queryKey)
	return err
}

// PutDetail caches a single story's detail view.
func (c *Cache) PutDetail(story api.Story) error {
	payload, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("encoding story: %w", err)
	}
	_, err = c.writeDB.Exec(`
		INSERT INTO details (id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, story.ID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing detail %s: %w", story.ID, err)
	}
	return nil
}

// GetDetail returns a cached story detail no older than ttl.
func (c *Cache) GetDetail(id string, ttl time.Duration) (api.Story, bool, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	row := c.readDB.QueryRow(`SELECT payload, fetched_at FROM details WHERE id = ?`, id)
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return api.Story{}, false, nil
		}
		return api.Story{}, false, fmt.Errorf("reading cached detail: %w", err)
	}
	if time.Since(fetchedAt) > ttl {
		return api.Story{}, false, nil
	}
	var story api.Story
	if err := json.Unmarshal([]byte(payload), &story); err != nil {
		return api.Story{}, false, fmt.Errorf("decoding cached detail: %w", err)
	}
	return story, true, nil
}

// InvalidateDetail drops the cached detail for a story. Called after a vote
// so the detail view never shows counts older than the feed's.
func (c *Cache) InvalidateDetail(id string) error {
	_, err := c.writeDB.Exec(`DELETE FROM details WHERE id = ?`, id)
	return err
}

// Prune removes entries fetched longer than maxAge ago and returns how many
// rows were dropped.
func (c *Cache) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	var total int64

	res, err := c.writeDB.Exec(`DELETE FROM pages WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning pages: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	res, err = c.writeDB.Exec(`DELETE FROM details WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return total, fmt.Errorf("pruning details: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_prune', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().UTC().Format(time.RFC3339))

	return total, nil
}

// Stats returns cached page count, detail count, and the db file size.
func (c *Cache) Stats(dbPath string) (pages, details int, size int64, err error) {
	if err := c.readDB.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&pages); err != nil {
		return 0, 0, 0, fmt.Errorf("counting pages: %w", err)
	}
	if err := c.readDB.QueryRow(`SELECT COUNT(*) FROM details`).Scan(&details); err != nil {
		return 0, 0, 0, fmt.Errorf("counting details: %w", err)
	}
	fi, err := os.Stat(dbPath)
	if err != nil {
		return pages, details, 0, err
	}
	return pages, details, fi.Size(), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
