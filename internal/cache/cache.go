// Package cache persists validation outcomes in SQLite so repeated
// (query, response) pairs skip the validator fan-out entirely.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tuanpa2295/filip-hackathon/internal/validation"
)

// SQLiteCache implements validation.ResultCache on modernc.org/sqlite.
// Storage errors are logged and swallowed so a broken cache file never
// fails a validation request.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLite opens (or creates) the cache database at path with WAL mode.
// Entries expire after ttl.
func NewSQLite(path string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}

	c := &SQLiteCache{db: db, ttl: ttl}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS validation_cache (
	key        TEXT PRIMARY KEY,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_validation_cache_expires_at ON validation_cache(expires_at);
`

func (c *SQLiteCache) migrate() error {
	_, err := c.db.Exec(cacheMigration)
	return eris.Wrap(err, "cache: migrate")
}

// Get returns the cached aggregate for key if present and unexpired.
func (c *SQLiteCache) Get(ctx context.Context, key string) (validation.Aggregated, bool) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT result FROM validation_cache WHERE key = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return validation.Aggregated{}, false
	}
	if err != nil {
		zap.L().Warn("cache: lookup failed", zap.Error(err))
		return validation.Aggregated{}, false
	}

	var agg validation.Aggregated
	if err := json.Unmarshal([]byte(raw), &agg); err != nil {
		zap.L().Warn("cache: corrupt entry, ignoring", zap.String("key", key), zap.Error(err))
		return validation.Aggregated{}, false
	}
	return agg, true
}

// Put stores the aggregate under key, replacing any previous entry.
func (c *SQLiteCache) Put(ctx context.Context, key string, a validation.Aggregated) {
	raw, err := json.Marshal(a)
	if err != nil {
		zap.L().Warn("cache: marshal failed", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO validation_cache (key, result, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET result = excluded.result, created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, string(raw), now, now.Add(c.ttl),
	)
	if err != nil {
		zap.L().Warn("cache: store failed", zap.String("key", key), zap.Error(err))
	}
}

// Purge removes expired entries and returns how many were deleted.
func (c *SQLiteCache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM validation_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge rows affected")
	}
	return n, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
