package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ragforge/llminvoke/cache"
)

// SqliteCache implements cache.Cache on a local SQLite database, giving a
// single-file persistent cache with optional expiry.
type SqliteCache struct {
	db        *sql.DB
	tableName string
	ttl       time.Duration
}

var _ cache.Cache = (*SqliteCache)(nil)

// Options configuration for the SQLite connection
type Options struct {
	Path      string
	TableName string        // Default "llm_cache"
	TTL       time.Duration // Expiration for entries, default 0 (no expiration)
}

// New creates a SqliteCache and initializes its schema
func New(opts Options) (*SqliteCache, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "llm_cache"
	}

	c := &SqliteCache{
		db:        db,
		tableName: tableName,
		ttl:       opts.TTL,
	}

	if err := c.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// InitSchema creates the cache table if it doesn't exist
func (c *SqliteCache) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			result TEXT NOT NULL,
			debug TEXT,
			created_at DATETIME NOT NULL
		);
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *SqliteCache) Close() error {
	return c.db.Close()
}

// Has reports whether key is present and unexpired
func (c *SqliteCache) Has(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

// Get returns the stored value. Expired entries count as missing.
func (c *SqliteCache) Get(ctx context.Context, key string) (any, bool, error) {
	query := fmt.Sprintf(`SELECT result, created_at FROM %s WHERE key = ?`, c.tableName)

	var resultJSON []byte
	var createdAt time.Time
	err := c.db.QueryRowContext(ctx, query, key).Scan(&resultJSON, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load cache entry: %w", err)
	}

	if c.ttl > 0 && time.Since(createdAt) > c.ttl {
		return nil, false, nil
	}

	var result any
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return result, true, nil
}

// Set stores value under key
func (c *SqliteCache) Set(ctx context.Context, key string, value any, debug map[string]any) error {
	resultJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	var debugJSON []byte
	if debug != nil {
		debugJSON, err = json.Marshal(debug)
		if err != nil {
			return fmt.Errorf("failed to marshal debug data: %w", err)
		}
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (key, result, debug, created_at)
		VALUES (?, ?, ?, ?)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query, key, resultJSON, debugJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}
