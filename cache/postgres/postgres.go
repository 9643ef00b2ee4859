package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragforge/llminvoke/cache"
)

// DBPool defines the interface for the database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresCache implements cache.Cache on PostgreSQL, for pipelines that want
// a durable, queryable invocation cache.
type PostgresCache struct {
	pool      DBPool
	tableName string
}

var _ cache.Cache = (*PostgresCache)(nil)

// Options configuration for the Postgres connection
type Options struct {
	ConnString string
	TableName  string // Default "llm_cache"
}

// New creates a PostgresCache and initializes its schema
func New(ctx context.Context, opts Options) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	c := NewWithPool(pool, opts.TableName)
	if err := c.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// NewWithPool creates a PostgresCache with an existing pool.
// Useful for testing with mocks.
func NewWithPool(pool DBPool, tableName string) *PostgresCache {
	if tableName == "" {
		tableName = "llm_cache"
	}
	return &PostgresCache{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the cache table if it doesn't exist
func (c *PostgresCache) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			result JSONB NOT NULL,
			debug JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`, c.tableName)

	if _, err := c.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (c *PostgresCache) Close() {
	c.pool.Close()
}

// Has reports whether key is present
func (c *PostgresCache) Has(ctx context.Context, key string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, c.tableName)

	var exists bool
	if err := c.pool.QueryRow(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check cache entry: %w", err)
	}
	return exists, nil
}

// Get returns the stored value
func (c *PostgresCache) Get(ctx context.Context, key string) (any, bool, error) {
	query := fmt.Sprintf(`SELECT result FROM %s WHERE key = $1`, c.tableName)

	var resultJSON []byte
	err := c.pool.QueryRow(ctx, query, key).Scan(&resultJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load cache entry: %w", err)
	}

	var result any
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return result, true, nil
}

// Set stores value under key
func (c *PostgresCache) Set(ctx context.Context, key string, value any, debug map[string]any) error {
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
		INSERT INTO %s (key, result, debug)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			result = EXCLUDED.result,
			debug = EXCLUDED.debug
	`, c.tableName)

	if _, err := c.pool.Exec(ctx, query, key, resultJSON, debugJSON); err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}
