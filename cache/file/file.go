package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ragforge/llminvoke/cache"
)

// FileCache implements cache.Cache with one JSON file per key under a root
// directory. Keys produced by cache.CreateKey are already filesystem-safe.
type FileCache struct {
	root string
}

var _ cache.Cache = (*FileCache)(nil)

// New creates a FileCache rooted at dir, creating it if necessary.
func New(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FileCache{root: dir}, nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.root, key+".json")
}

// Has reports whether key is present
func (c *FileCache) Has(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat cache entry %s: %w", key, err)
	}
	return true, nil
}

// Get returns the stored value
func (c *FileCache) Get(ctx context.Context, key string) (any, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}

	var entry cache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return entry.Result, true, nil
}

// Set stores value under key
func (c *FileCache) Set(ctx context.Context, key string, value any, debug map[string]any) error {
	data, err := json.MarshalIndent(cache.Entry{Result: value, Debug: debug}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}
