package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores one JSON file per entry below a directory, fanned out
// into subdirectories by the first two characters of the key hash.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates the directory if needed and returns a cache
// rooted there.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// DefaultDir returns the per-user cache directory for callout.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, "callout"), nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// Get implements Cache. Unreadable or expired entries are removed and
// reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil || e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set implements Cache. The entry is written to a temporary file and
// renamed into place, so concurrent readers never see a partial entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	raw, err := json.Marshal(newEntry(data, ttl, c.now()))
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Delete implements Cache.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were deleted.
func (c *FileCache) Clear() (int, error) {
	var n int
	err := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// Close implements Cache.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
