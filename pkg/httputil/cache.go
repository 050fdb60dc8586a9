package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but is older
// than the cache TTL. The stale entry stays on disk until the next Set.
var ErrExpired = errors.New("cache entry expired")

// Cache stores JSON-encoded values as files named by the SHA-256 of their
// key. Entry age is the file modification time; a TTL of 0 never expires.
//
// A Cache is not safe for concurrent use by multiple goroutines, but several
// processes may share a directory since each Set replaces a whole file.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache returns a cache rooted at dir, creating it if needed.
// An empty dir selects ~/.cache/ivrflow/.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "ivrflow")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry lifetime; 0 means entries never expire.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get decodes the entry for key into v. It reports (true, nil) on a fresh
// hit, (false, nil) on a miss and (false, [ErrExpired]) for a stale entry.
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v under key, replacing any previous entry and resetting its age.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(key))
}

// Delete drops the entry for key. A missing entry is not an error.
func (c *Cache) Delete(key string) error {
	if err := os.Remove(c.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Namespace returns a view of c whose keys are prefixed with prefix.
// Namespaces nest: c.Namespace("a:").Namespace("b:") uses "a:b:".
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{dir: c.dir, ttl: c.ttl, prefix: c.prefix + prefix}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
