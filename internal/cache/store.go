// Package cache provides a hash-keyed JSON file store used for remote
// extraction results and external fetch results. Entries are derived
// deterministically from their key, so concurrent overwrites of the same
// entry are idempotent and the store takes no locks.
package cache

import (
	"crypto/md5" //nolint:gosec // key fingerprinting, not security
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store is a disk-backed key-value cache. Values are JSON-encoded files named
// <kind>_<md5(key)>.json under the store directory.
type Store struct {
	dir string
	// ttl bounds entry freshness; zero means entries never expire.
	ttl time.Duration
}

// NewStore creates a store rooted at dir. The directory is created on first
// write, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// NewStoreTTL creates a store whose entries expire after ttl.
func NewStoreTTL(dir string, ttl time.Duration) *Store {
	return &Store{dir: dir, ttl: ttl}
}

// Key builds a cache key from its parts. Parts are joined with a separator so
// ("ab","c") and ("a","bc") produce distinct keys.
func Key(parts ...string) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += "\x1f"
		}
		key += p
	}
	return key
}

func (s *Store) path(kind, key string) string {
	sum := md5.Sum([]byte(key)) //nolint:gosec // key fingerprinting, not security
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", kind, hex.EncodeToString(sum[:])))
}

// Get reads the entry for (kind, key) into v. Returns false on miss, expiry,
// or any read/decode failure — a corrupt entry is treated as a miss.
func (s *Store) Get(kind, key string, v any) bool {
	path := s.path(kind, key)

	if s.ttl > 0 {
		info, err := os.Stat(path)
		if err != nil || time.Since(info.ModTime()) > s.ttl {
			return false
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// Delete removes the entry for (kind, key). Missing entries are not an error.
func (s *Store) Delete(kind, key string) error {
	err := os.Remove(s.path(kind, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Put writes v as the entry for (kind, key). The write goes through a
// temporary file and a rename so readers never observe a partial entry.
func (s *Store) Put(kind, key string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir %s: %w", s.dir, err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	path := s.path(kind, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		// Fall back to a direct write; the value is idempotent anyway.
		if werr := os.WriteFile(path, data, 0o644); werr != nil {
			return fmt.Errorf("failed to replace cache entry: %w", werr)
		}
	}
	return nil
}
