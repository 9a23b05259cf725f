package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const pageExt = ".page.json"

var nowFunc = time.Now

// DiskCache persists fetched citation pages across runs. Files are sharded
// by the first byte of the hashed key so large source lists do not pile
// thousands of entries into one directory.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl}
}

type pageRecord struct {
	Key       string    `json:"key"`
	Body      []byte    `json:"body"`
	StoredAt  time.Time `json:"storedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r pageRecord) expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Get returns the cached page body for key. Expired or corrupt records are
// removed and reported as misses.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var rec pageRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Key != key {
		_ = os.Remove(path)
		return nil, false
	}
	if rec.expired(nowFunc()) {
		_ = os.Remove(path)
		return nil, false
	}
	return rec.Body, true
}

// Set writes the page through a temp file so concurrent readers never see a
// partial record. A zero ttl uses the cache default; a negative ttl never expires.
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	now := nowFunc()
	rec := pageRecord{Key: key, Body: value, StoredAt: now}
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode page %s: %w", key, err)
	}

	path := c.path(key)
	shard := filepath.Dir(path)
	if err := os.MkdirAll(shard, 0o755); err != nil {
		return fmt.Errorf("create cache shard: %w", err)
	}

	tmp, err := os.CreateTemp(shard, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp page: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp page: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store page: %w", err)
	}
	return nil
}

// Delete removes the page for key. A missing page yields an fs.ErrNotExist error.
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

// Clear removes every cached page and leftover temp file under the cache
// directory. Unrelated files are left alone.
func (c *DiskCache) Clear() error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, pageExt) || strings.HasPrefix(name, ".tmp-") {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				return rmErr
			}
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// path maps a key onto <dir>/<shard>/<digest>.page.json. Keys are hashed
// again because callers may pass arbitrary strings containing separators.
func (c *DiskCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, digest[:2], digest+pageExt)
}
