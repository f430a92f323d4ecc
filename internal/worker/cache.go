// Package worker implements the background worker: offline-first delivery of
// the application shell through a versioned asset cache, and periodic
// reminder scanning independent of any open page.
package worker

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Cache manages the versioned bucket directories on disk. Eviction is
// all-or-nothing per version: activation deletes every bucket whose version
// tag differs from the current one.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Open opens (creating if needed) the named bucket.
func (c *Cache) Open(name string) (*Bucket, error) {
	dir := filepath.Join(c.dir, name)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache bucket %q: %w", name, err)
	}
	return &Bucket{name: name, dir: dir}, nil
}

// Buckets enumerates all bucket names.
func (c *Cache) Buckets() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache buckets: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Delete removes a bucket and everything in it.
func (c *Cache) Delete(name string) error {
	if err := os.RemoveAll(filepath.Join(c.dir, name)); err != nil {
		return fmt.Errorf("failed to delete cache bucket %q: %w", name, err)
	}
	return nil
}

// DeleteExcept removes every bucket except keep.
func (c *Cache) DeleteExcept(keep string) error {
	names, err := c.Buckets()
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == keep {
			continue
		}
		if err := c.Delete(name); err != nil {
			return err
		}
	}
	return nil
}

// CachedResponse is a stored copy of an upstream response. The body is an
// independent clone of what was served to the requester.
type CachedResponse struct {
	Header   http.Header
	Body     []byte
	Status   int
	StoredAt time.Time
}

type entryMeta struct {
	URL      string      `json:"url"`
	BodyFile string      `json:"bodyFile"`
	Header   http.Header `json:"header"`
	StoredAt time.Time   `json:"storedAt"`
	Status   int         `json:"status"`
}

// Bucket stores response clones keyed by request URL. Each entry is a
// metadata file named by the URL hash plus a separate body file, written
// body-first so a torn write leaves no dangling metadata.
type Bucket struct {
	name string
	dir  string
	mu   sync.Mutex
}

// Name returns the bucket name, including its version tag.
func (b *Bucket) Name() string {
	return b.name
}

func entryKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum)
}

// Put stores an independent copy of a response.
func (b *Bucket) Put(url string, status int, header http.Header, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bodyFile := uuid.NewString() + ".bin"
	if err := os.WriteFile(filepath.Join(b.dir, bodyFile), body, 0640); err != nil {
		return fmt.Errorf("failed to write cache body: %w", err)
	}

	meta := entryMeta{
		URL:      url,
		Status:   status,
		Header:   header,
		BodyFile: bodyFile,
		StoredAt: time.Now(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode cache metadata: %w", err)
	}

	metaPath := filepath.Join(b.dir, entryKey(url)+".json")
	tmpPath := metaPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0640); err != nil {
		return fmt.Errorf("failed to write cache metadata: %w", err)
	}
	if err := os.Rename(tmpPath, metaPath); err != nil {
		return fmt.Errorf("failed to commit cache metadata: %w", err)
	}
	return nil
}

// Get returns the stored response for a URL, or false on miss.
func (b *Bucket) Get(url string) (*CachedResponse, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(b.dir, entryKey(url)+".json"))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache metadata: %w", err)
	}

	var meta entryMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache metadata: %w", err)
	}

	body, err := os.ReadFile(filepath.Join(b.dir, meta.BodyFile))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache body: %w", err)
	}

	return &CachedResponse{
		Status:   meta.Status,
		Header:   meta.Header,
		Body:     body,
		StoredAt: meta.StoredAt,
	}, true, nil
}

// URLs lists the request URLs currently stored in the bucket.
func (b *Bucket) URLs() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}

	var urls []string
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(b.dir, entry.Name()))
		if err != nil {
			continue
		}
		var meta entryMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		urls = append(urls, meta.URL)
	}
	return urls, nil
}
