package classify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Cache is a JSON file mapping artist names to records, with null marking a
// confirmed not-found. It is not safe for concurrent use, and two processes
// sharing a file will lose each other's updates.
type Cache struct {
	path       string
	entries    map[string]*Record
	pending    int
	flushEvery int
	source     Source
	log        *zap.SugaredLogger
}

type CacheOption func(*Cache)

// FlushEvery makes Put write the file once n entries are pending. Zero leaves
// flushing to the caller.
func FlushEvery(n int) CacheOption {
	return func(c *Cache) {
		c.flushEvery = n
	}
}

// DefaultSource fills in the source of entries that were saved without one,
// as provider caches from older versions were.
func DefaultSource(s Source) CacheOption {
	return func(c *Cache) {
		c.source = s
	}
}

// OpenCache loads the cache at path. A missing file is an empty cache; an
// unreadable or corrupt one is an error, so it is never overwritten.
func OpenCache(path string, log *zap.SugaredLogger, opts ...CacheOption) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]*Record),
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}

	bs, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debugw("starting empty cache", "path", path)
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache %s: %w", path, err)
	}
	if len(bytes.TrimSpace(bs)) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(bs, &c.entries); err != nil {
		return nil, fmt.Errorf("parsing cache %s: %w", path, err)
	}
	for name, r := range c.entries {
		if r == nil || r.Source != 0 {
			continue
		}
		if c.source == 0 {
			return nil, fmt.Errorf("parsing cache %s: entry %q has no source", path, name)
		}
		r.Source = c.source
		if r.Confidence == "" {
			r.Confidence = c.source.Confidence()
		}
	}

	log.Debugw("loaded cache", "path", path, "entries", len(c.entries))
	return c, nil
}

// Get reports the cached result and whether the artist was ever looked up.
func (c *Cache) Get(name string) (Result, bool) {
	r, ok := c.entries[name]
	if !ok {
		return NotFound, false
	}
	if r == nil {
		return NotFound, true
	}
	return Found(*r), true
}

// Put replaces any entry for name.
func (c *Cache) Put(name string, result Result) {
	if r, ok := result.Record(); ok {
		c.entries[name] = &r
	} else {
		c.entries[name] = nil
	}
	c.pending++

	if c.flushEvery > 0 && c.pending >= c.flushEvery {
		if err := c.Flush(); err != nil {
			c.log.Warnw("saving cache", "path", c.path, "error", err)
		}
	}
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Pending is the number of writes not yet on disk.
func (c *Cache) Pending() int {
	return c.pending
}

func (c *Cache) Path() string {
	return c.path
}

// Names returns all cached artist names, sorted.
func (c *Cache) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flush writes the cache if anything changed since the last write.
func (c *Cache) Flush() error {
	if c.pending == 0 {
		return nil
	}

	bs, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", c.path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if _, err := tmp.Write(bs); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing %s: %w", c.path, err)
	}

	c.log.Debugw("saved cache", "path", c.path, "entries", len(c.entries))
	c.pending = 0
	return nil
}
