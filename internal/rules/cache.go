package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/textparse"
)

// TableCache memoizes parsed rule tables per source path so batch runs load
// each table once. Cached tables are shared read-only.
type TableCache struct {
	cache      *gocache.Cache
	normalizer *extract.Normalizer
	locale     textparse.Locale
}

// NewTableCache creates a cache with the given entry TTL.
func NewTableCache(ttl time.Duration, normalizer *extract.Normalizer, locale textparse.Locale) *TableCache {
	return &TableCache{
		cache:      gocache.New(ttl, 2*ttl),
		normalizer: normalizer,
		locale:     locale,
	}
}

// cacheKey derives the cache key from the table path plus the file's size
// and mtime, so an edited table reloads without waiting out the TTL.
func cacheKey(path string) string {
	h := sha256.New()
	h.Write([]byte(path))
	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(h, "|%d|%d", info.Size(), info.ModTime().UnixNano())
	}
	return "bioreport:rules:v1:" + hex.EncodeToString(h.Sum(nil))
}

// Load returns the cached table for path, loading and caching it on miss.
// Load errors (including *ConfigurationError) are never cached.
func (c *TableCache) Load(path string) (*Table, error) {
	key := cacheKey(path)
	if cached, found := c.cache.Get(key); found {
		return cached.(*Table), nil
	}
	table, err := LoadTable(path, c.normalizer, c.locale)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, table, gocache.DefaultExpiration)
	return table, nil
}

// LoadMicro returns the cached micro rule table for path.
func (c *TableCache) LoadMicro(path string) (*MicroTable, error) {
	key := cacheKey(path) + ":micro"
	if cached, found := c.cache.Get(key); found {
		return cached.(*MicroTable), nil
	}
	table, err := LoadMicroTable(path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, table, gocache.DefaultExpiration)
	return table, nil
}

// Flush drops all cached tables.
func (c *TableCache) Flush() {
	c.cache.Flush()
}
