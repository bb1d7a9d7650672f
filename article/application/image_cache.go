package application

import (
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/newsroom/article/domain"
)

// ImageCache memoizes image lookups by id and by url.
// A missing entry means the key has not been looked up; a NotFound entry means the
// store confirmed it absent. Entries live until invalidated, reset, or, when a TTL is
// configured, until they age out.
type ImageCache struct {
	mu    sync.RWMutex
	byID  map[string]cacheEntry
	byURL map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	lookup   domain.ImageLookup
	storedAt time.Time
}

// ImageCacheOption customises an ImageCache.
type ImageCacheOption func(*ImageCache)

// WithTTL expires entries older than ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) ImageCacheOption {
	return func(c *ImageCache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) ImageCacheOption {
	return func(c *ImageCache) {
		c.now = now
	}
}

func NewImageCache(opts ...ImageCacheOption) *ImageCache {
	c := &ImageCache{
		byID:  make(map[string]cacheEntry),
		byURL: make(map[string]cacheEntry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupByID returns the memoized lookup for id and whether one exists.
func (c *ImageCache) LookupByID(id string) (domain.ImageLookup, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh(c.byID[id])
}

// LookupByURL returns the memoized lookup for url and whether one exists.
func (c *ImageCache) LookupByURL(url string) (domain.ImageLookup, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh(c.byURL[urlKey(url)])
}

// urlKey normalizes a url before it is used as a url table key.
func urlKey(url string) string {
	return strings.TrimSpace(url)
}

func (c *ImageCache) fresh(e cacheEntry) (domain.ImageLookup, bool) {
	if e.storedAt.IsZero() {
		return domain.ImageLookup{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		return domain.ImageLookup{}, false
	}
	return e.lookup, true
}

// StoreFound caches record under its id and, if it has one, its url.
func (c *ImageCache) StoreFound(record *domain.ImageRecord) {
	if record == nil || record.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cacheEntry{lookup: domain.Found(record), storedAt: c.now()}
	if previous, ok := c.byID[record.ID]; ok && previous.lookup.IsFound() {
		// The url moved; the old url no longer identifies this image.
		if oldURL := previous.lookup.Record().URL; oldURL != record.URL {
			c.dropURLLocked(oldURL, record.ID)
		}
	}
	c.byID[record.ID] = entry
	if record.HasURL() {
		c.byURL[urlKey(record.URL)] = entry
	}
}

// StoreAbsentID records that no image exists with id.
func (c *ImageCache) StoreAbsentID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[id] = cacheEntry{lookup: domain.NotFound(), storedAt: c.now()}
}

// StoreAbsentURL records that no image exists with url.
func (c *ImageCache) StoreAbsentURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byURL[urlKey(url)] = cacheEntry{lookup: domain.NotFound(), storedAt: c.now()}
}

// Invalidate forgets everything cached about image id, including its url entry.
// The image may now live at a url previously confirmed absent, so every
// absent url entry is dropped as well.
func (c *ImageCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.byID[id]; ok && e.lookup.IsFound() {
		c.dropURLLocked(e.lookup.Record().URL, id)
	}
	delete(c.byID, id)

	for url, e := range c.byURL {
		if !e.lookup.IsFound() {
			delete(c.byURL, url)
		}
	}
}

// InvalidateURL forgets the lookup cached for url.
func (c *ImageCache) InvalidateURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byURL, urlKey(url))
}

func (c *ImageCache) dropURLLocked(url, id string) {
	key := urlKey(url)
	if e, ok := c.byURL[key]; ok && e.lookup.IsFound() && e.lookup.Record().ID == id {
		delete(c.byURL, key)
	}
}

// Reset empties both tables.
func (c *ImageCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[string]cacheEntry)
	c.byURL = make(map[string]cacheEntry)
}

// Len returns the number of id and url entries.
func (c *ImageCache) Len() (ids int, urls int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID), len(c.byURL)
}
