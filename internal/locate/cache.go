package locate

import (
	"strings"
	"sync"
	"time"
)

// cacheTTL is the freshness window for a cached DC list, per spec.
const cacheTTL = 300 * time.Second

type cacheKey struct {
	domain string
	role   Role
}

type cacheEntry struct {
	at         time.Time
	requested  int
	hostnames  []string
}

// Cache is the DC locator's topology cache, keyed by (domain, role). It
// intentionally does not cache directory contents — only hostnames. This
// narrows the teacher's sync.Map-based multi-index LDAP entry cache
// (internal/ldap/cache_manager.go) down to the scope this spec wants.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry

	hits   int64
	misses int64
}

// NewCache returns an empty topology cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Get returns cached hostnames for (domain, role) if the entry is fresh
// and was populated with at least countRequested hostnames (or fewer were
// available and returned in full). A miss returns (nil, false).
func (c *Cache) Get(domain string, role Role, countRequested int) ([]string, bool) {
	key := cacheKey{domain: strings.ToUpper(domain), role: role}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.at) > cacheTTL {
		c.misses++
		return nil, false
	}
	if countRequested > entry.requested && len(entry.hostnames) < countRequested {
		// Cached entry was built for a smaller request and didn't find
		// enough servers to satisfy a larger one now.
		c.misses++
		return nil, false
	}
	c.hits++
	out := make([]string, len(entry.hostnames))
	copy(out, entry.hostnames)
	return out, true
}

// Put records hostnames found for (domain, role) when countRequested
// servers were asked for.
func (c *Cache) Put(domain string, role Role, countRequested int, hostnames []string) {
	key := cacheKey{domain: strings.ToUpper(domain), role: role}
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]string, len(hostnames))
	copy(stored, hostnames)
	c.entries[key] = cacheEntry{at: time.Now(), requested: countRequested, hostnames: stored}
}

// Stats reports hit/miss counters, useful for diagnostics.
type Stats struct {
	Hits, Misses int64
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses}
}
