package domain

import (
	"time"

	"github.com/jonboulle/clockwork"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

// DefaultCacheTTL is the freshness window of probe results.
const DefaultCacheTTL = 300 * time.Second

type cacheEntry struct {
	record    entities.DomainRecord
	fetchedAt time.Time
}

// Cache keeps the latest probe result of each domain and serves it while
// fresh. Results are kept regardless of the probe outcome.
//
// Cache is not safe for concurrent use.
type Cache struct {
	ttl     time.Duration
	clock   clockwork.Clock
	entries map[string]cacheEntry
}

// NewCache returns an empty Cache.
func NewCache(clock clockwork.Clock, ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached record of domain if it was fetched less than
// ttl ago.
func (c *Cache) Get(domain string) (entities.DomainRecord, bool) {
	e, ok := c.entries[domain]
	if !ok || c.clock.Since(e.fetchedAt) >= c.ttl {
		return entities.DomainRecord{}, false
	}
	return e.record.Clone(), true
}

// Put stores record of domain stamped with the current instant.
func (c *Cache) Put(domain string, record entities.DomainRecord) {
	c.entries[domain] = cacheEntry{
		record:    record.Clone(),
		fetchedAt: c.clock.Now(),
	}
}

// Delete drops domain.
func (c *Cache) Delete(domain string) {
	delete(c.entries, domain)
}
