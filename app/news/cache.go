package news

import (
	"sync"
	"time"
)

// CacheEntry is an idempotent snapshot of one aggregation fetch. Items hold
// the concatenation of all providers' raw results: unfiltered, undeduplicated
// and unbounded by page size, so a changed window or limit never forces a
// re-fetch. Entries are replaced wholesale, never merged.
type CacheEntry struct {
	FetchedAt      time.Time
	Items          []Item
	ProviderCounts map[string]int
	Queries        map[string]string // winning query per provider, diagnostic
}

// AggregateCache stores raw aggregation results per (topic, timeframe) key.
// The key space is bounded by the closed topic and timeframe sets, so there
// is no eviction beyond lazy TTL expiry on read. Concurrent misses for the
// same key may each re-fetch and overwrite the entry; last writer wins, which
// is harmless because entries are self-contained snapshots.
type AggregateCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	now     func() time.Time
}

func NewAggregateCache() *AggregateCache {
	return &AggregateCache{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
	}
}

func cacheKey(topicName string, timeframe Timeframe) string {
	return topicName + ":" + string(timeframe)
}

// Get returns the entry for the key, treating entries at or past their
// timeframe's TTL as absent. There is no background sweeper.
func (c *AggregateCache) Get(topicName string, timeframe Timeframe) (CacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(topicName, timeframe)]
	c.mu.RUnlock()

	if !ok {
		return CacheEntry{}, false
	}

	if c.now().Sub(entry.FetchedAt) >= timeframe.TTL() {
		return CacheEntry{}, false
	}

	return entry, true
}

// Put stores the entry under the key, stamping the fetch time and replacing
// any previous entry wholesale.
func (c *AggregateCache) Put(topicName string, timeframe Timeframe, entry CacheEntry) {
	entry.FetchedAt = c.now()

	c.mu.Lock()
	c.entries[cacheKey(topicName, timeframe)] = entry
	c.mu.Unlock()
}

func (c *AggregateCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
