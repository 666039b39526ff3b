package locator

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheCapacity = 4096

// latestIdentifier is the cache-key identifier ResolveLatest uses, distinct
// from any real "d" tag value a caller could pass to Resolve.
const latestIdentifier = "\x00latest\x00"

type cacheEntry struct {
	payload *Payload
	expiry  time.Time
}

// resolverCache is a bounded, TTL-aware cache keyed by (pubkey, identifier).
// The bound comes from hashicorp/golang-lru so a resolver watching many
// identities can't grow without limit; whether an entry is actually
// servable is governed by freshness (expiry), not by recency of access.
type resolverCache struct {
	mu    sync.Mutex
	store *lru.Cache[string, cacheEntry]
}

func newResolverCache(capacity int) *resolverCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	store, _ := lru.New[string, cacheEntry](capacity)
	return &resolverCache{store: store}
}

func cacheKey(pubKeyHex, identifier string) string {
	return pubKeyHex + "\x00" + identifier
}

func (c *resolverCache) get(pubKeyHex, identifier string, now time.Time) (*Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(pubKeyHex, identifier)
	entry, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	if !now.Before(entry.expiry) {
		c.store.Remove(key)
		return nil, false
	}
	return entry.payload, true
}

func (c *resolverCache) put(pubKeyHex, identifier string, payload *Payload, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Add(cacheKey(pubKeyHex, identifier), cacheEntry{payload: payload, expiry: expiry})
}
