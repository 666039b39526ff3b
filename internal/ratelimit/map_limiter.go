// Package ratelimit throttles outbound per-relay traffic so a resolver or
// publisher juggling many relays concurrently can't hammer any single one.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// evictionInterval is how many Allow calls pass before MapLimiter sweeps
// idle per-key limiters out of its map.
const evictionInterval = 512

// MapLimiter hands out a token-bucket rate.Limiter per key (a relay URL),
// creating one lazily on first use and periodically evicting limiters that
// have gone idle.
type MapLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	hits     int
}

// NewMapLimiter returns a limiter allowing rps events per second per key,
// with burst as the bucket size.
func NewMapLimiter(rps float64, burst int) *MapLimiter {
	return &MapLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether an action against key is permitted right now,
// consuming a token from key's bucket if so.
func (m *MapLimiter) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
	if m.hits%evictionInterval == 0 {
		m.evictIdleLocked()
	}
	limiter, ok := m.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(m.rps, m.burst)
		m.limiters[key] = limiter
	}
	return limiter.Allow()
}

// evictIdleLocked drops limiters whose bucket has refilled to capacity,
// meaning nothing has drawn from them recently.
func (m *MapLimiter) evictIdleLocked() {
	for key, limiter := range m.limiters {
		if limiter.Tokens() >= float64(m.burst) {
			delete(m.limiters, key)
		}
	}
}
