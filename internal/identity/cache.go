package identity

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	Fingerprint string
	ExpiresAt   time.Time
}

// SessionCache keeps one fingerprint per browsing session. Entries expire
// with the session and are dropped explicitly when the session ends.
type SessionCache struct {
	lruCache *lru.Cache[string, cacheItem]
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionCache creates a cache holding at most size sessions.
func NewSessionCache(size int, ttl time.Duration) (*SessionCache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	return &SessionCache{lruCache: l, ttl: ttl, now: time.Now}, nil
}

func (c *SessionCache) Set(sessionID, fingerprint string) {
	c.lruCache.Add(sessionID, cacheItem{
		Fingerprint: fingerprint,
		ExpiresAt:   c.now().Add(c.ttl),
	})
}

// Get returns the cached fingerprint, or false if absent or expired.
func (c *SessionCache) Get(sessionID string) (string, bool) {
	val, ok := c.lruCache.Get(sessionID)
	if !ok {
		return "", false
	}

	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(sessionID)
		return "", false
	}

	return val.Fingerprint, true
}

func (c *SessionCache) Delete(sessionID string) {
	c.lruCache.Remove(sessionID)
}

func (c *SessionCache) Len() int {
	return c.lruCache.Len()
}
