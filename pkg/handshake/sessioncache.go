package handshake

import (
	"container/list"
	"sync"

	"github.com/pzverkov/tls10-client/internal/constants"
)

// sessionEntry is the cache's record for one resumable session
// (spec.md §4.6).
type sessionEntry struct {
	id           string
	masterSecret [constants.MasterSecretSize]byte
	cipher       constants.CipherSuite
	elem         *list.Element
}

// SessionCache is a fixed-capacity set of session entries keyed by
// session id, evicted LRU when full — "an implementation-defined policy
// (LRU is natural)" per spec.md §4.6.
type SessionCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*sessionEntry
	order    *list.List // front = most recently used
}

// NewSessionCache returns a cache holding at most capacity sessions. A
// capacity of 0 disables resumption entirely (ctx.max_sessions == 0 in
// spec.md terms).
func NewSessionCache(capacity int) *SessionCache {
	return &SessionCache{
		capacity: capacity,
		entries:  make(map[string]*sessionEntry),
		order:    list.New(),
	}
}

// Lookup returns the cached entry for id, promoting it to most-recently-used.
func (c *SessionCache) Lookup(id []byte) (*sessionEntry, bool) {
	if c.capacity == 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[string(id)]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	return e, true
}

// Update installs or refreshes the entry for id, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *SessionCache) Update(id []byte, masterSecret [constants.MasterSecretSize]byte, suite constants.CipherSuite) *sessionEntry {
	if c.capacity == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := string(id)
	if e, ok := c.entries[key]; ok {
		e.masterSecret = masterSecret
		e.cipher = suite
		c.order.MoveToFront(e.elem)
		return e
	}

	if len(c.entries) >= c.capacity {
		lru := c.order.Back()
		if lru != nil {
			c.order.Remove(lru)
			delete(c.entries, lru.Value.(*sessionEntry).id)
		}
	}

	e := &sessionEntry{id: key, masterSecret: masterSecret, cipher: suite}
	e.elem = c.order.PushFront(e)
	c.entries[key] = e
	return e
}

// Kill removes entry from the cache, used when a fatal alert is issued
// for its connection (spec.md §4.6, §4.10).
func (c *SessionCache) Kill(entry *sessionEntry) {
	if entry == nil || c.capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[entry.id]; ok && e == entry {
		c.order.Remove(e.elem)
		delete(c.entries, entry.id)
	}
}

// Len reports the number of cached sessions, chiefly for tests.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
