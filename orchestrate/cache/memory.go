package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoryStore is the RAM tier: a size-bounded LRU of Entry values. Eviction order is the
// library's own recency tracking; this wrapper adds TTL checks and access-count bookkeeping
// on top, since golang-lru/v2 itself is agnostic to either.
type memoryStore struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, Entry]
	onEvict  func(evicted Entry)
}

func newMemoryStore(maxSize int, onEvict func(evicted Entry)) *memoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	m := &memoryStore{onEvict: onEvict}
	c, _ := lru.NewWithEvict[string, Entry](maxSize, func(key string, value Entry) {
		if m.onEvict != nil {
			m.onEvict(value)
		}
	})
	m.lru = c
	return m
}

func (m *memoryStore) get(key string, ttl time.Duration, now time.Time) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lru.Get(key)
	if !ok {
		return Entry{}, false
	}
	if entry.expired(ttl, now) {
		m.lru.Remove(key)
		return Entry{}, false
	}
	entry.AccessedAt = now
	entry.AccessCount++
	m.lru.Add(key, entry)
	return entry, true
}

// peek returns an entry without affecting LRU recency or access bookkeeping.
func (m *memoryStore) peek(key string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Peek(key)
}

func (m *memoryStore) put(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Add(entry.Key, entry)
}

func (m *memoryStore) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Remove(key)
}

func (m *memoryStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Keys()
}

func (m *memoryStore) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Purge()
}
