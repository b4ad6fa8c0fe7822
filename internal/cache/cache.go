package cache

import (
	"sync"
	"time"
)

// Cache is the capability the catalog layer depends on. Implementations may
// be process-local or shared; writers must call Invalidate on every mutation.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, val any, ttl time.Duration)
	Invalidate(key string)
}

type entry struct {
	val       any
	expiresAt time.Time
}

// Memory is an in-process Cache with per-entry TTL. Expired entries are
// dropped lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.val, true
}

// Set stores val under key. ttl <= 0 means no expiry.
func (m *Memory) Set(key string, val any, ttl time.Duration) {
	e := entry{val: val}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}
