package cache

import (
	"sync"
	"time"
)

// Store is a key-value cache with per-entry TTL. Entries vanish once their
// TTL lapses; readers never see an expired value.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemory() *Memory {
	m := &Memory{entries: make(map[string]entry)}
	go m.cleanup()
	return m
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl means the entry
// would already be expired, so nothing is stored.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (m *Memory) cleanup() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		m.mu.Lock()
		now := time.Now()
		for k, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, k)
			}
		}
		m.mu.Unlock()
	}
}
