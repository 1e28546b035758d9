package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/rohmanhakim/ssr-renderer/pkg/hashutil"
)

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of the Store interface.
// It uses a map for storage and provides thread-safe operations via RWMutex.
//
// Entries live only for the lifetime of the process. Nothing runs in the
// background: expired entries stay in the map until Clean, Delete or Reset.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Entry
	now  func() time.Time
}

// NewMemoryStore creates a new in-memory store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a store that reads time from now.
// This is useful for testing.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Entry),
		now:  now,
	}
}

func (m *MemoryStore) Save(key string, html string, ttl time.Duration) error {
	if key == "" {
		return &CacheError{
			Message:   "key must not be empty",
			Retryable: false,
			Cause:     ErrCauseEmptyKey,
		}
	}
	if html == "" {
		return &CacheError{
			Message:   fmt.Sprintf("html for %q must not be empty", key),
			Retryable: false,
			Cause:     ErrCauseEmptyHTML,
		}
	}
	if ttl < 0 {
		return &CacheError{
			Message:   fmt.Sprintf("ttl %v for %q must be >= 0", ttl, key),
			Retryable: false,
			Cause:     ErrCauseNegativeTTL,
		}
	}

	now := m.now()
	entry := Entry{
		key:      key,
		html:     html,
		digest:   hashutil.ContentDigest(html),
		storedAt: now,
	}
	// ttl == 0 keeps expiresAt zero: eternal
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists {
		CacheEntries.Inc()
	}
	m.data[key] = entry
	return nil
}

func (m *MemoryStore) Get(key string) (Entry, bool) {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	if !exists || entry.IsExpired(m.now()) {
		CacheMisses.Inc()
		return Entry{}, false
	}

	CacheHits.Inc()
	return entry, true
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; exists {
		delete(m.data, key)
		CacheEntries.Dec()
		CacheEvictions.WithLabelValues(evictDeleted).Inc()
	}
}

func (m *MemoryStore) Clean() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.data {
		if entry.IsExpired(now) {
			delete(m.data, key)
			removed++
		}
	}

	if removed > 0 {
		CacheEntries.Sub(float64(removed))
		CacheEvictions.WithLabelValues(evictExpired).Add(float64(removed))
	}
	return removed
}

func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.data); n > 0 {
		CacheEntries.Sub(float64(n))
		CacheEvictions.WithLabelValues(evictReset).Add(float64(n))
	}
	m.data = make(map[string]Entry)
}

func (m *MemoryStore) GetAll() map[string]Entry {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]Entry, len(m.data))
	for key, entry := range m.data {
		if !entry.IsExpired(now) {
			snapshot[key] = entry
		}
	}
	return snapshot
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
