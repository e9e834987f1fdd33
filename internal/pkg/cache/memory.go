package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store backed by a size-bounded LRU.
// The LRU itself never expires entries; each entry carries its own deadline.
type MemoryStore struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most size entries
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = 1024
	}
	return &MemoryStore{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, 0),
		now: time.Now,
	}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return entry.value, nil
}

// Set implements Store. A non-positive ttl keeps the entry until it is evicted.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.lru.Add(key, entry)
	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.lru.Remove(k)
	}
	return nil
}

// DeletePrefix implements Store
func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	for _, k := range m.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.lru.Remove(k)
		}
	}
	return nil
}

// Ping implements Store
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store
func (m *MemoryStore) Close() error {
	m.lru.Purge()
	return nil
}

// Len returns the number of entries, expired ones included
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}
