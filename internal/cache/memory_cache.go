package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// memoryCache is the backend without tag support. FlushTag falls back to a
// full flush, which is coarser than the Redis backend but keeps correctness:
// stale entries are never served after an invalidation.
type memoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache(defaultTTL time.Duration) Cache {
	return &memoryCache{
		entries:    make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
	}
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if time.Now().After(entry.expiresAt) {
		// Reap the dead entry so misses do not accumulate garbage.
		m.mu.Lock()
		if current, still := m.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()

		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	return true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration, _ ...string) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()

	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {

	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	return nil
}

func (m *memoryCache) FlushTag(ctx context.Context, _ string) error {
	return m.Flush(ctx)
}

func (m *memoryCache) Flush(_ context.Context) error {

	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()

	return nil
}

func (m *memoryCache) Close() error {
	return nil
}
