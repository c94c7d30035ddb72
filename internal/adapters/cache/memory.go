// Package cache provides ports.Cache implementations: an in-process map,
// Redis, and a no-op cache that always misses.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/domain"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

const (
	entityCacheKey = "cache key"

	// sweepEvery is how many writes pass between full sweeps of expired entries.
	sweepEvery = 256
)

var (
	_ ports.Cache = (*Memory)(nil)
	_ ports.Cache = Nop{}
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is a process-local cache. Expired entries are dropped on read and
// by a sweep every sweepEvery writes, so keys that are never read again do
// not pile up.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	writes  int
	now     func() time.Time
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements ports.Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, domain.NewNotFoundError(entityCacheKey, key)
	}

	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()

		return nil, domain.NewNotFoundError(entityCacheKey, key)
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)

	return out, nil
}

// Set implements ports.Cache.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)

	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.writes++
	if m.writes >= sweepEvery {
		m.writes = 0
		m.sweepLocked()
	}
	m.mu.Unlock()

	return nil
}

// Sweep drops every expired entry.
func (m *Memory) Sweep() {
	m.mu.Lock()
	m.sweepLocked()
	m.mu.Unlock()
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for key, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Nop never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(_ context.Context, key string) ([]byte, error) {
	return nil, domain.NewNotFoundError(entityCacheKey, key)
}

// Set discards the value.
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
