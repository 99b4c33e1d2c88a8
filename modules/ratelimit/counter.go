package ratelimit

import (
	"context"
	"sync"
	"time"

	"books/modules/clock"
)

// CounterStore is the persistence contract behind fixed-window counters.
type CounterStore interface {
	// Incr increments a counter at key and returns the new value.
	// TTL tells the store how long to keep the key alive (at least).
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Get returns the current value of a counter, or 0 if missing.
	Get(ctx context.Context, key string) (int64, error)
}

var _ CounterStore = (*MemoryCounterStore)(nil)

// MemoryCounterStore keeps counters in process memory. It is used when no
// shared store is configured and in tests.
type MemoryCounterStore struct {
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]memoryCounter
}

type memoryCounter struct {
	value     int64
	expiresAt time.Time
}

func NewMemoryCounterStore(c clock.Clock) *MemoryCounterStore {
	if c == nil {
		c = clock.RealClockProvider()
	}
	return &MemoryCounterStore{clock: c, entries: map[string]memoryCounter{}}
}

func (m *MemoryCounterStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	e, ok := m.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = memoryCounter{expiresAt: now.Add(ttl)}
	}
	e.value++
	m.entries[key] = e
	m.sweep(now)
	return e.value, nil
}

func (m *MemoryCounterStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.clock.Now().Before(e.expiresAt) {
		return 0, nil
	}
	return e.value, nil
}

// sweep drops expired counters once the map grows; callers hold mu.
func (m *MemoryCounterStore) sweep(now time.Time) {
	if len(m.entries) < 1024 {
		return
	}
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
