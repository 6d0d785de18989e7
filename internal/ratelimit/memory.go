package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count int
	last  time.Time
}

// MemoryLimiter keeps attempt counters in process memory. Counters older
// than the window are discarded on the next touch.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryLimiter creates an empty in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]*memoryEntry)}
}

// Blocked implements AttemptLimiter.
func (m *MemoryLimiter) Blocked(_ context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if now.Sub(entry.last) > window {
		delete(m.entries, key)
		return false, nil
	}
	return entry.count >= limit, nil
}

// Fail implements AttemptLimiter.
func (m *MemoryLimiter) Fail(_ context.Context, key string, window time.Duration, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || now.Sub(entry.last) > window {
		entry = &memoryEntry{}
		m.entries[key] = entry
	}
	entry.count++
	entry.last = now
	return entry.count, nil
}

// Reset implements AttemptLimiter.
func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
