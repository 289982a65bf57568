// Package cache provides caching decorators for the registry lookup port.
// A single traversal can hit the same holding company from several branches;
// caching keeps that a single upstream call.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/consciencex/lhb-ubo/internal/registry"
)

type memoryEntry struct {
	record    *registry.CompanyRecord
	expiresAt time.Time
}

// Memory is an in-process TTL cache in front of another Lookup. Only
// successful lookups are cached; failures always retry upstream.
type Memory struct {
	next  registry.Lookup
	ttl   time.Duration
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory wraps next with an in-process cache. A zero or negative TTL
// disables expiry.
func NewMemory(next registry.Lookup, ttl time.Duration) *Memory {
	return &Memory{
		next:    next,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *Memory) Lookup(ctx context.Context, registrationID string) (*registry.CompanyRecord, error) {
	if record, ok := m.get(registrationID); ok {
		return record, nil
	}

	record, err := m.next.Lookup(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	m.put(registrationID, record)
	return record, nil
}

func (m *Memory) get(registrationID string) (*registry.CompanyRecord, bool) {
	m.mu.RLock()
	entry, ok := m.entries[registrationID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && m.clock().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, registrationID)
		m.mu.Unlock()
		return nil, false
	}
	return entry.record, true
}

func (m *Memory) put(registrationID string, record *registry.CompanyRecord) {
	entry := memoryEntry{record: record}
	if m.ttl > 0 {
		entry.expiresAt = m.clock().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[registrationID] = entry
	m.mu.Unlock()
}

// Len reports the number of cached records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
