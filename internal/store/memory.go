// Package store provides Result Store implementations backing the
// engine's memoization: an embedded BadgerDB store for production and
// an in-memory store for tests and ephemeral deployments.
package store

import (
	"context"
	"sync"

	"github.com/copyleftdev/KERF/internal/engine"
)

// Memory is an in-process Result Store. Records live only for the
// process lifetime. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]engine.CacheRecord
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]engine.CacheRecord)}
}

// Get implements engine.Store.
func (m *Memory) Get(_ context.Context, fingerprint string) (*engine.CacheRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[fingerprint]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

// Put implements engine.Store.
func (m *Memory) Put(_ context.Context, record *engine.CacheRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Fingerprint] = *record
	return nil
}

// PutIfAbsent implements engine.Store.
func (m *Memory) PutIfAbsent(_ context.Context, record *engine.CacheRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[record.Fingerprint]; exists {
		return false, nil
	}
	m.records[record.Fingerprint] = *record
	return true, nil
}

// Len reports the number of stored records. Intended for tests.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
