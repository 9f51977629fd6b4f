package engine

import (
	"context"
	"time"
)

// CacheRecord is the unit of persistence: one record per distinct
// fingerprint, written once and never mutated afterwards.
type CacheRecord struct {
	Fingerprint string    `json:"fingerprint"`
	AlgorithmID string    `json:"algorithmId"`
	CreatedAt   time.Time `json:"createdAt"`
	Result      Result    `json:"result"`
}

// Store is the key-value persistence collaborator the engine memoizes
// through. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record stored under fingerprint, or (nil, nil)
	// when no record exists. A non-nil error indicates a store failure,
	// never a plain miss.
	Get(ctx context.Context, fingerprint string) (*CacheRecord, error)

	// Put writes the record under its fingerprint unconditionally.
	Put(ctx context.Context, record *CacheRecord) error

	// PutIfAbsent writes the record only when no record exists under
	// its fingerprint, atomically. It returns true when the write took
	// effect and false when an existing record won the race.
	PutIfAbsent(ctx context.Context, record *CacheRecord) (bool, error)
}
