package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/KERF/internal/engine"
)

func sampleRecord(fingerprint string) *engine.CacheRecord {
	return &engine.CacheRecord{
		Fingerprint: fingerprint,
		AlgorithmID: "mincut",
		CreatedAt:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Result: engine.Result{
			Output:  map[string]interface{}{"minCut": float64(2)},
			Summary: "Estimated minimum cut of 2 after 100 contraction runs.",
			Diagnostics: map[string]interface{}{
				"iterations": float64(100),
			},
		},
	}
}

// storeUnderTest runs the same contract checks against any Store
// implementation.
func storeUnderTest(t *testing.T, s engine.Store) {
	ctx := context.Background()

	t.Run("get on empty store misses", func(t *testing.T) {
		rec, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("put then get round-trips", func(t *testing.T) {
		want := sampleRecord("fp-roundtrip")
		require.NoError(t, s.Put(ctx, want))

		got, err := s.Get(ctx, "fp-roundtrip")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.AlgorithmID, got.AlgorithmID)
		assert.Equal(t, want.Result.Summary, got.Result.Summary)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("put-if-absent inserts once", func(t *testing.T) {
		first := sampleRecord("fp-conditional")
		inserted, err := s.PutIfAbsent(ctx, first)
		require.NoError(t, err)
		assert.True(t, inserted)

		second := sampleRecord("fp-conditional")
		second.Result.Summary = "a different run"
		inserted, err = s.PutIfAbsent(ctx, second)
		require.NoError(t, err)
		assert.False(t, inserted)

		got, err := s.Get(ctx, "fp-conditional")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, first.Result.Summary, got.Result.Summary, "first write wins")
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemory())
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	storeUnderTest(t, s)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), sampleRecord("fp-durable")))
	require.NoError(t, s.Close())

	reopened, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(context.Background(), "fp-durable")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mincut", got.AlgorithmID)
}

func TestBadgerRequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}

func TestMemoryStoreCopiesRecords(t *testing.T) {
	s := NewMemory()
	rec := sampleRecord("fp-isolation")
	require.NoError(t, s.Put(context.Background(), rec))

	got, err := s.Get(context.Background(), "fp-isolation")
	require.NoError(t, err)
	got.AlgorithmID = "mutated"

	again, err := s.Get(context.Background(), "fp-isolation")
	require.NoError(t, err)
	assert.Equal(t, "mincut", again.AlgorithmID)
}
