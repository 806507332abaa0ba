package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore
// implementation adheres to the defined interface contract.
// newStore must return an empty store with capacity for at least capacity
// records and exactly capacity when bounded.
func RunHistoryStoreContract(t *testing.T, capacity int, newStore func(t *testing.T) HistoryStore) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	record := func(i int) domain.RollRecord {
		return domain.RollRecord{
			ID:        fmt.Sprintf("roll-%d", i),
			Notation:  "2d6+1",
			Canonical: "2d6+1",
			Totals:    []int{i + 2, i + 3},
			Sum:       2*i + 5,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}

	t.Run("Empty", func(t *testing.T) {
		store := newStore(t)
		records, err := store.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Append and Recent", func(t *testing.T) {
		store := newStore(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Append(ctx, record(i)), "Append should not return error")
		}

		records, err := store.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "roll-2", records[0].ID, "newest first")
		assert.Equal(t, "roll-0", records[2].ID)
		assert.Equal(t, []int{4, 5}, records[0].Totals)
		assert.True(t, records[0].CreatedAt.Equal(record(2).CreatedAt))
	})

	t.Run("Limit", func(t *testing.T) {
		store := newStore(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Append(ctx, record(i)))
		}

		records, err := store.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "roll-2", records[0].ID)
		assert.Equal(t, "roll-1", records[1].ID)

		records, err = store.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Bounded", func(t *testing.T) {
		store := newStore(t)
		for i := 0; i < capacity+5; i++ {
			require.NoError(t, store.Append(ctx, record(i)))
		}

		records, err := store.Recent(ctx, capacity+10)
		require.NoError(t, err)
		require.Len(t, records, capacity)
		assert.Equal(t, fmt.Sprintf("roll-%d", capacity+4), records[0].ID)
		assert.Equal(t, "roll-5", records[capacity-1].ID, "oldest records are discarded")
	})

	t.Run("Concurrent Append", func(t *testing.T) {
		store := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < capacity; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, store.Append(ctx, record(i)))
			}(i)
		}
		wg.Wait()

		records, err := store.Recent(ctx, capacity)
		require.NoError(t, err)
		assert.Len(t, records, capacity)
	})
}
