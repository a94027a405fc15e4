package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryRequesterRepository_GetCreatesAndUpdatesChat(t *testing.T) {
	repo := NewMemoryRequesterRepository()
	ctx := context.Background()

	_, ok := repo.Lookup(ctx, "alice")
	require.False(t, ok)

	r, err := repo.Get(ctx, "alice", 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), r.ChatID)

	r, err = repo.Get(ctx, "alice", 0)
	require.NoError(t, err)
	require.Equal(t, int64(10), r.ChatID)

	r, err = repo.Get(ctx, "alice", 20)
	require.NoError(t, err)
	require.Equal(t, int64(20), r.ChatID)
}

func TestMemoryRequesterRepository_Save(t *testing.T) {
	repo := NewMemoryRequesterRepository()
	ctx := context.Background()

	r, err := repo.Get(ctx, "bob", 5)
	require.NoError(t, err)
	r.Touch("job-1", time.Now())
	require.NoError(t, repo.Save(ctx, r))

	got, ok := repo.Lookup(ctx, "bob")
	require.True(t, ok)
	require.Equal(t, "job-1", got.LastJob)
}

func TestMemoryRequesterRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRequesterRepository()
	ctx := context.Background()

	r, err := repo.Get(ctx, "carol", 7)
	require.NoError(t, err)
	r.ChatID = 99
	r.Touch("job-x", time.Now())

	stored, ok := repo.Lookup(ctx, "carol")
	require.True(t, ok)
	require.Equal(t, int64(7), stored.ChatID)
	require.Empty(t, stored.LastJob)

	stored.ChatID = 1
	again, _ := repo.Lookup(ctx, "carol")
	require.Equal(t, int64(7), again.ChatID)
}

func TestMemoryRequesterRepository_ConcurrentGetAndLookup(t *testing.T) {
	repo := NewMemoryRequesterRepository()
	ctx := context.Background()
	_, err := repo.Get(ctx, "dave", 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r, _ := repo.Get(ctx, "dave", int64(i+1))
			r.Touch(fmt.Sprintf("job-%d", i), time.Now())
			_ = repo.Save(ctx, r)
		}(i)
		go func() {
			defer wg.Done()
			if r, ok := repo.Lookup(ctx, "dave"); ok {
				_ = r.ChatID
			}
		}()
	}
	wg.Wait()

	r, ok := repo.Lookup(ctx, "dave")
	require.True(t, ok)
	require.NotZero(t, r.ChatID)
}
