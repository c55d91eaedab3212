package tokenstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"school-portal/internal/model"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set get clear", func(t *testing.T) {
		store := NewMemory()

		_, err := store.Get(ctx, "s1")
		require.ErrorIs(t, err, model.ErrTokenNotFound)

		require.NoError(t, store.Set(ctx, "s1", "tok-1"))
		token, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "tok-1", token)

		require.NoError(t, store.Set(ctx, "s1", "tok-2"))
		token, err = store.Get(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "tok-2", token)
		require.Equal(t, 1, store.Len())

		require.NoError(t, store.Clear(ctx, "s1"))
		_, err = store.Get(ctx, "s1")
		require.ErrorIs(t, err, model.ErrTokenNotFound)
	})

	t.Run("scopes are isolated", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Set(ctx, "a", "tok-a"))
		require.NoError(t, store.Set(ctx, "b", "tok-b"))
		require.NoError(t, store.Clear(ctx, "a"))

		token, err := store.Get(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, "tok-b", token)
	})

	t.Run("rejects an empty scope", func(t *testing.T) {
		store := NewMemory()
		require.ErrorIs(t, store.Set(ctx, " ", "tok"), model.ErrNoSession)
	})

	t.Run("clearing a missing scope is a no-op", func(t *testing.T) {
		store := NewMemory()
		require.NoError(t, store.Clear(ctx, "missing"))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		store := NewMemory()
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.Set(ctx, "shared", "tok")
				_, _ = store.Get(ctx, "shared")
			}()
		}
		wg.Wait()
		require.Equal(t, 1, store.Len())
	})
}

func TestScopedKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "portal:abc:token", scopedKey("abc"))
}
