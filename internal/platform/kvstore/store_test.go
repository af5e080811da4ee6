package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()

	boltStore, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = boltStore.Close() })

	return map[string]Store{
		"bolt":   boltStore,
		"memory": NewMemoryStore(),
	}
}

func TestStorePutGet(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "carts", "missing")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, store.Put(ctx, "carts", "guest", []byte(`{"items":[]}`)))

			value, err := store.Get(ctx, "carts", "guest")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"items":[]}`), value)

			require.NoError(t, store.Put(ctx, "carts", "guest", []byte(`{"items":[1]}`)))
			value, err = store.Get(ctx, "carts", "guest")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"items":[1]}`), value)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Put(ctx, "comments", "c1", []byte(`{}`)))
			require.NoError(t, store.Delete(ctx, "comments", "c1"))

			_, err := store.Get(ctx, "comments", "c1")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			assert.NoError(t, store.Delete(ctx, "comments", "never-existed"))
			assert.NoError(t, store.Delete(ctx, "no-such-collection", "c1"))
		})
	}
}

func TestStoreList(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			values, err := store.List(ctx, "products")
			require.NoError(t, err)
			assert.Empty(t, values)

			require.NoError(t, store.Put(ctx, "products", "p1", []byte(`1`)))
			require.NoError(t, store.Put(ctx, "products", "p2", []byte(`2`)))
			require.NoError(t, store.Put(ctx, "other", "x", []byte(`x`)))

			values, err = store.List(ctx, "products")
			require.NoError(t, err)
			assert.Len(t, values, 2)
			assert.Equal(t, []byte(`1`), values["p1"])
			assert.Equal(t, []byte(`2`), values["p2"])
		})
	}
}

func TestStoreContextCancelled(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			assert.Error(t, store.Put(ctx, "carts", "guest", []byte(`{}`)))
			_, err := store.Get(ctx, "carts", "guest")
			assert.Error(t, err)
		})
	}
}
