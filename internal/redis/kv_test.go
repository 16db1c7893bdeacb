package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/codegenesis/internal/domain/project"
	"github.com/rpggio/codegenesis/internal/storage"
)

// newTestStore connects to the server named by CODEGENESIS_TEST_REDIS_ADDR
// or skips the test.
func newTestStore(t *testing.T) *KVStore {
	t.Helper()
	addr := os.Getenv("CODEGENESIS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CODEGENESIS_TEST_REDIS_ADDR not set")
	}
	store, err := New(context.Background(), Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKVStore_UpdateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := "codegenesis_test_" + uuid.NewString()
	t.Cleanup(func() { store.rdb.Del(context.Background(), key) })

	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, store.Update(ctx, func(tx storage.Txn) error {
		_, err := tx.Get(key)
		require.ErrorIs(t, err, storage.ErrKeyNotFound)
		require.NoError(t, tx.Set(key, "v1"))
		value, err := tx.Get(key)
		require.NoError(t, err)
		require.Equal(t, "v1", value)
		return nil
	}))

	value, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "v1", value)

	require.NoError(t, store.Update(ctx, func(tx storage.Txn) error {
		return tx.Delete(key)
	}))
	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestKVStore_FailedUpdateWritesNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := "codegenesis_test_" + uuid.NewString()

	boom := errors.New("boom")
	err := store.Update(ctx, func(tx storage.Txn) error {
		require.NoError(t, tx.Set(key, "v1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestKVStore_ProjectStore(t *testing.T) {
	kv := newTestStore(t)
	ctx := context.Background()
	store := storage.NewProjectStore(kv, nil, nil)

	id := uuid.NewString()
	t.Cleanup(func() { store.Delete(context.Background(), id) })

	proj := project.New(id, uuid.NewString(), testNow())
	require.NoError(t, store.Put(ctx, proj))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, proj, got)

	var found bool
	for _, summary := range store.Index(ctx) {
		if summary.ID == id {
			found = true
		}
	}
	require.True(t, found)
}
