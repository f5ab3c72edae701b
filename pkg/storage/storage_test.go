package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGetRoundtrip(t *testing.T) {
	store := newTestStore(t)

	want := payload{Name: "alpha", Count: 3}
	require.NoError(t, store.Set("item:1", want))

	var got payload
	require.NoError(t, store.Get("item:1", &got))
	assert.Equal(t, want, got)
}

func TestGetMissingKey(t *testing.T) {
	store := newTestStore(t)

	var got payload
	err := store.Get("missing", &got)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("item:1", payload{Name: "alpha"}))
	require.NoError(t, store.Delete("item:1"))

	var got payload
	assert.ErrorIs(t, store.Get("item:1", &got), ErrKeyNotFound)
}

func TestListReturnsPrefixedKeysInOrder(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("item:00000002", payload{}))
	require.NoError(t, store.Set("item:00000001", payload{}))
	require.NoError(t, store.Set("other:1", payload{}))

	keys, err := store.List("item:")
	require.NoError(t, err)
	assert.Equal(t, []string{"item:00000001", "item:00000002"}, keys)
}

func TestIncrementIsMonotonic(t *testing.T) {
	store := newTestStore(t)

	for want := uint64(1); want <= 5; want++ {
		got, err := store.Increment("seq:test")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIncrementCountersAreIndependent(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Increment("seq:a")
	require.NoError(t, err)
	second, err := store.Increment("seq:b")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(1), second)
}
