package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_PutThenGetRoundTrips(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	key, err := store.Put(ctx, Result{
		SessionID: "sess-1",
		Columns:   []string{"id", "amount"},
		Rows:      [][]any{{1, 10.5}, {2, 20.0}},
		Summary:   "2 rows",
		RowCount:  2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount"}, got.Columns)
	assert.Equal(t, [][]any{{1, 10.5}, {2, 20.0}}, got.Rows)
	assert.Equal(t, 2, got.RowCount)
	assert.Equal(t, "sess-1", got.SessionID)
}

func TestMemStore_GetMissingKey(t *testing.T) {
	store := NewMemStore()
	_, err := store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_ListScopedBySession(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	k1, _ := store.Put(ctx, Result{SessionID: "sess-a", RowCount: 1})
	k2, _ := store.Put(ctx, Result{SessionID: "sess-a", RowCount: 1})
	_, _ = store.Put(ctx, Result{SessionID: "sess-b", RowCount: 1})

	keys, err := store.List(ctx, "sess-a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{k1, k2}, keys)
}

func TestMemStore_Delete(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	key, _ := store.Put(ctx, Result{SessionID: "sess-1", RowCount: 1})
	require.NoError(t, store.Delete(ctx, key))

	_, err := store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_DeleteUnknownKeyIsNoop(t *testing.T) {
	store := NewMemStore()
	assert.NoError(t, store.Delete(context.Background(), "ghost"))
}

func TestMemStore_SweepRemovesOlderThanWindow(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	key, _ := store.Put(ctx, Result{SessionID: "sess-1", RowCount: 1})

	// Manually age the entry past the sweep window.
	store.mu.Lock()
	r := store.results[key]
	r.CreatedAt = time.Now().Add(-48 * time.Hour)
	store.results[key] = r
	store.mu.Unlock()

	n, err := store.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_SweepKeepsFreshEntries(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	key, _ := store.Put(ctx, Result{SessionID: "sess-1", RowCount: 1})

	n, err := store.Sweep(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = store.Get(ctx, key)
	assert.NoError(t, err)
}

func TestMemStore_Close(t *testing.T) {
	store := NewMemStore()
	assert.NoError(t, store.Close())
}
