package chatlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "chatlog.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndSessionEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "sess-1", "what are your skills?", "I work with Python."))
	require.NoError(t, store.Append(ctx, "sess-1", "thanks", "You're welcome!"))
	require.NoError(t, store.Append(ctx, "sess-2", "hi", "Hello!"))

	entries, err := store.SessionEntries(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "user", entries[0].Speaker)
	assert.Equal(t, "what are your skills?", entries[0].Text)
	assert.Equal(t, "bot", entries[1].Speaker)
	assert.Equal(t, "I work with Python.", entries[1].Text)
	assert.Equal(t, "thanks", entries[2].Text)

	other, err := store.SessionEntries(ctx, "sess-2")
	require.NoError(t, err)
	assert.Len(t, other, 2)
}

func TestSessionEntriesEmpty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.SessionEntries(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnexportedAndMarkExported(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "sess-1", "q1", "a1"))
	require.NoError(t, store.Append(ctx, "sess-1", "q2", "a2"))

	pending, err := store.UnexportedEntries(ctx, 100)
	require.NoError(t, err)
	require.Len(t, pending, 4)

	ids := []int64{pending[0].ID, pending[1].ID}
	require.NoError(t, store.MarkExported(ctx, ids))

	remaining, err := store.UnexportedEntries(ctx, 100)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "q2", remaining[0].Text)

	// Empty id list is a no-op.
	require.NoError(t, store.MarkExported(ctx, nil))
}

func TestUnexportedEntriesLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, store.Append(ctx, "sess-1", "q", "a"))
	}

	pending, err := store.UnexportedEntries(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestPruneOlderThan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "sess-1", "old question", "old answer"))

	// Future cutoff removes everything written so far.
	n, err := store.PruneOlderThan(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	entries, err := store.SessionEntries(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Past cutoff removes nothing.
	require.NoError(t, store.Append(ctx, "sess-1", "new question", "new answer"))
	n, err = store.PruneOlderThan(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReady(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ready(context.Background()))

	var nilStore *Store
	assert.Error(t, nilStore.Ready(context.Background()))
}

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chatlog.db")
	store, err := New(path, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.NoError(t, store.Ready(context.Background()))
}
