package expression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_SetGetRemove(t *testing.T) {
	c := NewContext()
	assert.True(t, c.IsEmpty())

	c.Set("a", 1)
	c.Set("b", "two")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// Overwrite keeps one entry per key.
	c.Set("a", 3)
	v, _ = c.Get("a")
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestContext_EntriesIsSnapshot(t *testing.T) {
	c := NewContextFrom(map[string]any{"a": 1})
	snapshot := c.Entries()
	c.Set("b", 2)

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, c.Len())

	// Mutating the snapshot must not leak back.
	snapshot["c"] = 3
	_, ok := c.Get("c")
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ok, err := store.Contains(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	c := NewContextFrom(map[string]any{"a": 1})
	require.NoError(t, store.Put(ctx, 1, c))

	ok, err = store.Contains(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, c, got)

	// Put overwrites unconditionally.
	replacement := NewContext()
	require.NoError(t, store.Put(ctx, 1, replacement))
	got, _ = store.Get(ctx, 1)
	assert.Same(t, replacement, got)

	removed, err := store.Remove(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}
