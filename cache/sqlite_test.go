package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLiteCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	c, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestSQLiteCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestSQLite(t)

	_, ok := c.Get(ctx, "t_hello")
	assert.False(t, ok)

	c.Set(ctx, "t_hello", "hallo")
	c.Set(ctx, "t_hello", "Hallo")

	val, ok := c.Get(ctx, "t_hello")
	assert.True(t, ok)
	assert.Equal(t, "Hallo", val)
	assert.Equal(t, 1, c.Count(ctx))
}

func TestSQLiteCache_UnderscoreIsLiteral(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestSQLite(t)

	c.Set(ctx, "t_a", "1")
	c.Set(ctx, "tXb", "2") // would match LIKE 't_%'

	assert.Equal(t, 1, c.Count(ctx))
	assert.Equal(t, 1, c.Clear(ctx))

	val, ok := c.Get(ctx, "tXb")
	assert.True(t, ok)
	assert.Equal(t, "2", val)
}

func TestSQLiteCache_DeleteAndEntries(t *testing.T) {
	ctx := context.Background()
	c, _ := openTestSQLite(t)

	c.Set(ctx, "t_a", "1")
	c.Set(ctx, "t_b", "2")
	c.Delete(ctx, "t_a")

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"t_b": "2"}, entries)
}

func TestSQLiteCache_Persists(t *testing.T) {
	ctx := context.Background()
	c, path := openTestSQLite(t)

	c.Set(ctx, "t_a", "1")
	require.NoError(t, c.Close())

	// Reopening must not re-apply migrations or lose data
	again, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer again.Close()

	val, ok := again.Get(ctx, "t_a")
	assert.True(t, ok)
	assert.Equal(t, "1", val)
}
