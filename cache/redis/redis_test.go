package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := New(Options{Addr: mr.Addr()})
	defer c.Close()

	ctx := context.Background()

	ok, err := c.Has(ctx, "chat-abc")
	require.NoError(t, err)
	assert.False(t, ok)

	err = c.Set(ctx, "chat-abc", "cached output", map[string]any{"input": "prompt"})
	require.NoError(t, err)

	ok, err = c.Has(ctx, "chat-abc")
	require.NoError(t, err)
	assert.True(t, ok)

	value, found, err := c.Get(ctx, "chat-abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cached output", value)
}

func TestRedisCache_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := New(Options{Addr: mr.Addr(), Prefix: "myrun:"})
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "chat-abc", "x", nil))
	assert.True(t, mr.Exists("myrun:chat-abc"))
}

func TestRedisCache_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := New(Options{Addr: mr.Addr(), TTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "chat-abc", "x", nil))

	// Past the TTL the entry is gone.
	mr.FastForward(2 * time.Minute)

	_, found, err := c.Get(ctx, "chat-abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_GetMissing(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c := New(Options{Addr: mr.Addr()})
	defer c.Close()

	value, found, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}
