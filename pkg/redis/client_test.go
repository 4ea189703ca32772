package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	mini := miniredis.RunT(t)
	raw := redislib.NewClient(&redislib.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	return NewFromClient(raw)
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.Set(ctx, AccessSessionKey(7, "acc-1"), "refresh-token", time.Minute))

	got, err := client.Get(ctx, AccessSessionKey(7, "acc-1"))
	require.NoError(t, err)
	assert.Equal(t, "refresh-token", got)

	require.NoError(t, client.Del(ctx, AccessSessionKey(7, "acc-1")))

	_, err = client.Get(ctx, AccessSessionKey(7, "acc-1"))
	assert.True(t, IsNil(err))
}

func TestSetNX(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	ok, err := client.SetNX(ctx, CounterKey("daily"), "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, CounterKey("daily"), "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIncr(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	n, err := client.Incr(ctx, CounterKey("searches"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = client.Incr(ctx, CounterKey("searches"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestKeyNamespacing(t *testing.T) {
	assert.Equal(t, "mm:session:7:acc-1", AccessSessionKey(7, "acc-1"))
	assert.Equal(t, "mm:cache:popular_keywords:10", PopularKeywordsKey(10))
	assert.Equal(t, "mm:counter:searches", CounterKey("searches"))
}
