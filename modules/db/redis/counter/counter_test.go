package counter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli, err := rueidis.NewClient(rueidis.ClientOption{InitAddress: []string{mr.Addr()}, DisableCache: true})
	require.NoError(t, err)
	t.Cleanup(cli.Close)
	return NewRedisCounterStore(cli, "rl"), mr
}

func TestRedisCounter_GetMissingIsZero(t *testing.T) {
	store, _ := newStore(t)

	n, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisCounter_IncrSetsTTLOnce(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	n, err := store.Incr(ctx, "ip:1", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2*time.Second, mr.TTL("rl:ip:1"))

	mr.FastForward(time.Second)

	n, err = store.Incr(ctx, "ip:1", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, time.Second, mr.TTL("rl:ip:1"), "second hit must not refresh the expiry")

	got, err := store.Get(ctx, "ip:1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	mr.FastForward(2 * time.Second)
	got, err = store.Get(ctx, "ip:1")
	require.NoError(t, err)
	assert.Zero(t, got)
}
