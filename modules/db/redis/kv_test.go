package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKV_GetMissing(t *testing.T) {
	cli, _ := newTestClient(t)
	kv := NewRedisKV(cli, WithKeyPrefix("books"))

	got, err := kv.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisKV_SetReturnsPreviousAndAppliesTTL(t *testing.T) {
	cli, mr := newTestClient(t)
	kv := NewRedisKV(cli, WithKeyPrefix("books:cache"), WithDefaultTTL(90*time.Second))
	ctx := context.Background()

	prev, err := kv.Swap(ctx, "k", []byte("one"))
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = kv.Swap(ctx, "k", []byte("two"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), prev)

	v, err := mr.Get("books:cache:k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
	assert.Equal(t, 90*time.Second, mr.TTL("books:cache:k"))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestRedisKV_NoTTL(t *testing.T) {
	cli, mr := newTestClient(t)
	kv := NewRedisKV(cli)

	_, err := kv.Swap(context.Background(), "plain", []byte("x"))
	require.NoError(t, err)

	v, _ := mr.Get("plain")
	assert.Equal(t, "x", v)
	assert.Zero(t, mr.TTL("plain"))
}

func TestRedisKV_PrefixAndNilValue(t *testing.T) {
	cli, mr := newTestClient(t)
	kv := NewRedisKV(cli, WithKeyPrefix("p:"))
	ctx := context.Background()
	assert.Equal(t, "p:", kv.Prefix())

	_, err := kv.Swap(ctx, "j", []byte(`{"a":1}`))
	require.NoError(t, err)
	v, _ := mr.Get("p:j")
	assert.JSONEq(t, `{"a":1}`, v)

	_, err = kv.Swap(ctx, "n", nil)
	assert.Error(t, err)
}

func TestRedisKV_Delete(t *testing.T) {
	cli, mr := newTestClient(t)
	kv := NewRedisKV(cli, WithKeyPrefix("d"))
	ctx := context.Background()

	require.NoError(t, mr.Set("d:a", "1"))
	require.NoError(t, mr.Set("d:b", "2"))

	n, err := kv.Delete(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, mr.Exists("d:a"))

	n, err = kv.Delete(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisKV_HealthCheck(t *testing.T) {
	cli, mr := newTestClient(t)
	kv := NewRedisKV(cli)

	require.NoError(t, kv.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, kv.HealthCheck(context.Background()))
}

func TestRedisKV_StoreIfHonoursFence(t *testing.T) {
	cli, mr := newTestClient(t)
	kv := NewRedisKV(cli, WithKeyPrefix("c"), WithDefaultTTL(time.Minute))
	ctx := context.Background()

	v, fence, err := kv.Load(ctx, "scifi")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Empty(t, fence)

	require.NoError(t, kv.Invalidate(ctx, "scifi"))
	assert.Equal(t, time.Minute, mr.TTL("c:scifi"))

	// a reader that missed before the invalidation must not fill
	stored, err := kv.StoreIf(ctx, "scifi", fence, []byte("old"))
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := kv.Get(ctx, "scifi")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, fence, err = kv.Load(ctx, "scifi")
	require.NoError(t, err)
	require.NotEmpty(t, fence)

	stored, err = kv.StoreIf(ctx, "scifi", fence, []byte("new"))
	require.NoError(t, err)
	assert.True(t, stored)

	v, fence, err = kv.Load(ctx, "scifi")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
	assert.Empty(t, fence)

	// a present value is never overwritten by a fill
	stored, err = kv.StoreIf(ctx, "scifi", "", []byte("other"))
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestRedisKV_InvalidateFencesAreUnique(t *testing.T) {
	cli, mr := newTestClient(t)
	kv := NewRedisKV(cli)
	ctx := context.Background()

	require.NoError(t, kv.Invalidate(ctx, "k"))
	_, first, err := kv.Load(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, kv.Invalidate(ctx, "k"))
	_, second, err := kv.Load(ctx, "k")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, defaultFenceTTL, mr.TTL("k"))

	stored, err := kv.StoreIf(ctx, "k", first, []byte("x"))
	require.NoError(t, err)
	assert.False(t, stored)

	// Swap overwrites a fence and does not report it as a value
	prev, err := kv.Swap(ctx, "k", []byte("y"))
	require.NoError(t, err)
	assert.Nil(t, prev)
}
