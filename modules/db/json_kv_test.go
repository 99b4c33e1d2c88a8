package db

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	fences map[string]string
	seq    int
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, fences: map[string]string{}}
}

func (m *memKV) Load(_ context.Context, key string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, "", nil
	}
	return nil, m.fences[key], nil
}

func (m *memKV) StoreIf(_ context.Context, key, fence string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok || m.fences[key] != fence {
		return false, nil
	}
	m.data[key] = value
	delete(m.fences, key)
	return true, nil
}

func (m *memKV) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.seq++
		delete(m.data, k)
		m.fences[k] = "fence-" + strconv.Itoa(m.seq)
	}
	return nil
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memKV) Swap(_ context.Context, key string, value []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.data[key]
	m.data[key] = value
	return prev, nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

type item struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

func TestJSONKV_GetMissing(t *testing.T) {
	kv := NewJSONKV[item](newMemKV())

	got, err := kv.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJSONKV_SetReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	kv := NewJSONKV[[]item](newMemKV())

	prev, err := kv.Set(ctx, "k", []item{{Title: "a", Author: "b"}})
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = kv.Set(ctx, "k", []item{})
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, []item{{Title: "a", Author: "b"}}, *prev)

	cur, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Empty(t, *cur)
}

func TestJSONKV_DecodeError(t *testing.T) {
	ctx := context.Background()
	mem := newMemKV()
	mem.data["bad"] = []byte("{not json")

	_, err := NewJSONKV[item](mem).Get(ctx, "bad")
	assert.ErrorContains(t, err, `jsonkv: decode "bad"`)
}

func TestJSONKV_Delete(t *testing.T) {
	ctx := context.Background()
	kv := NewJSONKV[item](newMemKV())
	_, _ = kv.Set(ctx, "a", item{Title: "x"})

	n, err := kv.Delete(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGuardedJSONKV_StoreIfRejectsInvalidatedFence(t *testing.T) {
	ctx := context.Background()
	kv := NewGuardedJSONKV[item](newMemKV())

	v, fence, err := kv.Load(ctx, "dune")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Empty(t, fence)

	require.NoError(t, kv.Invalidate(ctx, "dune"))

	stored, err := kv.StoreIf(ctx, "dune", fence, item{Title: "Dune"})
	require.NoError(t, err)
	assert.False(t, stored)

	_, fence, err = kv.Load(ctx, "dune")
	require.NoError(t, err)
	require.NotEmpty(t, fence)

	stored, err = kv.StoreIf(ctx, "dune", fence, item{Title: "Dune"})
	require.NoError(t, err)
	assert.True(t, stored)

	got, err := kv.Get(ctx, "dune")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dune", got.Title)
}
