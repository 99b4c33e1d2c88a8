// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package redis

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"books/modules/db"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/rueidis"
)

var (
	_ db.GuardedKV = (*RedisKV)(nil)

	// GET then SET with an optional PX, returning the old value.
	//go:embed scripts/atomic_set.lua
	swapScript string
	luaSwap    = rueidis.NewLuaScript(swapScript)

	// SET only while the key still holds the expected fence.
	//go:embed scripts/store_if.lua
	storeIfScript string
	luaStoreIf    = rueidis.NewLuaScript(storeIfScript)
)

// fenceMarker starts every value written by Invalidate. Values with this
// prefix are reserved and read back as missing.
const fenceMarker = "\x00fence:"

// defaultFenceTTL bounds fences of KVs without a TTL.
const defaultFenceTTL = time.Minute

// RedisKV implements db.GuardedKV on rueidis. Keys live under an optional prefix,
// writes may carry a TTL and reads may be served from the client side cache.
type RedisKV struct {
	client rueidis.Client
	prefix string // empty or ending in ":"
	ttl    time.Duration
	cached bool
}

type RedisKVOption func(*RedisKV)

// WithKeyPrefix namespaces keys: with "books:cache:booksByCategory" the key
// "fiction" is stored as "books:cache:booksByCategory:fiction".
func WithKeyPrefix(prefix string) RedisKVOption {
	return func(k *RedisKV) {
		k.prefix = strings.TrimSpace(prefix)
		if k.prefix != "" && !strings.HasSuffix(k.prefix, ":") {
			k.prefix += ":"
		}
	}
}

// WithDefaultTTL expires every written key after ttl; zero keeps keys forever.
func WithDefaultTTL(ttl time.Duration) RedisKVOption {
	return func(k *RedisKV) { k.ttl = ttl }
}

// WithClientSideCache serves Get through DoCache. It needs a TTL and
// REDIS_CLIENT_TRACKING_PREFIXES covering the key prefix.
func WithClientSideCache() RedisKVOption {
	return func(k *RedisKV) { k.cached = true }
}

// NewRedisKV shares client; several KVs with different prefixes may use one client.
func NewRedisKV(client rueidis.Client, opts ...RedisKVOption) *RedisKV {
	kv := &RedisKV{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(kv)
		}
	}
	return kv
}

func (k *RedisKV) Prefix() string { return k.prefix }

func (k *RedisKV) key(raw string) string { return k.prefix + raw }

func (k *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, _, err := k.Load(ctx, key)
	return v, err
}

// Load returns the value of key. A missing value comes with the fence left
// by the last Invalidate, or "" when there is none.
func (k *RedisKV) Load(ctx context.Context, key string) ([]byte, string, error) {
	get := k.client.B().Get().Key(k.key(key))

	var res rueidis.RedisResult
	if k.cached && k.ttl > 0 {
		res = k.client.DoCache(ctx, get.Cache(), k.ttl)
	} else {
		res = k.client.Do(ctx, get.Build())
	}
	raw, err := bytesOrNil(res, "get", key)
	if err != nil {
		return nil, "", err
	}
	if isFence(raw) {
		return nil, string(raw), nil
	}
	return raw, "", nil
}

func (k *RedisKV) Swap(ctx context.Context, key string, value []byte) ([]byte, error) {
	if value == nil {
		return nil, errors.New("redis kv: nil value")
	}
	px := "0"
	if k.ttl > 0 {
		px = strconv.FormatInt(max(k.ttl.Milliseconds(), 1), 10)
	}
	res := luaSwap.Exec(ctx, k.client, []string{k.key(key)}, []string{rueidis.BinaryString(value), px})
	prev, err := bytesOrNil(res, "swap", key)
	if isFence(prev) {
		return nil, err
	}
	return prev, err
}

// StoreIf writes value only while key still holds fence, as returned by
// Load. It reports whether the value was written.
func (k *RedisKV) StoreIf(ctx context.Context, key, fence string, value []byte) (bool, error) {
	if value == nil {
		return false, errors.New("redis kv: nil value")
	}
	px := "0"
	if k.ttl > 0 {
		px = strconv.FormatInt(max(k.ttl.Milliseconds(), 1), 10)
	}
	n, err := luaStoreIf.Exec(ctx, k.client, []string{k.key(key)},
		[]string{rueidis.BinaryString(value), fence, px}).AsInt64()
	if err != nil {
		return false, fmt.Errorf("redis kv: store %q: %w", key, err)
	}
	return n == 1, nil
}

// Invalidate replaces every key with a fresh fence that lives as long as a
// value would, so a StoreIf holding an older fence is rejected.
func (k *RedisKV) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	token, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("redis kv: fence token: %w", err)
	}
	fence := fenceMarker + token.String()
	ttl := k.ttl
	if ttl <= 0 {
		ttl = defaultFenceTTL
	}

	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = k.client.B().Set().Key(k.key(key)).Value(fence).Px(ttl).Build()
	}
	var errs []error
	for i, res := range k.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			errs = append(errs, fmt.Errorf("redis kv: invalidate %q: %w", keys[i], err))
		}
	}
	return errors.Join(errs...)
}

// Delete issues one DEL per key so keys may live in different cluster slots.
func (k *RedisKV) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = k.client.B().Del().Key(k.key(key)).Build()
	}

	var (
		removed int64
		errs    []error
	)
	for i, res := range k.client.DoMulti(ctx, cmds...) {
		n, err := res.AsInt64()
		if err != nil {
			errs = append(errs, fmt.Errorf("redis kv: delete %q: %w", keys[i], err))
			continue
		}
		removed += n
	}
	return removed, errors.Join(errs...)
}

func (k *RedisKV) HealthCheck(ctx context.Context) error {
	return k.client.Do(ctx, k.client.B().Ping().Build()).Error()
}

func isFence(raw []byte) bool {
	return strings.HasPrefix(string(raw), fenceMarker)
}

func bytesOrNil(res rueidis.RedisResult, op, key string) ([]byte, error) {
	b, err := res.AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis kv: %s %q: %w", op, key, err)
	}
	return b, nil
}
