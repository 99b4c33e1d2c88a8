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

package counter

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"books/modules/ratelimit"

	"github.com/redis/rueidis"
)

var (
	_ ratelimit.CounterStore = (*RedisCounter)(nil)

	// INCR, and PEXPIRE only on the first hit so later hits do not
	// move the bucket's expiry.
	//go:embed incr_expire.lua
	incrExpireLua string
	luaIncrExpire = rueidis.NewLuaScript(incrExpireLua)
)

// RedisCounter is the CounterStore shared by every replica's rate limiter.
type RedisCounter struct {
	client rueidis.Client
	prefix string
}

// NewRedisCounterStore stores counters as "<prefix>:<key>", or "<key>"
// when prefix is empty.
func NewRedisCounterStore(client rueidis.Client, prefix string) *RedisCounter {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisCounter{client: client, prefix: prefix}
}

func (r *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Do(ctx, r.client.B().Get().Key(r.prefix+key).Build()).AsInt64()
	if rueidis.IsRedisNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis counter: get %q: %w", key, err)
	}
	return n, nil
}

// Incr bumps key. ttl is only applied when the counter is created.
func (r *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	px := strconv.FormatInt(max(ttl.Milliseconds(), 1), 10)
	n, err := luaIncrExpire.Exec(ctx, r.client, []string{r.prefix + key}, []string{px}).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("redis counter: incr %q: %w", key, err)
	}
	return n, nil
}
