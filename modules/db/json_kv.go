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
package db

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONKV stores values of T as JSON documents in a KV.
//
//	books := db.NewJSONKV[[]domain.Book](redis.NewRedisKV(client, redis.WithKeyPrefix("books:cache:booksByCategory")))
//	_, _ = books.Set(ctx, "fiction", list)
type JSONKV[T any] struct {
	kv KV
}

func NewJSONKV[T any](kv KV) JSONKV[T] {
	return JSONKV[T]{kv: kv}
}

// Get returns nil without error when the key is absent.
func (j JSONKV[T]) Get(ctx context.Context, key string) (*T, error) {
	raw, err := j.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decode[T](key, raw)
}

// Set returns the replaced value, if any.
func (j JSONKV[T]) Set(ctx context.Context, key string, value T) (*T, error) {
	doc, err := encode(key, value)
	if err != nil {
		return nil, err
	}
	prev, err := j.kv.Swap(ctx, key, doc)
	if err != nil {
		return nil, err
	}
	return decode[T](key, prev)
}

func (j JSONKV[T]) Delete(ctx context.Context, keys ...string) (int64, error) {
	return j.kv.Delete(ctx, keys...)
}

// GuardedJSONKV adds the fenced operations of a GuardedKV to JSONKV.
type GuardedJSONKV[T any] struct {
	JSONKV[T]
	guarded GuardedKV
}

func NewGuardedJSONKV[T any](kv GuardedKV) GuardedJSONKV[T] {
	return GuardedJSONKV[T]{JSONKV: NewJSONKV[T](kv), guarded: kv}
}

func (g GuardedJSONKV[T]) Load(ctx context.Context, key string) (*T, string, error) {
	raw, fence, err := g.guarded.Load(ctx, key)
	if err != nil {
		return nil, "", err
	}
	v, err := decode[T](key, raw)
	return v, fence, err
}

func (g GuardedJSONKV[T]) StoreIf(ctx context.Context, key, fence string, value T) (bool, error) {
	doc, err := encode(key, value)
	if err != nil {
		return false, err
	}
	return g.guarded.StoreIf(ctx, key, fence, doc)
}

func (g GuardedJSONKV[T]) Invalidate(ctx context.Context, keys ...string) error {
	return g.guarded.Invalidate(ctx, keys...)
}

func encode[T any](key string, value T) ([]byte, error) {
	doc, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("jsonkv: encode %q: %w", key, err)
	}
	return doc, nil
}

func decode[T any](key string, raw []byte) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("jsonkv: decode %q: %w", key, err)
	}
	return v, nil
}
