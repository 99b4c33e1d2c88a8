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
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"time"

	"books/modules/clock"
)

var _ RateLimiter = (*SlidingWindow)(nil)

// SlidingWindow approximates a rolling window with two fixed buckets. The
// current bucket counts fully and the previous one by the share of it that
// still overlaps the rolling window.
type SlidingWindow struct {
	clock  clock.Clock
	store  CounterStore
	prefix string

	limit  uint64
	window time.Duration
}

func SlidingWindowFactory(c clock.Clock, store CounterStore, prefix string) LimiterFactory {
	return func(limit int64, window time.Duration) RateLimiter {
		return &SlidingWindow{
			clock:  c,
			store:  store,
			prefix: prefix,
			limit:  uint64(max(limit, 0)),
			window: max(window, time.Millisecond),
		}
	}
}

func (s *SlidingWindow) Allow(ctx context.Context, key Key) (Result, error) {
	w := s.window.Nanoseconds()
	now := s.clock.Now().UnixNano()
	bucket := now / w
	elapsed := min(max(now-bucket*w, 0), w)

	cur, err := s.store.Incr(ctx, s.bucketKey(key, bucket), 2*s.window)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: incr: %w", err)
	}
	prev, err := s.store.Get(ctx, s.bucketKey(key, bucket-1))
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: get previous: %w", err)
	}

	u := newUsage(max(cur, 0), max(prev, 0), uint64(w), uint64(w-elapsed))
	resetIn := s.window - time.Duration(elapsed)

	res := Result{
		Allowed:       u.within(s.limit),
		Limit:         int64(s.limit),
		Remaining:     int64(u.remaining(s.limit)),
		Window:        s.window,
		WindowResetIn: resetIn,
	}
	if !res.Allowed {
		res.RetryAfter = resetIn
	}
	return res, nil
}

// bucketKey is "<prefix>:<key>:<bucket>", or "<key>:<bucket>" without a prefix.
func (s *SlidingWindow) bucketKey(key Key, bucket int64) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s:%d", key, bucket)
	}
	return fmt.Sprintf("%s:%s:%d", s.prefix, key, bucket)
}

// usage is cur*window + prev*prevWeight in request-nanoseconds, held as a
// 128 bit integer so that no comparison rounds.
type usage struct {
	hi, lo uint64
	window uint64
}

func newUsage(cur, prev int64, window, prevWeight uint64) usage {
	curHi, curLo := bits.Mul64(uint64(cur), window)
	prevHi, prevLo := bits.Mul64(uint64(prev), prevWeight)
	lo, carry := bits.Add64(curLo, prevLo, 0)
	hi, _ := bits.Add64(curHi, prevHi, carry)
	return usage{hi: hi, lo: lo, window: window}
}

func (u usage) within(limit uint64) bool {
	limHi, limLo := bits.Mul64(limit, u.window)
	return u.hi < limHi || (u.hi == limHi && u.lo <= limLo)
}

// requests rounds the usage up to whole requests, saturating at MaxUint64.
func (u usage) requests() uint64 {
	switch {
	case u.hi == 0:
		q := u.lo / u.window
		if u.lo%u.window != 0 {
			q++
		}
		return q
	case u.hi < u.window:
		q, r := bits.Div64(u.hi, u.lo, u.window)
		if r != 0 && q != math.MaxUint64 {
			q++
		}
		return q
	default:
		return math.MaxUint64
	}
}

func (u usage) remaining(limit uint64) uint64 {
	if n := u.requests(); n < limit {
		return limit - n
	}
	return 0
}
