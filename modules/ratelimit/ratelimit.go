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
// Package ratelimit decides whether a caller may proceed. Counters live in a
// CounterStore so replicas can share them through Redis.
package ratelimit

import (
	"context"
	"time"
)

type (
	// Key names the subject being throttled, e.g. a remote address or
	// "GET /api/v1/books|10.0.0.1".
	Key string

	// RateLimiter enforces "limit requests per window".
	RateLimiter interface {
		Allow(ctx context.Context, key Key) (Result, error)
	}

	// LimiterFactory builds one limiter per configured policy.
	LimiterFactory func(limit int64, window time.Duration) RateLimiter

	Result struct {
		Allowed   bool
		Limit     int64
		Remaining int64
		Window    time.Duration
		// WindowResetIn is the time left in the current bucket.
		WindowResetIn time.Duration
		// RetryAfter is zero for allowed requests.
		RetryAfter time.Duration
	}
)
