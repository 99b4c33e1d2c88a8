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
// Package db holds the storage contracts shared by the adapters: a SQL pool
// split into primary and replicas, and a byte oriented key-value store.
package db

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
)

type (
	// Querier runs bob queries. bob.DB and bob.Tx both satisfy it.
	Querier interface {
		bob.Executor
	}

	// TxFn runs inside a transaction; returning an error rolls it back.
	TxFn func(ctx context.Context, q Querier) error

	ConnectionPool interface {
		HealthManager
		ConnectionManager
		MigrationManager
		TxManager

		Shutdown(context.Context) error
	}

	HealthManager interface {
		// HealthCheck pings the primary only.
		HealthCheck(ctx context.Context) error
	}

	ConnectionManager interface {
		// Writer is always the primary.
		Writer() Querier
		ReaderConnectionManager
	}

	ReaderConnectionManager interface {
		// Reader picks a replica, or the primary when none is configured.
		Reader() Querier
	}

	MigrationManager interface {
		MigrateUp() error
		MigrateDown() error
		// GenerateMigration creates an empty, timestamped migration file.
		GenerateMigration(name string) error
	}

	// TxManager runs fn in a transaction on the primary.
	TxManager interface {
		WithTx(ctx context.Context, fn TxFn) error
		WithTimeoutTx(ctx context.Context, timeout time.Duration, fn TxFn) error
	}

	// KV stores opaque values. Reading a missing key yields (nil, nil).
	KV interface {
		Get(ctx context.Context, key string) ([]byte, error)
		// Swap stores value and returns the value it replaced, if any.
		Swap(ctx context.Context, key string, value []byte) ([]byte, error)
		// Delete reports how many of keys existed.
		Delete(ctx context.Context, keys ...string) (int64, error)
	}

	// GuardedKV fences writes against concurrent invalidation. A reader that
	// missed a key stores its result with StoreIf and the fence it saw; an
	// Invalidate in between makes that store a no-op.
	GuardedKV interface {
		KV
		// Load returns the value of key, or nil and the current fence.
		Load(ctx context.Context, key string) (value []byte, fence string, err error)
		// StoreIf reports whether value was written.
		StoreIf(ctx context.Context, key, fence string, value []byte) (bool, error)
		Invalidate(ctx context.Context, keys ...string) error
	}
)
