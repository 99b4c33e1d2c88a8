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

// Package locking runs tasks under a rueidislock distributed lock so that at
// most one replica executes a given job at a time.
package locking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"books/modules/clock"
	"books/modules/db/redis"

	"github.com/redis/rueidis/rueidislock"
)

var (
	// ErrLockNotAcquired means another holder owns the lock and the executor
	// was told not to wait.
	ErrLockNotAcquired = errors.New("locking: lock not acquired")

	ErrInvalidLease = errors.New("locking: invalid lease")
)

type (
	// Task is the job executed while the lock is held. ctx ends when the
	// lease's AtMost elapses or the lock is lost.
	Task func(ctx context.Context) error

	// Lease describes one lock: its name and how long it may and must be held.
	Lease struct {
		Name string
		// AtMost bounds the task; zero means unbounded.
		AtMost time.Duration
		// AtLeast keeps the lock after an early return so that other
		// replicas skip the job for that long.
		AtLeast time.Duration
	}

	// Locker is the subset of rueidislock.Locker the executor uses.
	Locker interface {
		WithContext(ctx context.Context, name string) (context.Context, context.CancelFunc, error)
		TryWithContext(ctx context.Context, name string) (context.Context, context.CancelFunc, error)
	}

	Executor struct {
		locker         Locker
		logger         *slog.Logger
		clock          clock.Clock
		wait           bool
		acquireTimeout time.Duration
	}

	Option func(*Executor)
)

var _ Locker = (rueidislock.Locker)(nil)

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWait makes Execute block until the lock frees up, bounded by timeout
// when it is positive. The default is a single attempt.
func WithWait(timeout time.Duration) Option {
	return func(e *Executor) {
		e.wait = true
		e.acquireTimeout = timeout
	}
}

func WithClock(c clock.Clock) Option {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

func NewExecutor(locker Locker, opts ...Option) *Executor {
	e := &Executor{
		locker: locker,
		logger: slog.Default(),
		clock:  clock.RealClockProvider(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewLocker builds a rueidislock.Locker on its own connection. Keys are
// stored under keyPrefix. The locker relies on server assisted invalidation,
// so client side caching is forced on for it.
func NewLocker(cfg redis.RedisConfig, keyPrefix string) (rueidislock.Locker, error) {
	clientOpt, err := redis.ClientOptionFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	clientOpt.DisableCache = false
	clientOpt.ClientTrackingOptions = nil

	locker, err := rueidislock.NewLocker(rueidislock.LockerOption{
		ClientOption: clientOpt,
		KeyPrefix:    keyPrefix,
		KeyMajority:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("locking: new locker: %w", err)
	}
	return locker, nil
}

// Execute acquires the lease's lock, runs task and releases the lock once
// both the task returned and AtLeast elapsed since it started.
func (e *Executor) Execute(ctx context.Context, lease Lease, task Task) error {
	if task == nil {
		return fmt.Errorf("%w: nil task", ErrInvalidLease)
	}
	if err := lease.validate(); err != nil {
		return err
	}

	lockCtx, release, err := e.acquire(ctx, lease.Name)
	if err != nil {
		return err
	}
	defer release()

	var (
		taskCtx context.Context
		cancel  context.CancelFunc
	)
	if lease.AtMost > 0 {
		taskCtx, cancel = context.WithTimeout(lockCtx, lease.AtMost)
	} else {
		taskCtx, cancel = context.WithCancel(lockCtx)
	}
	defer cancel()

	started := e.clock.Now()
	err = task(taskCtx)
	elapsed := e.clock.Now().Sub(started)
	e.logger.InfoContext(ctx, "locked task finished",
		slog.String("lock", lease.Name),
		slog.Duration("duration", elapsed),
		slog.Any("error", err),
	)

	if remaining := lease.AtLeast - elapsed; remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		case <-lockCtx.Done():
		}
	}
	return err
}

func (e *Executor) acquire(ctx context.Context, name string) (context.Context, context.CancelFunc, error) {
	if !e.wait {
		lockCtx, release, err := e.locker.TryWithContext(ctx, name)
		switch {
		case errors.Is(err, rueidislock.ErrNotLocked):
			e.logger.DebugContext(ctx, "lock held elsewhere", slog.String("lock", name))
			return nil, nil, ErrLockNotAcquired
		case err != nil:
			return nil, nil, fmt.Errorf("locking: try acquire %q: %w", name, err)
		}
		return lockCtx, release, nil
	}

	acquireCtx := ctx
	if e.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, e.acquireTimeout)
		defer cancel()
	}
	lockCtx, release, err := e.locker.WithContext(acquireCtx, name)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("locking: acquire %q: %w", name, err)
	}
	return lockCtx, release, nil
}

func (l Lease) validate() error {
	switch {
	case l.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidLease)
	case l.AtMost < 0 || l.AtLeast < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidLease)
	case l.AtMost > 0 && l.AtLeast > l.AtMost:
		return fmt.Errorf("%w: at least %s exceeds at most %s", ErrInvalidLease, l.AtLeast, l.AtMost)
	}
	return nil
}
