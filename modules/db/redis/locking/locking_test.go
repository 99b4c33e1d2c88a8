package locking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/rueidis/rueidislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLocker grants each name to one holder at a time.
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]bool{}} }

func (f *fakeLocker) TryWithContext(ctx context.Context, name string) (context.Context, context.CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[name] {
		return nil, nil, rueidislock.ErrNotLocked
	}
	f.held[name] = true
	lockCtx, cancel := context.WithCancel(ctx)
	return lockCtx, func() {
		cancel()
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, name)
		f.released = append(f.released, name)
	}, nil
}

func (f *fakeLocker) WithContext(ctx context.Context, name string) (context.Context, context.CancelFunc, error) {
	for {
		lockCtx, release, err := f.TryWithContext(ctx, name)
		if err == nil {
			return lockCtx, release, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func quiet() Option { return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))) }

func TestExecute_RunsAndReleases(t *testing.T) {
	locker := newFakeLocker()
	exec := NewExecutor(locker, quiet())

	ran := false
	err := exec.Execute(context.Background(), Lease{Name: "warmup"}, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{"warmup"}, locker.released)
}

func TestExecute_HeldElsewhere(t *testing.T) {
	locker := newFakeLocker()
	_, release, err := locker.TryWithContext(context.Background(), "warmup")
	require.NoError(t, err)
	defer release()

	err = NewExecutor(locker, quiet()).Execute(context.Background(), Lease{Name: "warmup"}, func(context.Context) error {
		t.Fatal("task must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
}

func TestExecute_WaitTimesOut(t *testing.T) {
	locker := newFakeLocker()
	_, release, err := locker.TryWithContext(context.Background(), "warmup")
	require.NoError(t, err)
	defer release()

	err = NewExecutor(locker, quiet(), WithWait(20*time.Millisecond)).
		Execute(context.Background(), Lease{Name: "warmup"}, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecute_AtMostBoundsTask(t *testing.T) {
	exec := NewExecutor(newFakeLocker(), quiet())

	err := exec.Execute(context.Background(), Lease{Name: "warmup", AtMost: 10 * time.Millisecond}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecute_AtLeastHoldsLock(t *testing.T) {
	exec := NewExecutor(newFakeLocker(), quiet())

	start := time.Now()
	boom := errors.New("boom")
	err := exec.Execute(context.Background(), Lease{Name: "warmup", AtMost: time.Second, AtLeast: 40 * time.Millisecond},
		func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestExecute_InvalidLease(t *testing.T) {
	exec := NewExecutor(newFakeLocker(), quiet())
	noop := func(context.Context) error { return nil }

	for _, lease := range []Lease{
		{},
		{Name: "x", AtMost: -1},
		{Name: "x", AtMost: time.Second, AtLeast: time.Minute},
	} {
		assert.ErrorIs(t, exec.Execute(context.Background(), lease, noop), ErrInvalidLease)
	}
	assert.ErrorIs(t, exec.Execute(context.Background(), Lease{Name: "x"}, nil), ErrInvalidLease)
}
