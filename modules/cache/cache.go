// Package cache provides named, JSON encoded read-through caches on top of
// a db.GuardedKV. Cache failures never fail the caller: reads fall back to
// the loader and write errors are logged. A fill only lands when no Evict
// of the same key happened while the loader ran.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"books/modules/db"
	"books/modules/telemetry"
)

type (
	// Cache is one named cache holding values of type T.
	Cache[T any] struct {
		name     string
		kv       db.GuardedJSONKV[T]
		disabled bool
		metrics  *telemetry.CacheMetrics
		logger   *slog.Logger
	}

	Option func(*options)

	options struct {
		disabled bool
		metrics  *telemetry.CacheMetrics
		logger   *slog.Logger
	}

	// LoadFunc produces the value on a miss.
	LoadFunc[T any] func(ctx context.Context) (T, error)
)

func WithDisabled(disabled bool) Option {
	return func(o *options) { o.disabled = disabled }
}

func WithMetrics(m *telemetry.CacheMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New wraps kv, which is expected to be scoped to this cache's namespace and TTL.
func New[T any](name string, kv db.GuardedKV, opts ...Option) *Cache[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		name:     name,
		kv:       db.NewGuardedJSONKV[T](kv),
		disabled: o.disabled || kv == nil,
		metrics:  o.metrics,
		logger:   o.logger.With(slog.String("cache", name)),
	}
}

func (c *Cache[T]) Name() string { return c.name }

// Get reports whether key was present.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	v, ok, _, err := c.lookup(ctx, key)
	return v, ok, err
}

// lookup also returns the fence a later fill must present.
func (c *Cache[T]) lookup(ctx context.Context, key string) (T, bool, string, error) {
	var zero T
	if c.disabled {
		return zero, false, "", nil
	}
	v, fence, err := c.kv.Load(ctx, key)
	if err != nil {
		return zero, false, "", err
	}
	c.metrics.RecordLookup(ctx, c.name, v != nil)
	if v == nil {
		return zero, false, fence, nil
	}
	return *v, true, "", nil
}

func (c *Cache[T]) Put(ctx context.Context, key string, value T) error {
	if c.disabled {
		return nil
	}
	_, err := c.kv.Set(ctx, key, value)
	return err
}

// Evict drops keys and fences them, so fills that started before the call
// are discarded. Missing keys are not an error.
func (c *Cache[T]) Evict(ctx context.Context, keys ...string) error {
	if c.disabled || len(keys) == 0 {
		return nil
	}
	return c.kv.Invalidate(ctx, keys...)
}

// GetOrLoad returns the cached value for key or calls load and stores its
// result. Loader errors are returned unchanged and nothing is stored. When
// the cache could not be read the loaded value is returned but not stored.
func (c *Cache[T]) GetOrLoad(ctx context.Context, key string, load LoadFunc[T]) (T, error) {
	v, ok, fence, err := c.lookup(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "cache read failed, loading from source",
			slog.String("key", key), slog.Any("error", err))
	} else if ok {
		return v, nil
	}
	fill := err == nil && !c.disabled

	v, err = load(ctx)
	if err != nil || !fill {
		return v, err
	}

	stored, err := c.kv.StoreIf(ctx, key, fence, v)
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.Any("error", err))
	case !stored:
		c.logger.DebugContext(ctx, "cache fill dropped, key changed while loading",
			slog.String("key", key))
	}
	return v, nil
}

// EvictAll evicts one key from each cache, joining the errors.
func EvictAll(ctx context.Context, evictions ...func(context.Context) error) error {
	var errs []error
	for _, evict := range evictions {
		if err := evict(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
