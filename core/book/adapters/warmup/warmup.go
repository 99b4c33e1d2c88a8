// Package warmup preloads the booksByCategory cache after startup. One
// replica wins the distributed lock and fans the categories out to a paced
// worker pool.
package warmup

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"books/core/book/domain"
	"books/modules/db/redis/locking"
	"books/modules/worker"

	"golang.org/x/time/rate"
)

type Options struct {
	Lease         locking.Lease
	Workers       int
	RatePerSecond float64
}

// Result summarizes one warm-up run.
type Result struct {
	Categories int
	Loaded     int64
	Failed     int64
}

type Job struct {
	svc    domain.BookService
	exec   *locking.Executor
	opts   Options
	logger *slog.Logger
}

// NewJob warms svc, which is expected to be the cached service so that each
// lookup populates the cache.
func NewJob(svc domain.BookService, exec *locking.Executor, opts Options, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{
		svc:    svc,
		exec:   exec,
		opts:   opts,
		logger: logger.With(slog.String("job", "cache_warmup")),
	}
}

// Run executes one warm-up. Losing the lock to another replica is not an
// error and yields an empty result.
func (j *Job) Run(ctx context.Context) (Result, error) {
	var res Result
	err := j.exec.Execute(ctx, j.opts.Lease, func(ctx context.Context) error {
		r, err := j.warm(ctx)
		res = r
		return err
	})
	if errors.Is(err, locking.ErrLockNotAcquired) {
		j.logger.InfoContext(ctx, "warm-up skipped, another replica holds the lock")
		return Result{}, nil
	}
	return res, err
}

func (j *Job) warm(ctx context.Context) (Result, error) {
	categories, err := j.svc.ListCategories(ctx)
	if err != nil {
		return Result{}, err
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}

	var limiter *rate.Limiter
	if j.opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(j.opts.RatePerSecond), 1)
	}

	var loaded, failed atomic.Int64
	start := time.Now()
	worker.BlockingPool(ctx, j.opts.Workers, worker.Feed(ctx, names, limiter), func(ctx context.Context, name string) {
		if _, err := j.svc.FindAllByCategoryName(ctx, name); err != nil {
			failed.Add(1)
			j.logger.WarnContext(ctx, "category warm-up failed", slog.String("category", name), slog.Any("error", err))
			return
		}
		loaded.Add(1)
	})

	res := Result{Categories: len(names), Loaded: loaded.Load(), Failed: failed.Load()}
	j.logger.InfoContext(ctx, "warm-up finished",
		slog.Int("categories", res.Categories),
		slog.Int64("loaded", res.Loaded),
		slog.Int64("failed", res.Failed),
		slog.Duration("duration", time.Since(start)),
	)
	return res, ctx.Err()
}
