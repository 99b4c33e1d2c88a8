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
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"books/core/book/adapters/cached"
	"books/core/book/adapters/persistence/pg"
	"books/core/book/adapters/rest"
	"books/core/book/adapters/warmup"
	"books/core/book/domain"
	"books/modules/appconfig"
	"books/modules/cache"
	"books/modules/clock"
	"books/modules/db"
	"books/modules/db/postgres"
	"books/modules/db/redis"
	"books/modules/db/redis/counter"
	"books/modules/db/redis/locking"
	hmac_sign "books/modules/hmac"
	"books/modules/logging"
	"books/modules/middleware"
	"books/modules/middleware/ratelimit"
	"books/modules/middleware/validation"
	"books/modules/oapi"
	rl "books/modules/ratelimit"
	"books/modules/server"
	"books/modules/services"
	"books/modules/telemetry"

	"github.com/redis/rueidis"
)

const lockKeyPrefix = "books:lock"

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, new) and exit")
	migrationName := flag.String("name", "", "name of the migration created by -migrate new")
	flag.Parse()

	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// cancel the context when these signals occur
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// manual dependency injection, no DI framework
	cfg, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("error", err))
		exitCode = 1
		return
	}

	logger, err := logging.New(cfg.Env, cfg.Log, logging.WithContextAttrs(middleware.RequestIDAttr))
	if err != nil {
		slog.ErrorContext(ctx, "failed to build logger", slog.Any("error", err))
		exitCode = 1
		return
	}
	slog.SetDefault(logger)

	// --- infrastructure ---

	pool, err := postgres.New(
		ctx,
		&cfg.Postgres,
		postgres.Options{
			// replicas sit behind pgBouncer, the primary can keep prepared statements
			Reader: []postgres.PoolOption{
				postgres.WithPgBouncerSimpleProtocol(),
			},
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "database error", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := pool.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "database shutdown error", slog.Any("error", err))
		}
	}()

	if *migrateCmd != "" {
		if err := runMigration(pool, *migrateCmd, *migrationName); err != nil {
			slog.ErrorContext(ctx, "migration failed", slog.String("command", *migrateCmd), slog.Any("error", err))
			exitCode = 1
		}
		return
	}

	if err := pool.HealthCheck(ctx); err != nil {
		slog.ErrorContext(ctx, "database health check failed", slog.Any("error", err))
		exitCode = 1
		return
	}

	if cfg.Postgres.MigrateOnStart {
		if err := pool.MigrateUp(); err != nil {
			slog.ErrorContext(ctx, "migrate on start failed", slog.Any("error", err))
			exitCode = 1
			return
		}
	}

	signer, err := hmac_sign.NewHMACSigner([]byte(cfg.HMAC.Secret))
	if err != nil {
		slog.ErrorContext(ctx, "hmac signer setup error", slog.Any("error", err))
		exitCode = 1
		return
	}

	otelShutdown, err := telemetry.Init(ctx, cfg.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry not properly configured", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		// ctx is already cancelled at this point
		sCtx, sCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer sCancel()
		if err := otelShutdown(sCtx); err != nil {
			slog.ErrorContext(ctx, "telemetry shutdown error", slog.Any("error", err))
		}
	}()

	redisClient, err := redis.NewRueidisClient(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "redis not properly setup", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer redisClient.Close()

	// --- application layer ---

	app := domain.NewApp(
		pg.NewPostgresBookReader(pool),
		pg.NewPostgresBookWriter(pool),
		signer,
		domain.WithCursorTTL(cfg.Pagination.CursorTTL),
		domain.WithLogger(logger),
	)

	cacheMetrics, err := telemetry.NewCacheMetrics("books-cache")
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize cache metrics, continuing without metrics", slog.Any("error", err))
		cacheMetrics = nil
	}
	booksByCategory := cache.New[[]domain.Book](
		cache.BooksByCategory,
		cacheKV(redisClient, cfg.Cache, cache.BooksByCategory),
		cache.WithDisabled(cfg.Cache.Disabled),
		cache.WithMetrics(cacheMetrics),
		cache.WithLogger(logger),
	)
	bookByTitleAndAuthor := cache.New[domain.Book](
		cache.BookByTitleAndAuthor,
		cacheKV(redisClient, cfg.Cache, cache.BookByTitleAndAuthor),
		cache.WithDisabled(cfg.Cache.Disabled),
		cache.WithMetrics(cacheMetrics),
		cache.WithLogger(logger),
	)
	bookSvc := cached.NewBookService(app, booksByCategory, bookByTitleAndAuthor, logger,
		cached.WithEvictionDelay(cfg.Cache.EvictDelay),
	)

	if cfg.Warmup.Enabled && !cfg.Cache.Disabled {
		locker, err := locking.NewLocker(cfg.Redis, lockKeyPrefix)
		if err != nil {
			slog.ErrorContext(ctx, "distributed lock setup error", slog.Any("error", err))
			exitCode = 1
			return
		}
		defer locker.Close()
		go runWarmup(ctx, cfg.Warmup, warmup.NewJob(bookSvc, locking.NewExecutor(locker, locking.WithLogger(logger)), warmup.Options{
			Lease: locking.Lease{
				Name:    cfg.Warmup.Lock,
				AtMost:  cfg.Warmup.LockAtMost,
				AtLeast: cfg.Warmup.LockAtLeast,
			},
			Workers:       cfg.Warmup.Workers,
			RatePerSecond: cfg.Warmup.RatePerSecond,
		}, logger))
	}

	// --- http ---

	mux := http.NewServeMux()
	route := middleware.ServeMuxRoute(mux)

	routeInfo := ratelimit.MuxRouteInfo(route)
	slog.Debug("app rate limit config", slog.Any("rate_limit_config", cfg.RateLimit))
	var counters rl.CounterStore = counter.NewRedisCounterStore(redisClient, cfg.RateLimit.KeyPrefix)
	if cfg.RateLimit.Store == "memory" {
		counters = rl.NewMemoryCounterStore(clock.RealClockProvider())
	}
	rtp, err := ratelimit.ParsePolicy(
		rl.SlidingWindowFactory(clock.RealClockProvider(), counters, ""),
		&cfg.RateLimit,
		routeInfo,
		ratelimit.DefaultKeyStrategies(routeInfo),
	)
	if err != nil {
		slog.ErrorContext(ctx, "ratelimit config not properly parsed", slog.Any("error", err))
		exitCode = 1
		return
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.Recovery(nil),
	}

	httpMetrics, err := telemetry.NewHTTPMetrics("books-api")
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize HTTP metrics, continuing without metrics", slog.Any("error", err))
		httpMetrics = nil
	}

	middlewares = append(middlewares,
		middleware.Telemetry(httpMetrics, route),
		middleware.AccessLog(logger, route),
	)
	if cfg.RateLimit.Enabled {
		middlewares = append(middlewares, ratelimit.NewRateLimitMiddleware(rtp))
	}

	spec, err := validation.LoadSpec(ctx, oapi.FS, oapi.BooksSpecPath)
	if err != nil {
		slog.ErrorContext(ctx, "openapi document invalid", slog.Any("error", err))
		exitCode = 1
		return
	}
	doc, err := oapi.FS.ReadFile(oapi.BooksSpecPath)
	if err != nil {
		slog.ErrorContext(ctx, "openapi document unreadable", slog.Any("error", err))
		exitCode = 1
		return
	}

	srv, err := server.New(
		cfg.HTTP.Host, cfg.HTTP.Port,
		server.WithConfig(cfg.HTTP),
		server.WithMux(mux),
		server.WithGlobalMiddlewares(middlewares...),
		server.WithServices(
			services.NewSystemService(2*time.Second, map[string]rest.HealthChecker{
				"postgres": pool,
				"redis":    redis.NewRedisKV(redisClient),
			}, doc),
			services.NewBooksAPIService(rest.NewBookAPI(bookSvc), spec),
		),
	)
	if err != nil {
		slog.ErrorContext(ctx, "init server error", slog.Any("error", err))
		exitCode = 1
		return
	}

	if err := srv.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "running server error", slog.Any("error", err))
		exitCode = 1
		return
	}
}

// cacheKV scopes a redis KV to one cache's namespace and TTL.
func cacheKV(client rueidis.Client, cfg cache.Config, name string) *redis.RedisKV {
	opts := []redis.RedisKVOption{
		redis.WithKeyPrefix(cfg.Namespace(name)),
		redis.WithDefaultTTL(cfg.TTL(name)),
	}
	if cfg.ClientSide {
		opts = append(opts, redis.WithClientSideCache())
	}
	return redis.NewRedisKV(client, opts...)
}

func runWarmup(ctx context.Context, cfg appconfig.WarmupConfig, job *warmup.Job) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res, err := job.Run(ctx)
	if err != nil {
		slog.WarnContext(ctx, "cache warm-up failed", slog.Any("error", err))
		return
	}
	slog.InfoContext(ctx, "cache warm-up finished",
		slog.Int("categories", res.Categories),
		slog.Int64("loaded", res.Loaded),
		slog.Int64("failed", res.Failed),
	)
}

func runMigration(m db.MigrationManager, cmd, name string) error {
	switch cmd {
	case "up":
		return m.MigrateUp()
	case "down":
		return m.MigrateDown()
	case "new":
		if name == "" {
			return fmt.Errorf("-migrate new requires -name")
		}
		return m.GenerateMigration(name)
	default:
		return fmt.Errorf("unknown migrate command %q", cmd)
	}
}
