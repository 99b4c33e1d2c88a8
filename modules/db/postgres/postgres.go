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

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strconv"
	"time"

	"books/modules/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
)

var _ db.ConnectionPool = (*PostgresConnectionPool)(nil)

// PostgresConnectionPool writes to the primary and spreads reads over the
// replicas, falling back to the primary when there are none.
type PostgresConnectionPool struct {
	writer  bob.DB
	readers []bob.DB

	// DSN of the primary without pool_* parameters; nil disables migrations
	migrationURL *url.URL
	migrateWait  time.Duration
}

func (p *PostgresConnectionPool) HealthCheck(ctx context.Context) error {
	_, err := p.writer.ExecContext(ctx, "SELECT 1")
	return err
}

func (p *PostgresConnectionPool) Writer() db.Querier {
	return p.writer
}

// Reader picks a replica uniformly at random.
func (p *PostgresConnectionPool) Reader() db.Querier {
	switch len(p.readers) {
	case 0:
		return p.writer
	case 1:
		return p.readers[0]
	default:
		return p.readers[rand.IntN(len(p.readers))]
	}
}

func (p *PostgresConnectionPool) WithTx(ctx context.Context, fn db.TxFn) error {
	return p.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bob.Executor) error {
		return fn(ctx, tx)
	})
}

func (p *PostgresConnectionPool) WithTimeoutTx(ctx context.Context, timeout time.Duration, fn db.TxFn) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.WithTx(ctx, fn)
}

// Shutdown closes the primary and every replica, joining their errors.
func (p *PostgresConnectionPool) Shutdown(context.Context) error {
	if p == nil {
		return nil
	}
	errs := []error{p.writer.Close()}
	for _, r := range p.readers {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

// NewFromDB wraps handles opened elsewhere, e.g. sqlmock in tests. The
// result cannot run migrations.
func NewFromDB(writer *sql.DB, readers ...*sql.DB) *PostgresConnectionPool {
	p := &PostgresConnectionPool{writer: bob.NewDB(writer)}
	for _, r := range readers {
		p.readers = append(p.readers, bob.NewDB(r))
	}
	return p
}

// New opens the primary and replica pools. opts apply on top of the
// application name and health check period from config.
func New(ctx context.Context, config *PostgresConfig, opts Options) (*PostgresConnectionPool, error) {
	open := func(pc *PoolConfig, extra []PoolOption) (bob.DB, error) {
		base := []PoolOption{
			WithApplicationName(config.ApplicationName),
			WithHealthCheckPeriod(pc.HealthCheckPeriod),
		}
		return initDBFromConfig(ctx, pc, append(base, extra...)...)
	}

	writer, err := open(&config.WriteConfig, opts.Writer)
	if err != nil {
		return nil, fmt.Errorf("postgres primary: %w", err)
	}
	p := &PostgresConnectionPool{
		writer:       writer,
		migrationURL: baseURL(&config.WriteConfig),
		migrateWait:  config.MigrateTimeout,
	}

	for i := range config.ReadConfigs {
		reader, err := open(&config.ReadConfigs[i], opts.Reader)
		if err != nil {
			// release what was opened so far
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("postgres replica %d: %w", i, err)
		}
		p.readers = append(p.readers, reader)
	}

	slog.InfoContext(ctx, "postgres pool ready",
		slog.String("primary", config.WriteConfig.Host),
		slog.Int("replicas", len(p.readers)),
	)
	return p, nil
}

func initDBFromConfig(ctx context.Context, config *PoolConfig, opts ...PoolOption) (bob.DB, error) {
	poolConfig, err := pgxpool.ParseConfig(connString(config))
	if err != nil {
		return bob.DB{}, err
	}
	applyOptions(poolConfig, opts)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return bob.DB{}, err
	}
	return bob.NewDB(stdlib.OpenDBFromPool(pool)), nil
}

// connString is baseURL plus pool sizing, e.g.
// postgres://app:secret@pg:5432/books?pool_max_conns=10&sslmode=disable
func connString(cfg *PoolConfig) string {
	u := baseURL(cfg)
	q := u.Query()
	q.Set("pool_max_conns", strconv.Itoa(cfg.PoolMaxConns))
	u.RawQuery = q.Encode()
	return u.String()
}

func baseURL(cfg *PoolConfig) *url.URL {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.Itoa(int(cfg.Port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u
}
