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
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOption adjusts a parsed pgxpool config before the pool opens.
type PoolOption func(cfg *pgxpool.Config)

// Options are applied per role; readers usually sit behind PgBouncer.
type Options struct {
	Writer []PoolOption
	Reader []PoolOption
}

// WithPgBouncerSimpleProtocol disables server-side prepared statements for
// PgBouncer transaction pooling.
func WithPgBouncerSimpleProtocol() PoolOption {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
}

func WithApplicationName(name string) PoolOption {
	return func(cfg *pgxpool.Config) {
		if name != "" {
			cfg.ConnConfig.RuntimeParams["application_name"] = name
		}
	}
}

func WithHealthCheckPeriod(d time.Duration) PoolOption {
	return func(cfg *pgxpool.Config) {
		if d > 0 {
			cfg.HealthCheckPeriod = d
		}
	}
}

func applyOptions(cfg *pgxpool.Config, opts []PoolOption) {
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
}
