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

package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidishook"
	"github.com/redis/rueidis/rueidisotel"
)

// NewRueidisClient creates a rueidis.Client from RedisConfig.
//
// It:
//
//   - Parses redis:// / rediss:// URL
//   - Configures TLS + optional insecure skip verify
//   - Sets basic tuning flags (pipelining, retry, cache, buffers)
//   - Configures server-assisted client-side caching tracking options
//   - Wraps the client with OpenTelemetry and/or a command logging hook (optional)
//   - Performs a PING with a small timeout to fail fast
func NewRueidisClient(ctx context.Context, opt RedisConfig) (rueidis.Client, error) {
	clientOpt, err := ClientOptionFromConfig(opt)
	if err != nil {
		return nil, err
	}

	var cli rueidis.Client
	if opt.EnableOtel {
		cli, err = rueidisotel.NewClient(clientOpt)
	} else {
		cli, err = rueidis.NewClient(clientOpt)
	}
	if err != nil {
		slog.ErrorContext(ctx, "error during rueidis init", slog.Any("error", err))
		return nil, err
	}

	if opt.LogCommands {
		cli = rueidishook.WithHook(cli, NewLoggingHook(slog.Default()))
	}

	timeout := opt.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := cli.Do(pingCtx, cli.B().Ping().Build()).Error(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("rueidis: ping: %w", err)
	}

	slog.InfoContext(ctx, "rueidis: connected",
		slog.String("client_name", opt.ClientName),
		slog.Bool("client_cache", !opt.DisableCache),
		slog.Bool("otel", opt.EnableOtel),
	)

	return cli, nil
}

// ClientOptionFromConfig validates the config and maps it onto rueidis.ClientOption.
func ClientOptionFromConfig(opt RedisConfig) (rueidis.ClientOption, error) {
	if opt.URL == "" {
		return rueidis.ClientOption{}, errors.New("rueidis: URL must not be empty")
	}

	u, err := url.Parse(opt.URL)
	if err != nil {
		return rueidis.ClientOption{}, fmt.Errorf("rueidis: parse url: %w", err)
	}

	host := u.Hostname()
	if u.Scheme == "redis" {
		if opt.RequireTLS {
			return rueidis.ClientOption{}, errors.New("rueidis: RequireTLS=true but URL uses redis:// (plaintext); use rediss://")
		}
		if strings.HasSuffix(host, ".cache.amazonaws.com") && opt.AutoDetectAWS {
			return rueidis.ClientOption{}, errors.New("rueidis: aws detected but using redis:// (plaintext)")
		}
		if opt.SkipTLSVerify {
			slog.Warn("rueidis: redis:// URL disables TLS even though TLS-related options are set",
				slog.String("host", host),
			)
		}
	}

	if opt.DisableCache && len(opt.ClientTrackingPrefixes) > 0 {
		slog.Warn("rueidis: tracking prefixes ignored because client cache is disabled")
	}

	clientOpt, err := rueidis.ParseURL(opt.URL)
	if err != nil {
		return rueidis.ClientOption{}, err
	}

	clientOpt.ClientName = opt.ClientName
	clientOpt.DisableRetry = opt.DisableRetry
	clientOpt.DisableCache = opt.DisableCache
	clientOpt.AlwaysPipelining = opt.AlwaysPipelining

	if opt.RingScaleEachConn > 0 {
		clientOpt.RingScaleEachConn = opt.RingScaleEachConn
	}
	if opt.CacheSizeEachConn > 0 {
		clientOpt.CacheSizeEachConn = opt.CacheSizeEachConn
	}
	if opt.ConnWriteTimeout > 0 {
		clientOpt.ConnWriteTimeout = opt.ConnWriteTimeout
	}

	if opt.SkipTLSVerify && clientOpt.TLSConfig != nil {
		tc := clientOpt.TLSConfig.Clone()
		tc.InsecureSkipVerify = true //nolint:gosec
		clientOpt.TLSConfig = tc
	} else if opt.SkipTLSVerify && u.Scheme == "rediss" {
		clientOpt.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	if tracking := trackingOptions(opt.ClientTrackingPrefixes); len(tracking) > 0 && !opt.DisableCache {
		clientOpt.ClientTrackingOptions = tracking
	}

	return clientOpt, nil
}

// trackingOptions builds CLIENT TRACKING arguments for broadcasting mode.
// OPTIN is not combinable with BCAST, so every key under a prefix is tracked.
func trackingOptions(prefixes []string) []string {
	tracking := make([]string, 0, len(prefixes)*2+1)
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tracking = append(tracking, "PREFIX", p)
	}
	if len(tracking) == 0 {
		return nil
	}
	return append(tracking, "BCAST")
}
