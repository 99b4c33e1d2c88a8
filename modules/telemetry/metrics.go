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

package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics holds the server side request instruments.
type HTTPMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	responseSize metric.Int64Histogram
}

// NewHTTPMetrics registers the HTTP instruments on the global meter provider.
func NewHTTPMetrics(meterName string) (*HTTPMetrics, error) {
	meter := otel.Meter(meterName)

	requests, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.body.size",
		metric.WithDescription("HTTP response body size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requests:     requests,
		duration:     duration,
		responseSize: responseSize,
	}, nil
}

// RecordRequest records one finished request. route is the matched mux
// pattern, never the raw path, to keep cardinality bounded.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, route string, status int, elapsed time.Duration, responseSize int64) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)

	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if responseSize > 0 {
		m.responseSize.Record(ctx, responseSize, attrs)
	}
}

// CacheMetrics counts named cache lookups by outcome.
type CacheMetrics struct {
	lookups metric.Int64Counter
}

func NewCacheMetrics(meterName string) (*CacheMetrics, error) {
	lookups, err := otel.Meter(meterName).Int64Counter(
		"cache.lookups",
		metric.WithDescription("Cache lookups by cache name and outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}
	return &CacheMetrics{lookups: lookups}, nil
}

// RecordLookup is safe on a nil receiver.
func (m *CacheMetrics) RecordLookup(ctx context.Context, cache string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.name", cache),
		attribute.String("cache.outcome", outcome),
	))
}
