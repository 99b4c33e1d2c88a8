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

import "time"

type (
	Mode     string
	Protocol string
)

const (
	ModeDetect Mode = "detect"
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"

	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http/protobuf"
)

// Config is parsed under the OTEL_ prefix so the standard exporter variable
// names keep working.
type Config struct {
	// Disabled installs no providers; spans and metrics become no-ops.
	Disabled bool `env:"SDK_DISABLED"`

	ServiceName    string `env:"SERVICE_NAME" envDefault:"books-api"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string `env:"DEPLOYMENT_ENVIRONMENT" envDefault:"local"`

	Protocol Protocol `env:"EXPORTER_OTLP_PROTOCOL" envDefault:"http/protobuf"`
	// Either a full URL ("http://otel-collector:4318") or host:port.
	// Empty leaves endpoint resolution to the exporter's own env handling.
	Endpoint string `env:"EXPORTER_OTLP_ENDPOINT"`
	Insecure bool   `env:"EXPORTER_OTLP_INSECURE"`

	// 0..1: 0 never samples, 1 always, anything between is parent based ratio.
	SamplerRatio float64 `env:"TRACES_SAMPLER_RATIO" envDefault:"1"`

	StartupTimeout time.Duration `env:"STARTUP_TIMEOUT" envDefault:"5s"`

	// How to interact with Go auto-instrumentation.
	Mode Mode `env:"MODE" envDefault:"detect"`

	DisableMetrics bool `env:"METRICS_DISABLED"`

	ResourceAttrs map[string]string `env:"RESOURCE_ATTRIBUTES" envSeparator:"," envKeyValSeparator:"="`
}
