package redis

import "time"

// RedisConfig contains configuration for constructing a rueidis.Client.
//
// URL is a standard Redis URI, for example:
//
//   - Single:  redis://:password@localhost:6379/0
//   - TLS:     rediss://:password@my-redis.example.com:6379/0
//   - Cluster: redis://:password@host1:6379/0?addr=host2:6379&addr=host3:6379
//
// Cluster vs single vs sentinel is auto-detected by rueidis based on InitAddress and options.
type RedisConfig struct {
	// Required: Redis connection URL (redis:// or rediss://).
	URL string `env:"URL" envDefault:"redis://localhost:6379/0"`

	// Optional: client name visible in CLIENT LIST, etc.
	ClientName string `env:"CLIENT_NAME" envDefault:"books-service"`

	// SkipTLSVerify disables TLS certificate verification. Only use this in trusted
	// environments (e.g. some AWS ElastiCache setups with non-standard certs).
	SkipTLSVerify bool `env:"SKIP_TLS_VERIFY"`

	// AutoDetectAWS rejects plaintext URLs pointing at *.cache.amazonaws.com.
	AutoDetectAWS bool `env:"AUTO_DETECT_AWS"`

	// RequireTLS enforces the use of rediss://.
	RequireTLS bool `env:"REQUIRE_TLS"`

	// Tuning flags. Zero values keep rueidis defaults.
	DisableRetry      bool          `env:"DISABLE_RETRY"`
	DisableCache      bool          `env:"DISABLE_CACHE"`
	AlwaysPipelining  bool          `env:"ALWAYS_PIPELINING"`
	ConnWriteTimeout  time.Duration `env:"CONN_WRITE_TIMEOUT"`
	RingScaleEachConn int           `env:"RING_SCALE_EACH_CONN"`
	CacheSizeEachConn int           `env:"CACHE_SIZE_EACH_CONN"`
	PingTimeout       time.Duration `env:"PING_TIMEOUT" envDefault:"5s"`

	// Enable OpenTelemetry integration via rueidisotel.
	EnableOtel bool `env:"ENABLE_OTEL"`

	// LogCommands logs every command with its latency at debug level.
	LogCommands bool `env:"LOG_COMMANDS"`

	// Enable server-assisted client-side caching in broadcasting mode for the given prefixes.
	// Example: []string{"books:cache:"}
	//
	// You still opt in per command by using DoCache() on the client.
	ClientTrackingPrefixes []string `env:"CLIENT_TRACKING_PREFIXES" envSeparator:","`
}
