package ratelimit

import (
	"time"
)

type KeyStrategyId string

const (
	RemoteIpKeyStrategy KeyStrategyId = "remote_ip"
	// RouteRemoteIpKeyStrategy scopes the remote ip counter to one route pattern.
	RouteRemoteIpKeyStrategy KeyStrategyId = "route_remote_ip"
)

type (
	// RestHTTPConfig is parsed under RATE_LIMIT_, e.g.
	//
	//	RATE_LIMIT_ROUTE_0_PATTERN=/api/v1/book
	//	RATE_LIMIT_ROUTE_0_POLICY_0_METHOD=POST
	//	RATE_LIMIT_ROUTE_0_POLICY_0_LIMIT=30
	//	RATE_LIMIT_ROUTE_0_POLICY_0_WINDOW=1m
	RestHTTPConfig struct {
		Enabled             bool         `env:"ENABLED" envDefault:"true"`
		KeyPrefix           string       `env:"KEY_PREFIX" envDefault:"books:rl"`
		Routes              []Route      `envPrefix:"ROUTE_"`
		DefaultPolicy       EndpointRule `envPrefix:"DEFAULT_"`
		AllowIfNoMatch      bool         `env:"ALLOW_IF_NO_MATCH" envDefault:"true"`
		AllowIfNoIdentifier bool         `env:"ALLOW_IF_NO_ID"`

		// Store is "redis" to share counters across replicas, or "memory".
		Store string `env:"STORE" envDefault:"redis"`
	}

	Route struct {
		// Pattern is the path part of a ServeMux pattern, e.g. /api/v1/book/{id}.
		Pattern       string         `env:"PATTERN"`
		EndpointRules []EndpointRule `envPrefix:"POLICY_"`
	}

	EndpointRule struct {
		Method      string        `env:"METHOD"`
		Limit       int64         `env:"LIMIT" envDefault:"600"`
		Window      time.Duration `env:"WINDOW" envDefault:"1m"`
		KeyStrategy KeyStrategyId `env:"KEY_STRATEGY" envDefault:"remote_ip"`
	}
)
