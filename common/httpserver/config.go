// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package httpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/go-redis/redis/v8"

	"riakcsmon/common/helpers"
)

// Configuration describes the configuration for the HTTP server.
type Configuration struct {
	// Listen defines the listening string to listen to.
	Listen string `validate:"required,listen"`
	// Profiler enables Go profiler as /debug
	Profiler bool
	// Cache configuration
	Cache CacheConfiguration
}

// CacheConfiguration describes the configuration of the internal HTTP cache.
// Everything is delegated to the selected backend.
type CacheConfiguration struct {
	// Config is the backend-specific configuration for the cache
	Config CacheBackendConfiguration
}

// CacheBackendConfiguration represents the configuration of a cache backend.
type CacheBackendConfiguration interface {
	New() (persist.CacheStore, error)
}

// MemoryCacheConfiguration is the configuration for an in-memory cache.
type MemoryCacheConfiguration struct {
	// Expiration is the interval between two cleanups of expired entries.
	Expiration time.Duration `validate:"min=1s"`
}

// New creates a new memory cache store from a memory cache configuration.
func (c MemoryCacheConfiguration) New() (persist.CacheStore, error) {
	return persist.NewMemoryStore(c.Expiration), nil
}

// DefaultMemoryCacheConfiguration returns the default configuration for an
// in-memory cache.
func DefaultMemoryCacheConfiguration() CacheBackendConfiguration {
	return &MemoryCacheConfiguration{
		Expiration: 5 * time.Minute,
	}
}

// RedisCacheConfiguration is the configuration for a Redis cache.
type RedisCacheConfiguration struct {
	// Protocol to connect with
	Protocol string `validate:"oneof=tcp unix"`
	// Server to connect to (with port)
	Server string `validate:"required,listen"`
	// Optional username
	Username string
	// Optional password
	Password string
	// Database to connect to
	DB int
}

// New creates a new Redis cache store from a Redis cache configuration.
func (c RedisCacheConfiguration) New() (persist.CacheStore, error) {
	client := redis.NewClient(&redis.Options{
		Network:  c.Protocol,
		Addr:     c.Server,
		Username: c.Username,
		Password: c.Password,
		DB:       c.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cannot ping Redis server: %w", err)
	}
	return persist.NewRedisStore(client), nil
}

// DefaultRedisCacheConfiguration returns the default configuration for a
// Redis-backed cache.
func DefaultRedisCacheConfiguration() CacheBackendConfiguration {
	return &RedisCacheConfiguration{
		Protocol: "tcp",
		Server:   "127.0.0.1:6379",
	}
}

// DefaultConfiguration is the default configuration of the HTTP server.
func DefaultConfiguration() Configuration {
	return Configuration{
		Listen: "0.0.0.0:9180",
		Cache: CacheConfiguration{
			Config: DefaultMemoryCacheConfiguration(),
		},
	}
}

// MarshalYAML undoes the parametrized configuration hook.
func (cc CacheConfiguration) MarshalYAML() (any, error) {
	return helpers.ParametrizedConfigurationMarshalYAML(cc, cacheConfigurationMap)
}

var cacheConfigurationMap = map[string](func() CacheBackendConfiguration){
	"memory": DefaultMemoryCacheConfiguration,
	"redis":  DefaultRedisCacheConfiguration,
}

func init() {
	helpers.RegisterMapstructureUnmarshallerHook(
		helpers.ParametrizedConfigurationUnmarshallerHook(CacheConfiguration{}, cacheConfigurationMap))
}
