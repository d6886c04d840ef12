package cache

import (
	"fmt"

	"mouscache/internal/circuitbreaker"
)

// Type represents the cache backend type
type Type string

const (
	TypeMemory Type = "memory"
	TypeRedis  Type = "redis"
)

// Config holds cache configuration
type Config struct {
	Type            Type   `json:"type"`
	MaxContainerLen int    `json:"max_container_len,omitempty"`
	KeyPrefix       string `json:"key_prefix,omitempty"`

	RedisClient RedisClient                       `json:"-"`
	Breaker     *circuitbreaker.GoBreakerAdapter `json:"-"`
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		Type: TypeMemory,
	}
}

// New creates a cache instance based on configuration
func New(config Config) (Cache, error) {
	switch config.Type {
	case TypeMemory, "":
		return NewMemory(WithMaxContainerLen(config.MaxContainerLen)), nil

	case TypeRedis:
		if config.RedisClient == nil {
			return nil, fmt.Errorf("redis client required for redis cache")
		}
		return NewRedisCache(config.RedisClient, config.Breaker, config.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown cache type: %s", config.Type)
	}
}

// MustNew creates a cache instance or panics
func MustNew(config Config) Cache {
	cache, err := New(config)
	if err != nil {
		panic(err)
	}
	return cache
}
