package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU + Redis.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "none", "memory" or "redis"
	Type string `env:"TYPE"`

	// Local LRU cache settings
	LocalMaxSize int           `env:"LOCAL_MAX_SIZE"`
	LocalTTL     time.Duration `env:"LOCAL_TTL"`

	// TTL applied to cluster assignments
	AssignmentTTL time.Duration `env:"ASSIGNMENT_TTL"`

	// Redis settings
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	// Two-phase settings
	EnableTwoPhase bool `env:"TWO_PHASE"` // If true, check local first, then Redis
}
