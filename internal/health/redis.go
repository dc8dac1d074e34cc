// Package health provides health check implementations for external dependencies.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisTimeout bounds a single readiness ping.
const DefaultRedisTimeout = 2 * time.Second

// Pinger is the subset of the go-redis client the checker needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisChecker reports whether the Redis instance backing the shared rate
// limit store is reachable.
type RedisChecker struct {
	client  Pinger
	timeout time.Duration
}

// NewRedisChecker creates a new Redis health checker. A non-positive timeout
// selects DefaultRedisTimeout.
func NewRedisChecker(client Pinger, timeout time.Duration) *RedisChecker {
	if timeout <= 0 {
		timeout = DefaultRedisTimeout
	}
	return &RedisChecker{
		client:  client,
		timeout: timeout,
	}
}

// HealthCheck sends a PING and fails when Redis does not answer within the
// checker timeout.
func (r *RedisChecker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
