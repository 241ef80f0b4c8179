// Package redisguard deduplicates webhook deliveries with a Redis
// SETNX-and-TTL mark per message id.
package redisguard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "growthsync:webhook:"

// Guard implements port.ReplayGuard.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, addr string, ttl time.Duration) (*Guard, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Guard{rdb: rdb, ttl: ttl}, nil
}

// NewFromClient wraps an existing client; used by tests.
func NewFromClient(rdb *redis.Client, ttl time.Duration) *Guard {
	return &Guard{rdb: rdb, ttl: ttl}
}

// CheckAndMark implements port.ReplayGuard. The mark expires after the
// TTL, which only needs to outlive the sender's retry window.
func (g *Guard) CheckAndMark(ctx context.Context, messageID string) (bool, error) {
	set, err := g.rdb.SetNX(ctx, keyPrefix+messageID, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark message %s: %w", messageID, err)
	}
	return !set, nil
}

// Release implements port.ReplayGuard.
func (g *Guard) Release(ctx context.Context, messageID string) error {
	if err := g.rdb.Del(ctx, keyPrefix+messageID).Err(); err != nil {
		return fmt.Errorf("release message %s: %w", messageID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (g *Guard) Close() error {
	return g.rdb.Close()
}
