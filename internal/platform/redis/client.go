package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portal/internal/platform/config"
)

const (
	connectAttempts = 3
	healthTimeout   = time.Second
)

// Client is the session backend connection. Nil means sessions stay in memory.
type Client struct {
	*redis.Client
	retryDelay time.Duration
}

// Connect dials Redis and pings it, retrying a few times so the portal can
// start alongside a Redis that is still booting. An empty URL returns (nil, nil).
func Connect(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	c := &Client{Client: redis.NewClient(opts), retryDelay: 500 * time.Millisecond}
	if err := c.waitReady(ctx); err != nil {
		_ = c.Client.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) waitReady(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = c.Ping(ctx).Err(); err == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("redis ping failed after %d attempts: %w", connectAttempts, err)
}

// Health reports whether the session backend answers within a second.
// It matches the signature the health endpoint expects.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}
