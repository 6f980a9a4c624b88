package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/courierlabs/robocourier-backend/pkg/config"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Nil is re-exported so callers can detect cache misses without
// importing the driver directly.
const Nil = redis.Nil

// Client wraps the shared redis connection used for bearer sessions.
type Client struct {
	rdb *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		if cfg.Address == "" {
			return nil, fmt.Errorf("redis address is required")
		}
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "redis connection established")
	}

	return &Client{rdb: rdb}, nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:bearer:%s", token)
}

// PutSession stores a bearer token to username mapping with a TTL.
func (c *Client) PutSession(ctx context.Context, token, username string, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionKey(token), username, ttl).Err()
}

// ResolveSession returns the username attached to a bearer token, or
// empty string when the token is unknown or expired.
func (c *Client) ResolveSession(ctx context.Context, token string) (string, error) {
	value, err := c.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// DeleteSession revokes a bearer token.
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionKey(token)).Err()
}

// Ping verifies the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close shuts down the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
