package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sijangmap/marketmap-backend/pkg/config"
)

const (
	namespace     = "mm"
	sessionPrefix = "session"
	cachePrefix   = "cache"
	counterPrefix = "counter"
)

// ErrNil is returned when a key does not exist.
var ErrNil = redislib.Nil

// Client wraps the go-redis client with namespaced key helpers.
type Client struct {
	store redislib.Cmdable
	raw   *redislib.Client
}

// New creates a redis client from configuration and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	raw := redislib.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{store: raw, raw: raw}, nil
}

// NewFromClient wraps an existing client, used by tests backed by miniredis.
func NewFromClient(raw *redislib.Client) *Client {
	return &Client{store: raw, raw: raw}
}

func optionsFromConfig(cfg config.RedisConfig) (*redislib.Options, error) {
	var opts *redislib.Options
	if cfg.URL != "" {
		parsed, err := redislib.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redislib.Options{Addr: cfg.Address}
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Set stores a value under the given key with a TTL. A zero TTL persists the key.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns the string value stored at key. Missing keys return ErrNil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.store.Get(ctx, key).Result()
}

// SetNX stores a value only when the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// Del removes the given keys. Missing keys are not an error.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...).Err()
}

// Incr increments the counter stored at key and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.store.Incr(ctx, key).Result()
}

// IsNil reports whether err indicates a missing key.
func IsNil(err error) bool {
	return errors.Is(err, redislib.Nil)
}

func buildKey(prefix string, parts ...string) string {
	key := namespace + ":" + prefix
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

// AccessSessionKey is the session-store key for an admin access session.
func AccessSessionKey(adminID int64, accessID string) string {
	return buildKey(sessionPrefix, fmt.Sprintf("%d", adminID), accessID)
}

// PopularKeywordsKey caches the popular-keyword listing for a given limit.
func PopularKeywordsKey(limit int) string {
	return buildKey(cachePrefix, "popular_keywords", fmt.Sprintf("%d", limit))
}

// CounterKey namespaces ad-hoc counters.
func CounterKey(name string) string {
	return buildKey(counterPrefix, name)
}
