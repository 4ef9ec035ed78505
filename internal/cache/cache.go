package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: key not found")

// Client is a thin prefix-keyed wrapper over Redis. Values are plain strings;
// callers own the encoding. The cache is strictly best-effort everywhere it
// is used: a nil *Client is valid and behaves like an always-missing cache.
type Client struct {
	client *redis.Client
	prefix string
}

func NewClient(addr, password string, db int, prefix string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: rdb, prefix: prefix}, nil
}

func (c *Client) key(parts ...string) string {
	k := c.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (c *Client) Get(ctx context.Context, parts ...string) (string, error) {
	if c == nil {
		return "", ErrMiss
	}
	val, err := c.client.Get(ctx, c.key(parts...)).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return val, err
}

func (c *Client) Set(ctx context.Context, value string, ttl time.Duration, parts ...string) error {
	if c == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(parts...), value, ttl).Err()
}

func (c *Client) Del(ctx context.Context, parts ...string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(parts...)).Err()
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
