package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
	defaultPingTimeout  = 2 * time.Second
)

// RedisOptions tunes the client pool. Zero values fall back to defaults.
type RedisOptions struct {
	PoolSize     int
	MinIdleConns int
	PingTimeout  time.Duration
}

// RedisClient holds the connection pool behind the item read model.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient parses url, applies the pool options and pings the server.
// A cache that cannot be reached at startup is a configuration error, not a
// degraded mode, so the pool is closed and the ping error returned.
func NewRedisClient(ctx context.Context, url string, opts ...RedisOptions) (*RedisClient, error) {
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}

	o := RedisOptions{}
	if len(opts) > 0 {
		o = opts[0]
	}
	applyPoolOptions(ro, o)

	rdb := redis.NewClient(ro)

	timeout := o.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", ro.Addr, err)
	}
	return &RedisClient{client: rdb}, nil
}

func applyPoolOptions(ro *redis.Options, o RedisOptions) {
	ro.PoolSize = orDefault(o.PoolSize, defaultPoolSize)
	ro.MinIdleConns = orDefault(o.MinIdleConns, defaultMinIdleConns)
	ro.MaxRetries = 3
	ro.DialTimeout = 5 * time.Second
	ro.ReadTimeout = 3 * time.Second
	ro.WriteTimeout = 3 * time.Second
	ro.PoolTimeout = 4 * time.Second
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("cache: close: %w", err)
	}
	return nil
}

// Client exposes the underlying client for pipelines.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
