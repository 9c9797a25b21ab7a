// Package cache wraps the Dragonfly/Redis client that holds short-lived
// practice state: difficulty levels and exercises awaiting an answer. Every
// key lives under KeyPrefix.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "practice"

// clientName shows up in CLIENT LIST on the server.
const clientName = "pai-practice"

// Key joins parts under KeyPrefix, e.g. Key("levels", "amy") is
// "practice:levels:amy".
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}

type Cache struct {
	Client *redis.Client
}

// ParseURL checks a redis:// or rediss:// URL and applies the service's
// timeouts.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, errors.New("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	opts.ClientName = clientName
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second
	return opts, nil
}

// New connects and pings. The caller owns Close.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging cache at %s: %w", opts.Addr, err)
	}
	return &Cache{Client: client}, nil
}

// SetJSON stores v as JSON. A ttl of zero keeps the key forever.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// TakeJSON reads and deletes key in one round trip, decoding into v. It
// reports false when the key is absent or expired.
func (c *Cache) TakeJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.Client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("take %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck is used by /readyz.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
