// Package redis provides a storage.Backend on top of a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mrlokans/schooldesk/internal/storage"
)

// DefaultPrefix namespaces every key written by the backend.
const DefaultPrefix = "schooldesk:"

// Backend stores values as plain Redis strings without expiry.
type Backend struct {
	client *goredis.Client
	prefix string
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(client *goredis.Client, prefix string) *Backend {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Backend{client: client, prefix: prefix}
}

// Dial connects to addr and verifies the connection with a ping.
func Dial(ctx context.Context, addr string, db int) (*Backend, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(client, ""), nil
}

func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := b.client.Get(ctx, b.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *Backend) Set(ctx context.Context, key, value string) error {
	return b.client.Set(ctx, b.prefix+key, value, 0).Err()
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.prefix+key).Err()
}

// Close closes the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}

var _ storage.Backend = (*Backend)(nil)
