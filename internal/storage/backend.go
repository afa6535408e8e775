// Package storage defines the key to JSON-string persistence backend used by
// the account registry and the cache stores.
//
// Implementations:
//   - entries.Repository (internal/database/entries) - SQLite via gorm
//   - redis.Backend (internal/storage/redis) - Redis
//   - Memory (this package) - in-process, for tests and ephemeral runs
//
// The core only needs read-after-write consistency within one process.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Backend is an async key-value store of JSON strings.
type Backend interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// GetJSON decodes the value at key into v. It reports false when the key is
// absent, leaving v untouched.
func GetJSON(ctx context.Context, b Backend, key string, v any) (bool, error) {
	raw, ok, err := b.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
