// Package cursor persists the last received id of paged inbox and
// subscription fetches so a later fetch can resume where the previous one
// stopped.
package cursor

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvRedisURL selects the Redis store when set.
const EnvRedisURL = "AT_REDIS_URL"

// Store loads and saves cursors by key. A key that was never saved loads as
// 0. Save never moves a cursor backwards.
type Store interface {
	Load(ctx context.Context, key string) (int64, error)
	Save(ctx context.Context, key string, id int64) error
	Close() error
}

// Key builds a cursor key scoped to an account and environment, e.g.
// Key("sms", "sandbox", "sandbox") or Key("subscriptions", "acme", "production", "12345", "news").
func Key(kind, username, environment string, parts ...string) string {
	segments := append([]string{kind, username, environment}, parts...)
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(strings.TrimSpace(s), ":", "_")
	}
	return strings.Join(segments, ":")
}

// Open returns a RedisStore when AT_REDIS_URL is set and a FileStore in dir
// otherwise.
func Open(dir string) (Store, error) {
	if url := strings.TrimSpace(os.Getenv(EnvRedisURL)); url != "" {
		store, err := NewRedisStore(url)
		if err != nil {
			return nil, fmt.Errorf("cursor store: %w", err)
		}
		return store, nil
	}
	return NewFileStore(dir), nil
}
