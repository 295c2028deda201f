package cursor

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "atctl:cursor:"

// advance sets KEYS[1] to ARGV[1] only when it is greater than the stored
// value, and returns the value left in place.
var advance = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local next = tonumber(ARGV[1])
if next > current then
  redis.call("SET", KEYS[1], ARGV[1])
  return next
end
return current
`)

// RedisStore keeps cursors in Redis so several machines can share them.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects to the Redis server named by a redis:// URL.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewRedisStoreFromClient(redis.NewClient(opts)), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load cursor %s: %w", key, err)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cursor %s holds %q: %w", key, value, err)
	}
	return id, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, id int64) error {
	if err := advance.Run(ctx, s.client, []string{redisKeyPrefix + key}, id).Err(); err != nil {
		return fmt.Errorf("save cursor %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
