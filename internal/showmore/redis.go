package showmore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const keyPrefix = "citymunch:showmore:"

// redisClient is the subset of *redis.Client used by RedisStore.
type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

// RedisStore keeps second pages in Redis with a TTL.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
}

// NewRedis connects to addr. A non-positive ttl uses DefaultTTL.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, eris.Wrapf(err, "showmore: ping redis %s", addr)
	}
	return newRedisStore(client, ttl), nil
}

func newRedisStore(client redisClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, searchID, message string) error {
	err := s.client.Set(ctx, keyPrefix+searchID, message, s.ttl).Err()
	return eris.Wrapf(err, "showmore: save %s", searchID)
}

func (s *RedisStore) Get(ctx context.Context, searchID string) (string, bool, error) {
	msg, err := s.client.Get(ctx, keyPrefix+searchID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "showmore: get %s", searchID)
	}
	return msg, true, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
