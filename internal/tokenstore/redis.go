package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token in Redis under the fixed TokenKey, for
// deployments where the client runs alongside a local Redis instance.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient connects to Redis, accepting either a redis:// URL or a
// bare host:port address. Password and db apply when the URL does not carry
// its own.
func NewRedisClient(url, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(redisOptions(url, password, db))
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("tokenstore: connect redis: %w", err)
	}
	return client, nil
}

func redisOptions(url, password string, db int) *redis.Options {
	opts, err := redis.ParseURL(url)
	if err != nil {
		// Fall back to simple connection
		opts = &redis.Options{Addr: url}
	}
	if opts.Password == "" {
		opts.Password = password
	}
	if opts.DB == 0 {
		opts.DB = db
	}
	opts.MaxRetries = 3
	return opts
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, TokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tokenstore: load: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, TokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("tokenstore: save: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, TokenKey).Err(); err != nil {
		return fmt.Errorf("tokenstore: clear: %w", err)
	}
	return nil
}
