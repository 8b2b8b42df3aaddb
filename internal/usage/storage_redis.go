package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps all counters in one hash, incremented with HINCRBY so
// every replica adds to the same totals.
type RedisStorage struct {
	client *redis.Client
	key    string
}

// RedisOptions selects the redis instance and key prefix.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStorage connects and pings redis.
func NewRedisStorage(ctx context.Context, opts RedisOptions) (*RedisStorage, error) {
	if opts.Prefix == "" {
		opts.Prefix = "tonetranslate:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &RedisStorage{client: client, key: opts.Prefix + "usage"}, nil
}

// LoadStats implements Storage
func (r *RedisStorage) LoadStats(ctx context.Context) (*Stats, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	return StatsFromFields(fields), nil
}

// AddStats implements Storage
func (r *RedisStorage) AddStats(ctx context.Context, delta *Stats) error {
	fields := delta.Flatten()
	if len(fields) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for field, v := range fields {
			pipe.HIncrBy(ctx, r.key, field, v)
		}
		return nil
	})
	return err
}

// Close closes the redis connection
func (r *RedisStorage) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
