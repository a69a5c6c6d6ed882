package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores the last result as JSON under a single key and lets
// Redis expire it after ttl.
type RedisCache struct {
	cli *redis.Client
	key string
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

var _ drepo.ResultCache = (*RedisCache)(nil)

// NewRedisCache connects and pings Redis.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheFromClient(rdb, cfg.Key, cfg.TTL), nil
}

func NewRedisCacheFromClient(cli *redis.Client, key string, ttl time.Duration) *RedisCache {
	if key == "" {
		key = "econdash:yearly"
	}
	return &RedisCache{cli: cli, key: key, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context) (models.Result, bool, error) {
	if r.ttl <= 0 {
		return models.Result{}, false, nil
	}
	b, err := r.cli.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Result{}, false, nil
		}
		return models.Result{}, false, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var res models.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return models.Result{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return res, true, nil
}

func (r *RedisCache) Set(ctx context.Context, res models.Result) error {
	if r.ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := r.cli.Set(ctx, r.key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	if err := r.cli.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (r *RedisCache) Close() error {
	return r.cli.Close()
}
