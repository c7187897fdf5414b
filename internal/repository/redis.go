package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hamrosewa/internal/config"
	"hamrosewa/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "hamro:visitor:"

type RedisVisitorRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisVisitorRepository(client *redis.Client, ttl time.Duration) *RedisVisitorRepository {
	return &RedisVisitorRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisVisitorRepository) GetPreferences(ctx context.Context, visitorID string) (*models.Preferences, error) {
	var prefs models.Preferences
	ok, err := r.get(ctx, visitorID, models.StorageKeyPreferences, &prefs)
	if !ok || err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *RedisVisitorRepository) SetPreferences(ctx context.Context, visitorID string, prefs *models.Preferences) error {
	return r.set(ctx, visitorID, models.StorageKeyPreferences, prefs)
}

func (r *RedisVisitorRepository) GetSession(ctx context.Context, visitorID string) (*models.Session, error) {
	var session models.Session
	ok, err := r.get(ctx, visitorID, models.StorageKeyAuth, &session)
	if !ok || err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *RedisVisitorRepository) SetSession(ctx context.Context, visitorID string, session *models.Session) error {
	return r.set(ctx, visitorID, models.StorageKeyAuth, session)
}

func (r *RedisVisitorRepository) ClearSession(ctx context.Context, visitorID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, redisPrefix+storageKey(visitorID, models.StorageKeyAuth)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

func (r *RedisVisitorRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	rkey := "hamro:rate_limit:" + key
	count, err := r.client.Incr(ctx, rkey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, rkey, window)
	}

	return count <= int64(limit), nil
}

func (r *RedisVisitorRepository) get(ctx context.Context, visitorID, name string, out any) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, redisPrefix+storageKey(visitorID, name)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s from redis: %w", name, err)
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return true, nil
}

func (r *RedisVisitorRepository) set(ctx context.Context, visitorID, name string, val any) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := r.client.Set(ctx, redisPrefix+storageKey(visitorID, name), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", name, err)
	}
	return nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
