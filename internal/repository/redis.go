package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tempatku/internal/config"
	"tempatku/internal/models"

	"github.com/redis/go-redis/v9"
)

const approvedPlacesKey = "places:approved"

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisRepository caches the approved place listing and tracks per-client
// request counts for rate limiting.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) GetApprovedPlaces(ctx context.Context) ([]*models.Place, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, approvedPlacesKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached places: %w", err)
	}

	var places []*models.Place
	if err := json.Unmarshal([]byte(val), &places); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached places: %w", err)
	}
	return places, true, nil
}

func (r *RedisRepository) SetApprovedPlaces(ctx context.Context, places []*models.Place) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("marshal places: %w", err)
	}
	if err := r.client.Set(ctx, approvedPlacesKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set cached places: %w", err)
	}
	return nil
}

func (r *RedisRepository) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, approvedPlacesKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached places: %w", err)
	}
	return nil
}

func (r *RedisRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, redisKey, window)
	}

	return count <= int64(limit), nil
}

// Ping verifies the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close closes the connection if the client exists.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
