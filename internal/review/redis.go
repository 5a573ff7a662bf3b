package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

const keyPrefix = "didyouthough:review:"

// RedisStore keeps reviews in redis as JSON so they survive restarts and are
// shared between replicas.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// DialRedis parses a redis:// URL and checks the server is reachable.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func key(userID string) string { return keyPrefix + userID }

func (r *RedisStore) Load(ctx context.Context, userID string) (*Buffer, error) {
	data, err := r.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoReview
	}
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}
	var b Buffer
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}
	if b.Tasks == nil {
		b.Tasks = []model.Task{}
	}
	return &b, nil
}

func (r *RedisStore) Save(ctx context.Context, userID string, b *Buffer) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}
	if err := r.rdb.Set(ctx, key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := r.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("clear review: %w", err)
	}
	return nil
}
