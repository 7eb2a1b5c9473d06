package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// KeyPrefix отделяет ключи LMS от чужих данных в общем Redis
const KeyPrefix = "lms:"

// CacheRepo хранит JSON-снимки в Redis
type CacheRepo struct {
	client redis.UniversalClient
	prefix string
}

func NewCacheRepo(client redis.UniversalClient) (*CacheRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required for cache")
	}
	return &CacheRepo{client: client, prefix: KeyPrefix}, nil
}

func (r *CacheRepo) key(k string) string {
	return r.prefix + k
}

// GetJSON читает снимок в dest. Промах кеша - apperrors.ErrNotFound.
func (r *CacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return apperrors.ErrNotFound
	case err != nil:
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// битый снимок не должен ломать чтение из БД
		r.client.Del(ctx, r.key(key))
		return apperrors.ErrNotFound
	}
	return nil
}

// SetJSON сохраняет снимок. ttl <= 0 означает хранение без срока.
func (r *CacheRepo) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.key(key), raw, ttl).Err()
}

func (r *CacheRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}
