package repository

import (
	"context"
	"time"
)

// CacheRepository хранит сериализованные снимки: черновики мастера,
// структуры курсов и викторин, таблицы лидеров.
// Отсутствующий ключ возвращает apperrors.ErrNotFound.
type CacheRepository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
