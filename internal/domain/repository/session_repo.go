package repository

import (
	"context"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// SessionRepository определяет методы для работы с сессиями входа
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Close(ctx context.Context, id string, at time.Time) error
	// CloseStale закрывает сессии, открытые раньше указанного времени
	CloseStale(ctx context.Context, before time.Time, at time.Time) (int64, error)
}
