package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create сохраняет новую сессию
func (r *SessionRepo) Create(ctx context.Context, session *entity.Session) error {
	return mapError(r.db.WithContext(ctx).Create(session).Error, "session")
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	var session entity.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, mapError(err, "session")
	}
	return &session, nil
}

// Close закрывает открытую сессию
func (r *SessionRepo) Close(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.Session{}).
		Where("id = ? AND logout_time IS NULL", id).
		Update("logout_time", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "active session")
	}
	return nil
}

// CloseStale закрывает сессии, открытые раньше before
func (r *SessionRepo) CloseStale(ctx context.Context, before time.Time, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Session{}).
		Where("logout_time IS NULL AND login_time < ?", before).
		Update("logout_time", at)
	return result.RowsAffected, result.Error
}
