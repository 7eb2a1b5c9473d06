package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// ForumRepo реализует repository.ForumRepository
type ForumRepo struct {
	db *gorm.DB
}

// NewForumRepo создает новый репозиторий форума
func NewForumRepo(db *gorm.DB) *ForumRepo {
	return &ForumRepo{db: db}
}

// CreateThread создает тему вместе с первым сообщением, если оно передано
func (r *ForumRepo) CreateThread(ctx context.Context, thread *entity.ForumThread) error {
	return mapError(r.db.WithContext(ctx).Create(thread).Error, "forum thread")
}

// GetThread возвращает тему без сообщений
func (r *ForumRepo) GetThread(ctx context.Context, id uint) (*entity.ForumThread, error) {
	var thread entity.ForumThread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		return nil, mapError(err, "forum thread")
	}
	return &thread, nil
}

// GetThreadWithPosts возвращает тему с сообщениями
func (r *ForumRepo) GetThreadWithPosts(ctx context.Context, id uint) (*entity.ForumThread, error) {
	var thread entity.ForumThread
	err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&thread, id).Error
	if err != nil {
		return nil, mapError(err, "forum thread")
	}
	return &thread, nil
}

// ListThreads возвращает темы курса, начиная с последних обновленных
func (r *ForumRepo) ListThreads(ctx context.Context, courseID uint, limit, offset int) ([]entity.ForumThread, int64, error) {
	var threads []entity.ForumThread
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ForumThread{}).Where("course_id = ?", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&threads).Error; err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

// CreatePost добавляет сообщение и обновляет время активности темы
func (r *ForumRepo) CreatePost(ctx context.Context, post *entity.ForumPost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&entity.ForumThread{}).Where("id = ?", post.ThreadID).
			UpdateColumn("updated_at", post.CreatedAt).Error
	})
}

// CountPostsByAuthor возвращает количество сообщений пользователя
func (r *ForumRepo) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ForumPost{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// SetClosed открывает или закрывает тему
func (r *ForumRepo) SetClosed(ctx context.Context, threadID uint, closed bool) error {
	result := r.db.WithContext(ctx).Model(&entity.ForumThread{}).Where("id = ?", threadID).Update("is_closed", closed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "forum thread")
	}
	return nil
}
