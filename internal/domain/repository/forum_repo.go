package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// ForumRepository определяет методы для работы с форумом курса
type ForumRepository interface {
	CreateThread(ctx context.Context, thread *entity.ForumThread) error
	GetThread(ctx context.Context, id uint) (*entity.ForumThread, error)
	// GetThreadWithPosts загружает тему с сообщениями в хронологическом порядке
	GetThreadWithPosts(ctx context.Context, id uint) (*entity.ForumThread, error)
	ListThreads(ctx context.Context, courseID uint, limit, offset int) ([]entity.ForumThread, int64, error)
	CreatePost(ctx context.Context, post *entity.ForumPost) error
	CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error)
	SetClosed(ctx context.Context, threadID uint, closed bool) error
}
