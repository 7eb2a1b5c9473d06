package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// CompletionRepository определяет методы для работы с отметками о завершении
type CompletionRepository interface {
	// Upsert создает отметку; повторная отметка того же элемента не является ошибкой.
	// Возвращает true, если запись была создана.
	Upsert(ctx context.Context, completion *entity.Completion) (bool, error)
	ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]entity.Completion, error)
}

// EnrollmentRepository определяет методы для работы с записями на курсы
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	Get(ctx context.Context, userID, courseID uint) (*entity.Enrollment, error)
	ListByUser(ctx context.Context, userID uint) ([]entity.Enrollment, error)
	UpdateProgress(ctx context.Context, enrollment *entity.Enrollment) error
}
