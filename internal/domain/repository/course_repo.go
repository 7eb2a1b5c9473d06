package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// CourseFilters определяет фильтры каталога курсов
type CourseFilters struct {
	Level         entity.CourseLevel
	Search        string
	PublishedOnly bool
	InstructorID  uint
}

// CourseRepository определяет методы для работы с курсами и их структурой
type CourseRepository interface {
	// CreateWithModules атомарно сохраняет курс с модулями, уроками и содержимым
	CreateWithModules(ctx context.Context, course *entity.Course) error
	GetByID(ctx context.Context, id uint) (*entity.Course, error)
	// GetStructure загружает курс с модулями, уроками, содержимым и ресурсами в порядке позиций
	GetStructure(ctx context.Context, id uint) (*entity.Course, error)
	List(ctx context.Context, filters CourseFilters, limit, offset int) ([]entity.Course, int64, error)
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uint) error

	GetModule(ctx context.Context, id uint) (*entity.Module, error)
	SetModuleFinalQuiz(ctx context.Context, moduleID uint, quizID *uint) error
	AddVideo(ctx context.Context, video *entity.Video) error
	AddDocument(ctx context.Context, document *entity.Document) error
	GetVideo(ctx context.Context, id uint) (*entity.Video, error)
	GetDocument(ctx context.Context, id uint) (*entity.Document, error)
	// GetContent загружает элемент урока вместе с идентификаторами модуля и курса
	GetContent(ctx context.Context, id uint) (*entity.LessonContent, uint, uint, error)
	GetLesson(ctx context.Context, id uint) (*entity.Lesson, error)
}
