package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// QuizFilters определяет фильтры для поиска викторин
type QuizFilters struct {
	ModuleID uint   // Фильтр по модулю (0 - все)
	Search   string // Поиск по названию/описанию
}

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	// CreateWithQuestions атомарно сохраняет викторину, ее вопросы и варианты ответов
	CreateWithQuestions(ctx context.Context, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id uint) (*entity.Quiz, error)
	// GetWithQuestions загружает викторину с вопросами и вариантами в порядке позиций
	GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error)
	// GetQuestionRows возвращает плоскую выборку "вопрос x вариант" для плеера
	GetQuestionRows(ctx context.Context, quizID uint) ([]entity.QuestionRow, error)
	Update(ctx context.Context, quiz *entity.Quiz) error
	ListWithFilters(ctx context.Context, filters QuizFilters, limit, offset int) ([]entity.Quiz, int64, error)
	Delete(ctx context.Context, id uint) error
}
