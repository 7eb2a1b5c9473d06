package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	GetByQuizID(ctx context.Context, quizID uint) ([]entity.Question, error)
	// AppendToQuiz добавляет вопросы с вариантами в конец викторины в одной транзакции
	AppendToQuiz(ctx context.Context, quizID uint, questions []entity.Question) error
	Delete(ctx context.Context, id uint) error
}
