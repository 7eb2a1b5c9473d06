package repository

import (
	"context"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками прохождения викторин
type AttemptRepository interface {
	Create(ctx context.Context, attempt *entity.Attempt) error
	GetByID(ctx context.Context, id uint) (*entity.Attempt, error)
	// GetWithAnswers загружает попытку вместе с ответами
	GetWithAnswers(ctx context.Context, id uint) (*entity.Attempt, error)
	// UpsertAnswer сохраняет ответ; повторный ответ на тот же вопрос перезаписывает предыдущий
	UpsertAnswer(ctx context.Context, answer *entity.Answer) error
	GetAnswerByID(ctx context.Context, id uint) (*entity.Answer, error)
	// SaveGrade сохраняет итог попытки и оценку каждого ответа в одной транзакции
	SaveGrade(ctx context.Context, attempt *entity.Attempt) error
	// Finish как SaveGrade, но только для незавершенной попытки; иначе apperrors.ErrConflict
	Finish(ctx context.Context, attempt *entity.Attempt) error
	ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Attempt, int64, error)
	// ListAllByQuiz возвращает все завершенные попытки викторины с пользователями (для экспорта)
	ListAllByQuiz(ctx context.Context, quizID uint) ([]entity.Attempt, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]entity.Attempt, int64, error)
	// CountPassedByUser возвращает количество успешно пройденных попыток пользователя
	CountPassedByUser(ctx context.Context, userID uint) (int64, error)
	// DeleteUnfinishedBefore удаляет незавершенные попытки, начатые раньше указанного времени
	DeleteUnfinishedBefore(ctx context.Context, before time.Time) (int64, error)
}
