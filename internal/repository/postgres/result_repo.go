package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create создает новую попытку
func (r *AttemptRepo) Create(ctx context.Context, attempt *entity.Attempt) error {
	return mapError(r.db.WithContext(ctx).Omit("Answers", "User").Create(attempt).Error, "attempt")
}

// GetByID возвращает попытку без ответов
func (r *AttemptRepo) GetByID(ctx context.Context, id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, mapError(err, "attempt")
	}
	return &attempt, nil
}

// GetWithAnswers возвращает попытку с ответами
func (r *AttemptRepo) GetWithAnswers(ctx context.Context, id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&attempt, id).Error
	if err != nil {
		return nil, mapError(err, "attempt")
	}
	return &attempt, nil
}

// UpsertAnswer сохраняет ответ, перезаписывая предыдущий ответ на тот же вопрос
func (r *AttemptRepo) UpsertAnswer(ctx context.Context, answer *entity.Answer) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "text_answer", "updated_at"}),
	}).Create(answer).Error
	return mapError(err, "answer")
}

// GetAnswerByID возвращает ответ по ID
func (r *AttemptRepo) GetAnswerByID(ctx context.Context, id uint) (*entity.Answer, error) {
	var answer entity.Answer
	if err := r.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, mapError(err, "answer")
	}
	return &answer, nil
}

// SaveGrade сохраняет итоги попытки и оценки ответов
func (r *AttemptRepo) SaveGrade(ctx context.Context, attempt *entity.Attempt) error {
	return r.saveGrade(ctx, attempt, false)
}

// Finish сохраняет итоги только незавершенной попытки. Если попытку уже
// завершил параллельный запрос, возвращает apperrors.ErrConflict.
func (r *AttemptRepo) Finish(ctx context.Context, attempt *entity.Attempt) error {
	return r.saveGrade(ctx, attempt, true)
}

func (r *AttemptRepo) saveGrade(ctx context.Context, attempt *entity.Attempt, onlyOpen bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&entity.Attempt{}).Where("id = ?", attempt.ID)
		if onlyOpen {
			query = query.Where("completed_at IS NULL")
		}
		res := query.Updates(map[string]interface{}{
			"completed_at":     attempt.CompletedAt,
			"score":            attempt.Score,
			"max_score":        attempt.MaxScore,
			"correct_answers":  attempt.CorrectAnswers,
			"total_questions":  attempt.TotalQuestions,
			"percentage":       attempt.Percentage,
			"passed":           attempt.Passed,
			"duration_seconds": attempt.DurationSeconds,
		})
		if res.Error != nil {
			return res.Error
		}
		if onlyOpen && res.RowsAffected == 0 {
			return fmt.Errorf("%w: attempt %d is already completed", apperrors.ErrConflict, attempt.ID)
		}
		for _, answer := range attempt.Answers {
			err := tx.Model(&entity.Answer{}).Where("id = ?", answer.ID).Updates(map[string]interface{}{
				"is_correct":    answer.IsCorrect,
				"points_earned": answer.PointsEarned,
				"needs_review":  answer.NeedsReview,
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByQuiz возвращает завершенные попытки викторины с пагинацией
func (r *AttemptRepo) ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	var attempts []entity.Attempt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("quiz_id = ? AND completed_at IS NOT NULL", quizID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("percentage DESC, duration_seconds ASC, id ASC").
		Limit(limit).Offset(offset).Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// ListAllByQuiz возвращает все завершенные попытки викторины вместе с пользователями
func (r *AttemptRepo) ListAllByQuiz(ctx context.Context, quizID uint) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("quiz_id = ? AND completed_at IS NOT NULL", quizID).
		Order("percentage DESC, duration_seconds ASC, id ASC").
		Find(&attempts).Error
	return attempts, err
}

// ListByUser возвращает попытки пользователя, начиная с последних
func (r *AttemptRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	var attempts []entity.Attempt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Attempt{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("started_at DESC").Limit(limit).Offset(offset).Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// CountPassedByUser возвращает количество пройденных попыток пользователя
func (r *AttemptRepo) CountPassedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Count(&count).Error
	return count, err
}

// DeleteUnfinishedBefore удаляет незавершенные попытки, начатые раньше before
func (r *AttemptRepo) DeleteUnfinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("completed_at IS NULL AND started_at < ?", before).
		Delete(&entity.Attempt{})
	return result.RowsAffected, result.Error
}
