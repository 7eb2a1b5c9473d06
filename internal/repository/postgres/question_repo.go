package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос с вариантами
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&question, id).Error
	if err != nil {
		return nil, mapError(err, "question")
	}
	return &question, nil
}

// GetByQuizID возвращает вопросы викторины в порядке позиций
func (r *QuestionRepo) GetByQuizID(ctx context.Context, quizID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Where("quiz_id = ?", quizID).
		Order("position ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// AppendToQuiz добавляет вопросы в конец викторины
func (r *QuestionRepo) AppendToQuiz(ctx context.Context, quizID uint, questions []entity.Question) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		if err := tx.Model(&entity.Question{}).
			Where("quiz_id = ?", quizID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error; err != nil {
			return err
		}
		return insertQuestions(tx, quizID, questions, maxPosition)
	})
	return mapError(err, "question")
}

// Delete удаляет вопрос вместе с вариантами
func (r *QuestionRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "question")
	}
	return nil
}
