package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// CreateWithQuestions сохраняет викторину, затем вопросы (позиция i+1), затем варианты.
// Все вставки выполняются в одной транзакции: при ошибке ничего не сохраняется.
func (r *QuizRepo) CreateWithQuestions(ctx context.Context, quiz *entity.Quiz) error {
	questions := quiz.Questions
	quiz.Questions = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions").Create(quiz).Error; err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		return insertQuestions(tx, quiz.ID, questions, 0)
	})
	quiz.Questions = questions
	return mapError(err, "quiz")
}

// insertQuestions вставляет вопросы и их варианты, начиная с позиции startPosition+1
func insertQuestions(tx *gorm.DB, quizID uint, questions []entity.Question, startPosition int) error {
	for i := range questions {
		q := &questions[i]
		q.ID = 0
		q.QuizID = quizID
		q.Position = startPosition + i + 1
		if q.Points <= 0 {
			q.Points = entity.DefaultQuestionPoints
		}
		options := q.Options
		q.Options = nil
		if err := tx.Omit("Options").Create(q).Error; err != nil {
			return fmt.Errorf("failed to create question #%d: %w", q.Position, err)
		}
		for j := range options {
			opt := &options[j]
			opt.ID = 0
			opt.QuestionID = q.ID
			opt.Position = j + 1
			if err := tx.Create(opt).Error; err != nil {
				return fmt.Errorf("failed to create option #%d of question #%d: %w", opt.Position, q.Position, err)
			}
		}
		q.Options = options
	}
	return nil
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, mapError(err, "quiz")
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами и вариантами
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, mapError(err, "quiz")
	}
	return &quiz, nil
}

// GetQuestionRows возвращает плоскую выборку вопросов и вариантов викторины
func (r *QuizRepo) GetQuestionRows(ctx context.Context, quizID uint) ([]entity.QuestionRow, error) {
	var rows []entity.QuestionRow
	err := r.db.WithContext(ctx).
		Table("quiz_questions AS q").
		Select(`q.id AS question_id, q.quiz_id, q.text AS question_text, q.type AS question_type,
			q.points, q.explanation, q.position AS question_position,
			o.id AS option_id, o.text AS option_text, o.is_correct AS option_is_correct, o.position AS option_position`).
		Joins("LEFT JOIN quiz_options AS o ON o.question_id = q.id").
		Where("q.quiz_id = ?", quizID).
		Order("q.position ASC, q.id ASC, o.position ASC, o.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Update обновляет основные поля викторины (без вопросов)
func (r *QuizRepo) Update(ctx context.Context, quiz *entity.Quiz) error {
	err := r.db.WithContext(ctx).Model(&entity.Quiz{}).Where("id = ?", quiz.ID).
		Updates(map[string]interface{}{
			"title":         quiz.Title,
			"description":   quiz.Description,
			"passing_score": quiz.PassingScore,
			"lesson_id":     quiz.LessonID,
		}).Error
	return mapError(err, "quiz")
}

// ListWithFilters возвращает список викторин с фильтрами и total count
func (r *QuizRepo) ListWithFilters(ctx context.Context, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	var quizzes []entity.Quiz
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quiz{})
	if filters.ModuleID != 0 {
		query = query.Where("module_id = ?", filters.ModuleID)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}
	return quizzes, total, nil
}

// Delete удаляет викторину; вопросы, варианты и попытки удаляются каскадно
func (r *QuizRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Quiz{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "quiz")
	}
	return nil
}
