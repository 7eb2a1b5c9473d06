package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// CompletionRepo реализует repository.CompletionRepository
type CompletionRepo struct {
	db *gorm.DB
}

// NewCompletionRepo создает новый репозиторий отметок о завершении
func NewCompletionRepo(db *gorm.DB) *CompletionRepo {
	return &CompletionRepo{db: db}
}

// Upsert создает отметку, игнорируя повторную отметку того же элемента
func (r *CompletionRepo) Upsert(ctx context.Context, completion *entity.Completion) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_kind"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(completion)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUserAndCourse возвращает отметки пользователя по курсу
func (r *CompletionRepo) ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]entity.Completion, error) {
	var completions []entity.Completion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&completions).Error
	return completions, err
}

// EnrollmentRepo реализует repository.EnrollmentRepository
type EnrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo создает новый репозиторий записей на курсы
func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

// Create записывает пользователя на курс; повторная запись возвращает ErrConflict
func (r *EnrollmentRepo) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return mapError(r.db.WithContext(ctx).Omit("Course").Create(enrollment).Error, "enrollment")
}

// Get возвращает запись пользователя на курс
func (r *EnrollmentRepo) Get(ctx context.Context, userID, courseID uint) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, mapError(err, "enrollment")
	}
	return &enrollment, nil
}

// ListByUser возвращает записи пользователя вместе с курсами
func (r *EnrollmentRepo) ListByUser(ctx context.Context, userID uint) ([]entity.Enrollment, error) {
	var enrollments []entity.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// UpdateProgress сохраняет процент прохождения и статус записи
func (r *EnrollmentRepo) UpdateProgress(ctx context.Context, enrollment *entity.Enrollment) error {
	result := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{
			"progress_percent": enrollment.ProgressPercent,
			"status":           enrollment.Status,
			"completed_at":     enrollment.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "enrollment")
	}
	return nil
}
