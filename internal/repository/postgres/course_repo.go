package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
)

// CourseRepo реализует repository.CourseRepository
type CourseRepo struct {
	db *gorm.DB
}

// NewCourseRepo создает новый репозиторий курсов
func NewCourseRepo(db *gorm.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// CreateWithModules сохраняет курс со всей структурой в одной транзакции.
// Позиции модулей, уроков и содержимого проставляются по порядку в срезах.
func (r *CourseRepo) CreateWithModules(ctx context.Context, course *entity.Course) error {
	for i := range course.Modules {
		module := &course.Modules[i]
		module.Position = i + 1
		for j := range module.Lessons {
			lesson := &module.Lessons[j]
			lesson.Position = j + 1
			for k := range lesson.Contents {
				lesson.Contents[k].Position = k + 1
			}
		}
		for j := range module.Videos {
			module.Videos[j].Position = j + 1
		}
		for j := range module.Documents {
			module.Documents[j].Position = j + 1
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return fmt.Errorf("failed to create course structure: %w", err)
		}
		return nil
	})
	return mapError(err, "course")
}

// GetByID возвращает курс без структуры
func (r *CourseRepo) GetByID(ctx context.Context, id uint) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, mapError(err, "course")
	}
	return &course, nil
}

// GetStructure возвращает курс с модулями, уроками, содержимым и ресурсами
func (r *CourseRepo) GetStructure(ctx context.Context, id uint) (*entity.Course, error) {
	var course entity.Course
	err := r.db.WithContext(ctx).
		Preload("Modules", byPosition).
		Preload("Modules.Lessons", byPosition).
		Preload("Modules.Lessons.Contents", byPosition).
		Preload("Modules.Documents", byPosition).
		Preload("Modules.Videos", byPosition).
		Preload("Modules.Quizzes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&course, id).Error
	if err != nil {
		return nil, mapError(err, "course")
	}
	return &course, nil
}

// List возвращает курсы каталога с фильтрами и total count
func (r *CourseRepo) List(ctx context.Context, filters repository.CourseFilters, limit, offset int) ([]entity.Course, int64, error) {
	var courses []entity.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Course{})
	if filters.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if filters.Level != "" {
		query = query.Where("level = ?", filters.Level)
	}
	if filters.InstructorID != 0 {
		query = query.Where("instructor_id = ?", filters.InstructorID)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// Update обновляет основные поля курса
func (r *CourseRepo) Update(ctx context.Context, course *entity.Course) error {
	err := r.db.WithContext(ctx).Model(&entity.Course{}).Where("id = ?", course.ID).
		Updates(map[string]interface{}{
			"title":        course.Title,
			"description":  course.Description,
			"level":        course.Level,
			"is_published": course.IsPublished,
		}).Error
	return mapError(err, "course")
}

// Delete удаляет курс со всей структурой
func (r *CourseRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "course")
	}
	return nil
}

// GetModule возвращает модуль по ID
func (r *CourseRepo) GetModule(ctx context.Context, id uint) (*entity.Module, error) {
	var module entity.Module
	if err := r.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return nil, mapError(err, "module")
	}
	return &module, nil
}

// SetModuleFinalQuiz назначает итоговую викторину модуля
func (r *CourseRepo) SetModuleFinalQuiz(ctx context.Context, moduleID uint, quizID *uint) error {
	result := r.db.WithContext(ctx).Model(&entity.Module{}).Where("id = ?", moduleID).Update("final_quiz_id", quizID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "module")
	}
	return nil
}

// AddVideo добавляет видео в конец списка видео модуля
func (r *CourseRepo) AddVideo(ctx context.Context, video *entity.Video) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		if err := tx.Model(&entity.Video{}).Where("module_id = ?", video.ModuleID).
			Select("COALESCE(MAX(position), 0)").Scan(&maxPosition).Error; err != nil {
			return err
		}
		video.Position = maxPosition + 1
		return tx.Create(video).Error
	})
	return mapError(err, "video")
}

// AddDocument добавляет документ в конец списка документов модуля
func (r *CourseRepo) AddDocument(ctx context.Context, document *entity.Document) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		if err := tx.Model(&entity.Document{}).Where("module_id = ?", document.ModuleID).
			Select("COALESCE(MAX(position), 0)").Scan(&maxPosition).Error; err != nil {
			return err
		}
		document.Position = maxPosition + 1
		return tx.Create(document).Error
	})
	return mapError(err, "document")
}

// GetVideo возвращает видео по ID
func (r *CourseRepo) GetVideo(ctx context.Context, id uint) (*entity.Video, error) {
	var video entity.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, mapError(err, "video")
	}
	return &video, nil
}

// GetDocument возвращает документ по ID
func (r *CourseRepo) GetDocument(ctx context.Context, id uint) (*entity.Document, error) {
	var document entity.Document
	if err := r.db.WithContext(ctx).First(&document, id).Error; err != nil {
		return nil, mapError(err, "document")
	}
	return &document, nil
}

// GetLesson возвращает урок с содержимым
func (r *CourseRepo) GetLesson(ctx context.Context, id uint) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).Preload("Contents", byPosition).First(&lesson, id).Error; err != nil {
		return nil, mapError(err, "lesson")
	}
	return &lesson, nil
}

// GetContent возвращает элемент урока и идентификаторы его модуля и курса
func (r *CourseRepo) GetContent(ctx context.Context, id uint) (*entity.LessonContent, uint, uint, error) {
	var content entity.LessonContent
	if err := r.db.WithContext(ctx).First(&content, id).Error; err != nil {
		return nil, 0, 0, mapError(err, "lesson content")
	}

	var owner struct {
		ModuleID uint
		CourseID uint
	}
	err := r.db.WithContext(ctx).
		Table("lessons AS l").
		Select("l.module_id, m.course_id").
		Joins("JOIN modules AS m ON m.id = l.module_id").
		Where("l.id = ?", content.LessonID).
		Scan(&owner).Error
	if err != nil {
		return nil, 0, 0, err
	}
	return &content, owner.ModuleID, owner.CourseID, nil
}
