package dto

import (
	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/content"
	"github.com/yourusername/lms-api/internal/service/progress"
)

// ContentRequest - элемент урока
type ContentRequest struct {
	Kind            entity.ContentKind `json:"kind" binding:"required,content_kind"`
	Title           string             `json:"title" binding:"required,max=200"`
	Description     string             `json:"description" binding:"max=2000"`
	Body            string             `json:"body"`
	QuizID          *uint              `json:"quiz_id"`
	DurationMinutes int                `json:"duration_minutes" binding:"min=0"`
}

// LessonRequest - урок модуля
type LessonRequest struct {
	Title    string           `json:"title" binding:"required,max=200"`
	Contents []ContentRequest `json:"contents" binding:"dive"`
}

// VideoRequest - видео модуля
type VideoRequest struct {
	Title           string `json:"title" binding:"max=200"`
	Description     string `json:"description" binding:"max=2000"`
	URL             string `json:"url" binding:"required,url"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
}

// ToEntity преобразует запрос в сущность
func (r VideoRequest) ToEntity() *entity.Video {
	return &entity.Video{
		Title:           r.Title,
		Description:     r.Description,
		URL:             r.URL,
		DurationSeconds: r.DurationSeconds,
	}
}

// DocumentRequest - документ модуля
type DocumentRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Type        string `json:"type" binding:"omitempty,oneof=file url"`
	URL         string `json:"url" binding:"required,url"`
}

// ToEntity преобразует запрос в сущность
func (r DocumentRequest) ToEntity() *entity.Document {
	return &entity.Document{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		URL:         r.URL,
	}
}

// ModuleRequest - модуль курса
type ModuleRequest struct {
	Title       string            `json:"title" binding:"required,max=200"`
	Description string            `json:"description" binding:"max=2000"`
	Lessons     []LessonRequest   `json:"lessons" binding:"dive"`
	Videos      []VideoRequest    `json:"videos" binding:"dive"`
	Documents   []DocumentRequest `json:"documents" binding:"dive"`
}

// CreateCourseRequest - курс со всей структурой, создаваемый одной транзакцией
type CreateCourseRequest struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Description string             `json:"description" binding:"max=5000"`
	Level       entity.CourseLevel `json:"level" binding:"omitempty,course_level"`
	IsPublished bool               `json:"is_published"`
	Modules     []ModuleRequest    `json:"modules" binding:"max=50,dive"`
}

// ToEntity преобразует запрос в дерево сущностей курса
func (r CreateCourseRequest) ToEntity() *entity.Course {
	course := &entity.Course{
		Title:       r.Title,
		Description: r.Description,
		Level:       r.Level,
		IsPublished: r.IsPublished,
		Modules:     make([]entity.Module, len(r.Modules)),
	}
	for i, m := range r.Modules {
		module := entity.Module{
			Title:       m.Title,
			Description: m.Description,
			Lessons:     make([]entity.Lesson, len(m.Lessons)),
		}
		for j, l := range m.Lessons {
			lesson := entity.Lesson{Title: l.Title, Contents: make([]entity.LessonContent, len(l.Contents))}
			for k, c := range l.Contents {
				lesson.Contents[k] = entity.LessonContent{
					Kind:            c.Kind,
					Title:           c.Title,
					Description:     c.Description,
					Body:            c.Body,
					QuizID:          c.QuizID,
					DurationMinutes: c.DurationMinutes,
				}
			}
			module.Lessons[j] = lesson
		}
		for _, v := range m.Videos {
			module.Videos = append(module.Videos, *v.ToEntity())
		}
		for _, d := range m.Documents {
			module.Documents = append(module.Documents, *d.ToEntity())
		}
		course.Modules[i] = module
	}
	return course
}

// UpdateCourseRequest - частичное обновление курса
type UpdateCourseRequest struct {
	Title       *string             `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string             `json:"description" binding:"omitempty,max=5000"`
	Level       *entity.CourseLevel `json:"level" binding:"omitempty,course_level"`
	IsPublished *bool               `json:"is_published"`
}

// ToInput преобразует запрос во входные данные сервиса
func (r UpdateCourseRequest) ToInput() service.UpdateCourseInput {
	return service.UpdateCourseInput{
		Title:       r.Title,
		Description: r.Description,
		Level:       r.Level,
		IsPublished: r.IsPublished,
	}
}

// ItemRequest указывает элемент курса для отметки прогресса
type ItemRequest struct {
	Kind entity.ItemKind `json:"kind" binding:"required,item_kind"`
	ID   uint            `json:"id" binding:"required"`
}

// Item преобразует запрос в элемент прогресса
func (r ItemRequest) Item() progress.Item {
	return progress.Item{Kind: r.Kind, ID: r.ID}
}

// SignalRequest - сигнал просмотра элемента
type SignalRequest struct {
	ItemRequest
	ScrollRatio   float64 `json:"scroll_ratio" binding:"min=0,max=1"`
	PlaybackRatio float64 `json:"playback_ratio" binding:"min=0,max=1"`
	Finished      bool    `json:"finished"`
}

// Signal преобразует запрос в сигнал просмотрщика
func (r SignalRequest) Signal() content.Signal {
	return content.Signal{
		ScrollRatio:   r.ScrollRatio,
		PlaybackRatio: r.PlaybackRatio,
		Finished:      r.Finished,
	}
}

// SignalResponse - результат обработки сигнала
type SignalResponse struct {
	Completed bool                     `json:"completed"`
	Progress  *progress.CourseProgress `json:"progress"`
}
