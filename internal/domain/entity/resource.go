package entity

import (
	"time"
)

// ResourceKind - тег варианта ресурса модуля
type ResourceKind string

// Виды ресурсов модуля
const (
	ResourceKindDocument ResourceKind = "document"
	ResourceKindVideo    ResourceKind = "video"
	ResourceKindQuiz     ResourceKind = "quiz"
)

// Resource - ресурс модуля (документ, видео или викторина).
// Реализуется только типами этого пакета; разбирается через type switch.
type Resource interface {
	ResourceKind() ResourceKind
	ResourceID() uint
	ResourceTitle() string
	isResource()
}

// Источники документа
const (
	DocumentTypeFile = "file"
	DocumentTypeURL  = "url"
)

// Document - документ модуля
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ModuleID    uint      `gorm:"not null;index" json:"module_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	Type        string    `gorm:"size:10;not null;default:'url'" json:"type"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Document) TableName() string {
	return "documents"
}

func (d Document) ResourceKind() ResourceKind { return ResourceKindDocument }
func (d Document) ResourceID() uint           { return d.ID }
func (d Document) ResourceTitle() string      { return d.Title }
func (Document) isResource()                  {}

// Источники видео
const (
	VideoTypeFile    = "file"
	VideoTypeURL     = "url"
	VideoTypeYouTube = "youtube"
	VideoTypeVimeo   = "vimeo"
)

// Video - видео модуля
type Video struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ModuleID        uint      `gorm:"not null;index" json:"module_id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text;not null;default:''" json:"description"`
	Type            string    `gorm:"size:10;not null;default:'url'" json:"type"`
	URL             string    `gorm:"type:text;not null" json:"url"`
	ThumbnailURL    string    `gorm:"type:text;not null;default:''" json:"thumbnail_url"`
	DurationSeconds int       `gorm:"not null;default:0" json:"duration_seconds"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Video) TableName() string {
	return "videos"
}

func (v Video) ResourceKind() ResourceKind { return ResourceKindVideo }
func (v Video) ResourceID() uint           { return v.ID }
func (v Video) ResourceTitle() string      { return v.Title }
func (Video) isResource()                  {}

func (q Quiz) ResourceKind() ResourceKind { return ResourceKindQuiz }
func (q Quiz) ResourceID() uint           { return q.ID }
func (q Quiz) ResourceTitle() string      { return q.Title }
func (Quiz) isResource()                  {}

// Resources возвращает ресурсы модуля: документы, видео, викторины модуля (без викторин уроков)
func (m *Module) Resources() []Resource {
	resources := make([]Resource, 0, len(m.Documents)+len(m.Videos)+len(m.Quizzes))
	for _, d := range m.Documents {
		resources = append(resources, d)
	}
	for _, v := range m.Videos {
		resources = append(resources, v)
	}
	for _, q := range m.Quizzes {
		if q.LessonID != nil {
			continue
		}
		resources = append(resources, q)
	}
	return resources
}
