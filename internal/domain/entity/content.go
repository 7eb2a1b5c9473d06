package entity

import (
	"time"
)

// ContentKind - вид содержимого урока
type ContentKind string

// Виды содержимого
const (
	ContentKindText       ContentKind = "text"
	ContentKindVideo      ContentKind = "video"
	ContentKindPDF        ContentKind = "pdf"
	ContentKindQuiz       ContentKind = "quiz"
	ContentKindSimulation ContentKind = "simulation"
)

// AllContentKinds перечисляет все виды содержимого
var AllContentKinds = []ContentKind{
	ContentKindText,
	ContentKindVideo,
	ContentKindPDF,
	ContentKindQuiz,
	ContentKindSimulation,
}

// IsValid проверяет вид содержимого
func (k ContentKind) IsValid() bool {
	for _, kind := range AllContentKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// LessonContent - элемент содержимого урока.
// Body хранит текст для text/simulation и URL для video/pdf.
type LessonContent struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	LessonID        uint        `gorm:"not null;index" json:"lesson_id"`
	Kind            ContentKind `gorm:"size:20;not null" json:"kind"`
	Title           string      `gorm:"size:200;not null" json:"title"`
	Description     string      `gorm:"type:text;not null;default:''" json:"description"`
	Body            string      `gorm:"type:text;not null;default:''" json:"body"`
	QuizID          *uint       `json:"quiz_id,omitempty"`
	DurationMinutes int         `gorm:"not null;default:0" json:"duration_minutes"`
	Position        int         `gorm:"not null;default:0" json:"position"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (LessonContent) TableName() string {
	return "lesson_contents"
}
