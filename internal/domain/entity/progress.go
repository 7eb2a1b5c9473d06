package entity

import (
	"time"
)

// ItemKind - вид элемента, учитываемого в прогрессе
type ItemKind string

// Виды элементов прогресса
const (
	ItemKindLessonContent ItemKind = "lesson_content"
	ItemKindDocument      ItemKind = "document"
	ItemKindVideo         ItemKind = "video"
	ItemKindQuiz          ItemKind = "quiz"
)

// IsValid проверяет вид элемента
func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindLessonContent, ItemKindDocument, ItemKindVideo, ItemKindQuiz:
		return true
	}
	return false
}

// Completion - отметка о завершении элемента курса пользователем
type Completion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_completion_user_item" json:"user_id"`
	ItemKind    ItemKind  `gorm:"size:20;not null;uniqueIndex:idx_completion_user_item" json:"item_kind"`
	ItemID      uint      `gorm:"not null;uniqueIndex:idx_completion_user_item" json:"item_id"`
	ModuleID    uint      `gorm:"not null;index" json:"module_id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

// TableName определяет имя таблицы для GORM
func (Completion) TableName() string {
	return "completions"
}

// Статусы записи на курс
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
)

// Enrollment - запись пользователя на курс
type Enrollment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID        uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Status          string     `gorm:"size:20;not null;default:'active'" json:"status"`
	ProgressPercent int        `gorm:"not null;default:0" json:"progress_percent"`
	EnrolledAt      time.Time  `gorm:"not null" json:"enrolled_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Course          *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Enrollment) TableName() string {
	return "enrollments"
}
