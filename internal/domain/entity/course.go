package entity

import (
	"time"
)

// CourseLevel - уровень сложности курса
type CourseLevel string

// Уровни курсов
const (
	CourseLevelBeginner     CourseLevel = "Débutant"
	CourseLevelIntermediate CourseLevel = "Intermédiaire"
	CourseLevelAdvanced     CourseLevel = "Avancé"
)

// IsValid проверяет уровень курса
func (l CourseLevel) IsValid() bool {
	switch l {
	case CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced:
		return true
	}
	return false
}

// Course представляет курс
type Course struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Title        string      `gorm:"size:200;not null" json:"title"`
	Description  string      `gorm:"type:text;not null;default:''" json:"description"`
	Level        CourseLevel `gorm:"size:20;not null;default:'Débutant'" json:"level"`
	InstructorID uint        `gorm:"not null;index" json:"instructor_id"`
	IsPublished  bool        `gorm:"not null;default:false;index" json:"is_published"`
	Modules      []Module    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Course) TableName() string {
	return "courses"
}

// Module - модуль курса. FinalQuizID указывает на итоговую викторину модуля.
type Module struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	FinalQuizID *uint      `json:"final_quiz_id,omitempty"`
	Lessons     []Lesson   `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Documents   []Document `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Videos      []Video    `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"videos,omitempty"`
	Quizzes     []Quiz     `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"quizzes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Module) TableName() string {
	return "modules"
}

// Lesson - урок модуля
type Lesson struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ModuleID  uint            `gorm:"not null;index" json:"module_id"`
	Title     string          `gorm:"size:200;not null" json:"title"`
	Position  int             `gorm:"not null;default:0" json:"position"`
	Contents  []LessonContent `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"contents,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Lesson) TableName() string {
	return "lessons"
}
