package entity

import (
	"time"
)

// Attempt представляет попытку прохождения викторины пользователем.
// Пока CompletedAt == nil, попытка считается незавершенной.
type Attempt struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	QuizID          uint       `gorm:"not null;index" json:"quiz_id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Score           int        `gorm:"not null;default:0" json:"score"`
	MaxScore        int        `gorm:"not null;default:0" json:"max_score"`
	CorrectAnswers  int        `gorm:"not null;default:0" json:"correct_answers"`
	TotalQuestions  int        `gorm:"not null;default:0" json:"total_questions"`
	Percentage      int        `gorm:"not null;default:0" json:"percentage"`
	Passed          bool       `gorm:"not null;default:false" json:"passed"`
	DurationSeconds int        `gorm:"not null;default:0" json:"duration_seconds"`
	Answers         []Answer   `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	User            *User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "quiz_results"
}

// IsCompleted проверяет, завершена ли попытка
func (a *Attempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// NeedsReview сообщает, есть ли в попытке ответы, ожидающие ручной проверки
func (a *Attempt) NeedsReview() bool {
	for _, answer := range a.Answers {
		if answer.NeedsReview {
			return true
		}
	}
	return false
}
