package entity

import (
	"time"
)

// Answer - ответ на вопрос в рамках попытки.
// Для вопросов с вариантами заполняется SelectedOptionID, для short_answer - TextAnswer.
type Answer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttemptID        uint      `gorm:"not null;uniqueIndex:idx_answer_attempt_question" json:"attempt_id"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:idx_answer_attempt_question" json:"question_id"`
	SelectedOptionID *uint     `json:"selected_option_id,omitempty"`
	TextAnswer       string    `gorm:"type:text;not null;default:''" json:"text_answer"`
	IsCorrect        bool      `gorm:"not null;default:false" json:"is_correct"`
	PointsEarned     int       `gorm:"not null;default:0" json:"points_earned"`
	NeedsReview      bool      `gorm:"not null;default:false" json:"needs_review"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "quiz_answers"
}
