package entity

import (
	"time"
)

// DefaultPassingScore - порог прохождения викторины в процентах по умолчанию
const DefaultPassingScore = 70

// Quiz представляет викторину модуля или урока
type Quiz struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text;not null;default:''" json:"description"`
	ModuleID     uint       `gorm:"not null;index" json:"module_id"`
	LessonID     *uint      `gorm:"index" json:"lesson_id,omitempty"`
	PassingScore int        `gorm:"not null;default:70" json:"passing_score"`
	CreatedBy    uint       `gorm:"not null;default:0" json:"created_by"`
	Questions    []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// EffectivePassingScore возвращает порог прохождения с учетом значения по умолчанию
func (q *Quiz) EffectivePassingScore() int {
	if q.PassingScore <= 0 || q.PassingScore > 100 {
		return DefaultPassingScore
	}
	return q.PassingScore
}

// MaxScore возвращает сумму баллов всех вопросов
func (q *Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.EffectivePoints()
	}
	return total
}

// QuestionByID ищет вопрос викторины по идентификатору
func (q *Quiz) QuestionByID(id uint) (*Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i], true
		}
	}
	return nil, false
}
