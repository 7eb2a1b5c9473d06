package entity

import (
	"time"
)

// QuestionType - тип вопроса викторины
type QuestionType string

// Поддерживаемые типы вопросов
const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// Канонические варианты для вопросов "верно/неверно"
const (
	TrueOptionText  = "Vrai"
	FalseOptionText = "Faux"
)

// DefaultQuestionPoints - баллы за вопрос по умолчанию
const DefaultQuestionPoints = 1

// IsValid проверяет, что тип вопроса поддерживается
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// HasOptions сообщает, использует ли тип вопроса варианты ответа
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Question представляет вопрос в викторине
type Question struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	QuizID      uint         `gorm:"not null;index" json:"quiz_id"`
	Text        string       `gorm:"type:text;not null" json:"text"`
	Type        QuestionType `gorm:"size:20;not null;default:'multiple_choice'" json:"type"`
	Points      int          `gorm:"not null;default:1" json:"points"`
	Explanation string       `gorm:"type:text;not null;default:''" json:"explanation"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	Options     []Option     `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "quiz_questions"
}

// EffectivePoints возвращает баллы за вопрос (не меньше 1)
func (q *Question) EffectivePoints() int {
	if q.Points <= 0 {
		return DefaultQuestionPoints
	}
	return q.Points
}

// OptionByID ищет вариант ответа среди вариантов вопроса
func (q *Question) OptionByID(id uint) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// CorrectOption возвращает первый вариант, отмеченный как правильный
func (q *Question) CorrectOption() (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// Option - вариант ответа на вопрос
type Option struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Option) TableName() string {
	return "quiz_options"
}

// QuestionRow - плоская строка выборки "вопрос x вариант".
// Для вопросов без вариантов поля варианта пустые.
type QuestionRow struct {
	QuestionID       uint
	QuizID           uint
	QuestionText     string
	QuestionType     QuestionType
	Points           int
	Explanation      string
	QuestionPosition int
	OptionID         *uint
	OptionText       *string
	OptionIsCorrect  *bool
	OptionPosition   *int
}
