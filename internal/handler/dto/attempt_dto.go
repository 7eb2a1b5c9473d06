package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/service"
)

// AnswerRequest - ответ на вопрос попытки: option_id для вопросов с вариантами,
// text для short_answer
type AnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	OptionID   *uint  `json:"option_id"`
	Text       string `json:"text" binding:"max=5000"`
}

// ToInput преобразует запрос во входные данные сервиса
func (r AnswerRequest) ToInput() service.AnswerInput {
	return service.AnswerInput{QuestionID: r.QuestionID, OptionID: r.OptionID, Text: r.Text}
}

// CompleteAttemptRequest - завершение попытки. Если клиент не передал время,
// оно считается от начала попытки.
type CompleteAttemptRequest struct {
	ElapsedSeconds int `json:"elapsed_seconds" binding:"min=0"`
}

// GradeAnswerRequest - ручная проверка короткого ответа
type GradeAnswerRequest struct {
	IsCorrect bool `json:"is_correct"`
	Points    int  `json:"points" binding:"min=0"`
}

// ResultResponse представляет попытку в формате для ответа клиенту
type ResultResponse struct {
	ID              uint       `json:"id"`
	QuizID          uint       `json:"quiz_id"`
	UserID          uint       `json:"user_id"`
	Username        string     `json:"username,omitempty"`
	Score           int        `json:"score"`
	MaxScore        int        `json:"max_score"`
	Percentage      int        `json:"percentage"`
	Passed          bool       `json:"passed"`
	CorrectAnswers  int        `json:"correct_answers"`
	TotalQuestions  int        `json:"total_questions"`
	DurationSeconds int        `json:"duration_seconds"`
	NeedsReview     bool       `json:"needs_review"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// NewResultResponse создает DTO попытки
func NewResultResponse(a *entity.Attempt) *ResultResponse {
	resp := &ResultResponse{
		ID:              a.ID,
		QuizID:          a.QuizID,
		UserID:          a.UserID,
		Score:           a.Score,
		MaxScore:        a.MaxScore,
		Percentage:      a.Percentage,
		Passed:          a.Passed,
		CorrectAnswers:  a.CorrectAnswers,
		TotalQuestions:  a.TotalQuestions,
		DurationSeconds: a.DurationSeconds,
		NeedsReview:     a.NeedsReview(),
		StartedAt:       a.StartedAt,
		CompletedAt:     a.CompletedAt,
	}
	if a.User != nil {
		resp.Username = a.User.Username
	}
	return resp
}

// NewResultListResponse создает список DTO попыток
func NewResultListResponse(attempts []entity.Attempt) []*ResultResponse {
	result := make([]*ResultResponse, len(attempts))
	for i := range attempts {
		result[i] = NewResultResponse(&attempts[i])
	}
	return result
}
