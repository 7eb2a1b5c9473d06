package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/handler/helper"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/quizbuilder"
)

// OptionRequest - вариант ответа в запросе автора
type OptionRequest struct {
	Text      string `json:"text" binding:"max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionRequest - вопрос в запросе автора. Содержательные правила
// (количество вариантов, единственный правильный ответ) проверяет конструктор.
type QuestionRequest struct {
	Text        string              `json:"text" binding:"max=2000"`
	Type        entity.QuestionType `json:"type" binding:"required,question_type"`
	Points      int                 `json:"points" binding:"omitempty,min=1,max=100"`
	Explanation string              `json:"explanation" binding:"max=2000"`
	Options     []OptionRequest     `json:"options" binding:"max=10,dive"`
}

// ToDraft преобразует запрос в черновик конструктора
func (r QuestionRequest) ToDraft() quizbuilder.QuestionDraft {
	options := make([]quizbuilder.OptionDraft, len(r.Options))
	for i, o := range r.Options {
		options[i] = quizbuilder.OptionDraft{Text: o.Text, IsCorrect: o.IsCorrect}
	}
	return quizbuilder.QuestionDraft{
		Text:        r.Text,
		Type:        r.Type,
		Points:      r.Points,
		Explanation: r.Explanation,
		Options:     options,
	}
}

// QuizInfoRequest - первый шаг мастера
type QuizInfoRequest struct {
	Title        string `json:"title" binding:"max=200"`
	Description  string `json:"description" binding:"max=2000"`
	ModuleID     uint   `json:"module_id"`
	LessonID     *uint  `json:"lesson_id"`
	PassingScore int    `json:"passing_score" binding:"omitempty,min=0,max=100"`
}

// CreateQuizRequest - отправка мастера создания викторины целиком
type CreateQuizRequest struct {
	Info      QuizInfoRequest   `json:"info" binding:"required"`
	Questions []QuestionRequest `json:"questions" binding:"max=200,dive"`
}

// ToDraft преобразует запрос в снимок мастера
func (r CreateQuizRequest) ToDraft() quizbuilder.Draft {
	questions := make([]quizbuilder.QuestionDraft, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = q.ToDraft()
	}
	return quizbuilder.Draft{
		Step: quizbuilder.StepConfirmation,
		Info: quizbuilder.Info{
			Title:        r.Info.Title,
			Description:  r.Info.Description,
			ModuleID:     r.Info.ModuleID,
			LessonID:     r.Info.LessonID,
			PassingScore: r.Info.PassingScore,
		},
		Questions: questions,
	}
}

// AddQuestionsRequest - добавление вопросов в существующую викторину
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,max=200,dive"`
}

// Drafts преобразует вопросы запроса в черновики
func (r AddQuestionsRequest) Drafts() []quizbuilder.QuestionDraft {
	drafts := make([]quizbuilder.QuestionDraft, len(r.Questions))
	for i, q := range r.Questions {
		drafts[i] = q.ToDraft()
	}
	return drafts
}

// UpdateQuizRequest - частичное обновление викторины
type UpdateQuizRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
	PassingScore *int    `json:"passing_score"`
}

// ToInput преобразует запрос во входные данные сервиса
func (r UpdateQuizRequest) ToInput() service.UpdateQuizInput {
	return service.UpdateQuizInput{
		Title:        r.Title,
		Description:  r.Description,
		PassingScore: r.PassingScore,
	}
}

// SetFinalQuizRequest назначает (или снимает при null) итоговую викторину модуля
type SetFinalQuizRequest struct {
	QuizID *uint `json:"quiz_id"`
}

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID          uint                    `json:"id"`
	Text        string                  `json:"text"`
	Type        entity.QuestionType     `json:"type"`
	Points      int                     `json:"points"`
	Position    int                     `json:"position"`
	Explanation string                  `json:"explanation,omitempty"`
	Options     []helper.QuestionOption `json:"options"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	ModuleID      uint               `json:"module_id"`
	LessonID      *uint              `json:"lesson_id,omitempty"`
	PassingScore  int                `json:"passing_score"`
	QuestionCount int                `json:"question_count"`
	MaxScore      int                `json:"max_score"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewQuizResponse создает DTO викторины. Правильные ответы и пояснения
// включаются только при includeAnswers.
func NewQuizResponse(quiz *entity.Quiz, includeQuestions, includeAnswers bool) *QuizResponse {
	resp := &QuizResponse{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		ModuleID:      quiz.ModuleID,
		LessonID:      quiz.LessonID,
		PassingScore:  quiz.EffectivePassingScore(),
		QuestionCount: len(quiz.Questions),
		MaxScore:      quiz.MaxScore(),
		CreatedAt:     quiz.CreatedAt,
		UpdatedAt:     quiz.UpdatedAt,
	}
	if !includeQuestions {
		return resp
	}
	resp.Questions = make([]QuestionResponse, len(quiz.Questions))
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		resp.Questions[i] = QuestionResponse{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Points:   q.EffectivePoints(),
			Position: q.Position,
			Options:  helper.ConvertOptions(q.Options, includeAnswers),
		}
		if includeAnswers {
			resp.Questions[i].Explanation = q.Explanation
		}
	}
	return resp
}

// NewListQuizResponse создает список викторин без вопросов
func NewListQuizResponse(quizzes []entity.Quiz) []*QuizResponse {
	result := make([]*QuizResponse, len(quizzes))
	for i := range quizzes {
		result[i] = NewQuizResponse(&quizzes[i], false, false)
	}
	return result
}

// PaginatedResponse - страница списка
type PaginatedResponse struct {
	Items   interface{} `json:"items"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// NewPaginatedResponse создает ответ со страницей списка
func NewPaginatedResponse(items interface{}, total int64, page, pageSize int) *PaginatedResponse {
	return &PaginatedResponse{Items: items, Total: total, Page: page, PerPage: pageSize}
}
