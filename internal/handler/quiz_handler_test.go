package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/quizbuilder"
)

// Проверки мастера выполняются до обращения к хранилищу,
// поэтому сервису не нужны репозитории.
func newValidationOnlyQuizHandler() *QuizHandler {
	quizService := service.NewQuizService(nil, nil, nil, nil, 0, 0)
	return NewQuizHandler(quizService, nil)
}

func quizBody(questions ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"info": map[string]interface{}{
			"title":         "Les bases de Go",
			"module_id":     3,
			"passing_score": 60,
		},
		"questions": questions,
	}
}

func mcQuestion(correct bool) map[string]interface{} {
	return map[string]interface{}{
		"text": "Quel mot-clé lance une goroutine ?",
		"type": "multiple_choice",
		"options": []map[string]interface{}{
			{"text": "go", "is_correct": correct},
			{"text": "async", "is_correct": false},
		},
	}
}

// ============================================================================
// CreateQuiz - ошибки разбора запроса (400) до вызова сервиса
// ============================================================================

func TestCreateQuiz_BindingErrors(t *testing.T) {
	handler := &QuizHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty body", body: nil},
		{name: "unknown question type", body: quizBody(map[string]interface{}{"text": "Q", "type": "essay"})},
		{name: "points out of range", body: quizBody(map[string]interface{}{"text": "Q", "type": "short_answer", "points": 1000})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/quizzes", tt.body)
			withPrincipal(c, testInstructor)

			handler.CreateQuiz(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, "Invalid request data", resp["error"])
		})
	}
}

// ============================================================================
// CreateQuiz - проверки мастера (422 с сообщением для пользователя)
// ============================================================================

func TestCreateQuiz_WizardValidation(t *testing.T) {
	handler := newValidationOnlyQuizHandler()

	noTitle := quizBody(mcQuestion(true))
	noTitle["info"].(map[string]interface{})["title"] = "  "

	tests := []struct {
		name    string
		body    interface{}
		wantMsg string
	}{
		{name: "no correct option", body: quizBody(mcQuestion(false)), wantMsg: quizbuilder.MsgSelectCorrect},
		{name: "no questions", body: quizBody(), wantMsg: quizbuilder.MsgQuestionsRequired},
		{name: "blank title", body: noTitle, wantMsg: quizbuilder.MsgTitleRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c, w := newTestGinContext("POST", "/api/quizzes", tt.body)
			withPrincipal(c, testInstructor)

			// Act
			handler.CreateQuiz(c)

			// Assert
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, tt.wantMsg, resp["error"], "Клиент должен получить сообщение мастера")
		})
	}
}

func TestCreateQuiz_StudentForbidden(t *testing.T) {
	handler := newValidationOnlyQuizHandler()
	c, w := newTestGinContext("POST", "/api/quizzes", quizBody(mcQuestion(true)))
	withPrincipal(c, testStudent)

	handler.CreateQuiz(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportQuizResults_UnknownFormat(t *testing.T) {
	handler := &QuizHandler{}
	c, w := newTestGinContext("GET", "/api/quizzes/7/results/export?format=pdf", nil)
	c.Set("quizID", uint(7))
	withPrincipal(c, testInstructor)

	handler.ExportQuizResults(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
