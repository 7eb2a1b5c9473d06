package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/handler/helper"
	"github.com/yourusername/lms-api/internal/service"
)

// AttemptHandler обрабатывает прохождение викторин через REST:
// старт попытки, ответы, завершение, разбор и ручную проверку
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// StartAttempt начинает новую попытку
// POST /api/quizzes/:id/attempts
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), p.UserID, quizID)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewResultResponse(attempt))
}

// SubmitAnswer сохраняет (или перезаписывает) ответ на вопрос
// PUT /api/attempts/:id/answers
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	var req dto.AnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	answer, err := h.attemptService.SubmitAnswer(c.Request.Context(), p.UserID, attemptID, req.ToInput())
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	// Правильность ответа до завершения попытки не раскрывается
	c.JSON(http.StatusOK, gin.H{
		"attempt_id":         answer.AttemptID,
		"question_id":        answer.QuestionID,
		"selected_option_id": answer.SelectedOptionID,
		"text_answer":        answer.TextAnswer,
	})
}

// CompleteAttempt проверяет ответы и завершает попытку
// POST /api/attempts/:id/complete
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	var req dto.CompleteAttemptRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	elapsed := time.Duration(req.ElapsedSeconds) * time.Second
	attempt, err := h.attemptService.Complete(c.Request.Context(), p.UserID, attemptID, elapsed)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewResultResponse(attempt))
}

// GetAttempt возвращает попытку владельцу или автору викторины
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	attempt, _, err := h.attemptService.GetAttempt(c.Request.Context(), p, attemptID)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewResultResponse(attempt))
}

// ReviewAttempt возвращает разбор завершенной попытки
// GET /api/attempts/:id/review
func (h *AttemptHandler) ReviewAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	items, err := h.attemptService.Review(c.Request.Context(), p, attemptID)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt_id": attemptID, "items": items})
}

// GradeAnswer выставляет оценку короткому ответу и пересчитывает попытку
// PATCH /api/answers/:id/grade
func (h *AttemptHandler) GradeAnswer(c *gin.Context) {
	answerID := c.MustGet("answerID").(uint)
	var req dto.GradeAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.GradeShortAnswer(c.Request.Context(), p, answerID, req.IsCorrect, req.Points)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewResultResponse(attempt))
}

// MyAttempts возвращает попытки текущего пользователя
// GET /api/users/me/attempts
func (h *AttemptHandler) MyAttempts(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, pageSize := helper.ParsePagination(c)

	attempts, total, err := h.attemptService.ListMyAttempts(c.Request.Context(), p.UserID, page, pageSize)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(dto.NewResultListResponse(attempts), total, page, pageSize))
}
