package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/handler/helper"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/quizbuilder"
	"github.com/yourusername/lms-api/pkg/auth"
)

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService, attemptService *service.AttemptService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		attemptService: attemptService,
	}
}

// CreateQuiz принимает заполненный мастер и сохраняет викторину со всеми вопросами
// POST /api/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req dto.CreateQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.SubmitWizard(c.Request.Context(), p, req.ToDraft())
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, true, true))
}

// SaveDraft сохраняет незавершенный мастер автора
// PUT /api/quizzes/draft
func (h *QuizHandler) SaveDraft(c *gin.Context) {
	var draft quizbuilder.Draft
	if !bindJSON(c, &draft) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.quizService.SaveDraft(c.Request.Context(), p.UserID, draft); err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft saved"})
}

// GetDraft возвращает сохраненный мастер автора
// GET /api/quizzes/draft
func (h *QuizHandler) GetDraft(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	draft, err := h.quizService.LoadDraft(c.Request.Context(), p.UserID)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "step": draft.Step.String()})
}

// DeleteDraft удаляет сохраненный мастер
// DELETE /api/quizzes/draft
func (h *QuizHandler) DeleteDraft(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.quizService.DeleteDraft(c.Request.Context(), p.UserID); err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetQuiz возвращает викторину с вопросами.
// Правильные ответы видны только автору и администратору.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true, canSeeAnswers(p, quiz)))
}

func canSeeAnswers(p *auth.Principal, quiz *entity.Quiz) bool {
	return p.CanAuthor() && p.Owns(quiz.CreatedBy)
}

// ListQuizzes возвращает викторины с фильтрами module_id и search
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	page, pageSize := helper.ParsePagination(c)
	filters := repository.QuizFilters{
		ModuleID: helper.QueryUint(c, "module_id"),
		Search:   c.Query("search"),
	}

	quizzes, total, err := h.quizService.ListQuizzes(c.Request.Context(), filters, page, pageSize)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(dto.NewListQuizResponse(quizzes), total, page, pageSize))
}

// UpdateQuiz изменяет название, описание и порог прохождения
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	var req dto.UpdateQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), p, quizID, req.ToInput())
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true, true))
}

// DeleteQuiz удаляет викторину вместе с вопросами и попытками
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuiz(c.Request.Context(), p, quizID); err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// AddQuestions добавляет вопросы в викторину.
// Каждый вопрос проверяется так же, как в мастере.
func (h *QuizHandler) AddQuestions(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	var req dto.AddQuestionsRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.AddQuestions(c.Request.Context(), p, quizID, req.Drafts())
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true, true))
}

// DeleteQuestion удаляет вопрос из викторины
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuestion(c.Request.Context(), p, questionID); err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetFinalQuiz назначает итоговую викторину модуля
// PUT /api/modules/:id/final-quiz
func (h *QuizHandler) SetFinalQuiz(c *gin.Context) {
	moduleID := c.MustGet("moduleID").(uint)
	var req dto.SetFinalQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.quizService.SetFinalQuiz(c.Request.Context(), p, moduleID, req.QuizID); err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"module_id": moduleID, "final_quiz_id": req.QuizID})
}

// GetQuizResults возвращает завершенные попытки викторины ее автору
func (h *QuizHandler) GetQuizResults(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}
	page, pageSize := helper.ParsePagination(c)

	results, total, err := h.attemptService.ListQuizResults(c.Request.Context(), p, quizID, page, pageSize)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(dto.NewResultListResponse(results), total, page, pageSize))
}

// ExportQuizResults экспортирует результаты викторины в CSV или Excel формате
// GET /api/quizzes/:id/results/export?format=csv|xlsx
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		handleError(c, "QuizHandler", fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, format))
		return
	}

	quiz, results, err := h.attemptService.ExportQuizResults(c.Request.Context(), p, quizID)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	filename := exportFilename(quiz)
	switch format {
	case "xlsx":
		exportXLSX(c, results, quiz, filename)
	default:
		exportCSV(c, results, quiz, filename)
	}
}
