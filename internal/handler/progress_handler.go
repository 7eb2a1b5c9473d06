package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/service"
)

// ProgressHandler обрабатывает прогресс пользователя по курсу
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler создает обработчик прогресса
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetProgress возвращает прогресс по модулям и курсу
// GET /api/courses/:id/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	cp, err := h.progressService.CourseProgress(c.Request.Context(), p.UserID, courseID)
	if err != nil {
		handleError(c, "ProgressHandler", err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// MarkComplete отмечает элемент курса завершенным вручную
// POST /api/courses/:id/progress/complete
func (h *ProgressHandler) MarkComplete(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	var req dto.ItemRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	cp, err := h.progressService.MarkComplete(c.Request.Context(), p.UserID, courseID, req.Item())
	if err != nil {
		handleError(c, "ProgressHandler", err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

// ReportSignal принимает сигнал просмотрщика (прокрутка, воспроизведение, завершение)
// POST /api/courses/:id/progress/signal
func (h *ProgressHandler) ReportSignal(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	var req dto.SignalRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	completed, cp, err := h.progressService.ReportSignal(c.Request.Context(), p.UserID, courseID, req.Item(), req.Signal())
	if err != nil {
		handleError(c, "ProgressHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.SignalResponse{Completed: completed, Progress: cp})
}
