package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/handler/helper"
	"github.com/yourusername/lms-api/internal/service"
)

// ForumHandler обрабатывает обсуждения курса
type ForumHandler struct {
	forumService *service.ForumService
}

// NewForumHandler создает обработчик форума
func NewForumHandler(forumService *service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// ListThreads возвращает темы курса
// GET /api/courses/:id/threads
func (h *ForumHandler) ListThreads(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}
	page, pageSize := helper.ParsePagination(c)

	threads, total, err := h.forumService.ListThreads(c.Request.Context(), p, courseID, page, pageSize)
	if err != nil {
		handleError(c, "ForumHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(threads, total, page, pageSize))
}

// CreateThread открывает тему с первым сообщением
// POST /api/courses/:id/threads
func (h *ForumHandler) CreateThread(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	var req dto.CreateThreadRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	thread, err := h.forumService.CreateThread(c.Request.Context(), p, courseID, req.Title, req.Body)
	if err != nil {
		handleError(c, "ForumHandler", err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

// GetThread возвращает тему с сообщениями
// GET /api/threads/:id
func (h *ForumHandler) GetThread(c *gin.Context) {
	threadID := c.MustGet("threadID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	thread, err := h.forumService.GetThread(c.Request.Context(), p, threadID)
	if err != nil {
		handleError(c, "ForumHandler", err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

// Reply добавляет сообщение в тему
// POST /api/threads/:id/posts
func (h *ForumHandler) Reply(c *gin.Context) {
	threadID := c.MustGet("threadID").(uint)
	var req dto.ReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	post, err := h.forumService.Reply(c.Request.Context(), p, threadID, req.Body)
	if err != nil {
		handleError(c, "ForumHandler", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// SetClosed закрывает или открывает тему
// PATCH /api/threads/:id
func (h *ForumHandler) SetClosed(c *gin.Context) {
	threadID := c.MustGet("threadID").(uint)
	var req dto.CloseThreadRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.forumService.SetClosed(c.Request.Context(), p, threadID, req.Closed); err != nil {
		handleError(c, "ForumHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": threadID, "is_closed": req.Closed})
}
