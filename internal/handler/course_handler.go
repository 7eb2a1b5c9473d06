package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/handler/helper"
	"github.com/yourusername/lms-api/internal/service"
)

// CourseHandler обрабатывает каталог курсов, структуру, запись и содержимое
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler создает обработчик курсов
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// ListCourses возвращает каталог с фильтрами level и search
// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, pageSize := helper.ParsePagination(c)
	filters := repository.CourseFilters{
		Level:  entity.CourseLevel(c.Query("level")),
		Search: c.Query("search"),
	}

	courses, total, err := h.courseService.ListCourses(c.Request.Context(), p, filters, page, pageSize)
	if err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(courses, total, page, pageSize))
}

// GetCourse возвращает курс со всей структурой
// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	course, err := h.courseService.GetStructure(c.Request.Context(), p, courseID)
	if err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse создает курс с модулями, уроками и содержимым одной транзакцией
// POST /api/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	course := req.ToEntity()
	if err := h.courseService.CreateCourse(c.Request.Context(), p, course); err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// UpdateCourse изменяет курс и его публикацию
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), p, courseID, req.ToInput())
	if err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteCourse удаляет курс
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.courseService.DeleteCourse(c.Request.Context(), p, courseID); err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

// AddVideo добавляет видео в модуль
// POST /api/modules/:id/videos
func (h *CourseHandler) AddVideo(c *gin.Context) {
	moduleID := c.MustGet("moduleID").(uint)
	var req dto.VideoRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	video := req.ToEntity()
	if err := h.courseService.AddVideo(c.Request.Context(), p, moduleID, video); err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// AddDocument добавляет документ в модуль
// POST /api/modules/:id/documents
func (h *CourseHandler) AddDocument(c *gin.Context) {
	moduleID := c.MustGet("moduleID").(uint)
	var req dto.DocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	document := req.ToEntity()
	if err := h.courseService.AddDocument(c.Request.Context(), p, moduleID, document); err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusCreated, document)
}

// ModuleResources возвращает ресурсы модуля в виде готовых представлений
// GET /api/modules/:id/resources
func (h *CourseHandler) ModuleResources(c *gin.Context) {
	moduleID := c.MustGet("moduleID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	views, err := h.courseService.ModuleResources(c.Request.Context(), p, moduleID)
	if err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"module_id": moduleID, "resources": views})
}

// Enroll записывает текущего пользователя на курс
// POST /api/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	enrollment, err := h.courseService.Enroll(c.Request.Context(), p.UserID, courseID)
	if err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// MyCourses возвращает курсы, на которые записан пользователь
// GET /api/users/me/courses
func (h *CourseHandler) MyCourses(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	enrollments, err := h.courseService.MyCourses(c.Request.Context(), p.UserID)
	if err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

// GetContent возвращает представление элемента урока для просмотрщика
// GET /api/contents/:id
func (h *CourseHandler) GetContent(c *gin.Context) {
	contentID := c.MustGet("contentID").(uint)
	p, ok := principal(c)
	if !ok {
		return
	}

	view, err := h.courseService.ContentView(c.Request.Context(), p, contentID)
	if err != nil {
		handleError(c, "CourseHandler", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
