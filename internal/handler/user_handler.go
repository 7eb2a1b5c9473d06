package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/service"
)

// UserHandler обрабатывает профиль и настройки пользователя
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfile изменяет имя пользователя и полное имя
// PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), p.UserID, req.Username, req.FullName)
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// SetLanguage сохраняет язык интерфейса
// PUT /api/users/me/language
func (h *UserHandler) SetLanguage(c *gin.Context) {
	var req dto.LanguageRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.userService.SetLanguage(c.Request.Context(), p.UserID, req.Language); err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}
