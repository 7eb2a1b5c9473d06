package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/service"
)

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register обрабатывает запрос на регистрацию пользователя
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Language: req.Language,
	})
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    dto.NewUserResponse(user),
		"message": "User registered successfully",
	})
}

// Login открывает сессию и выдает токен доступа
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       dto.NewUserResponse(result.User),
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"session_id": result.SessionID,
	})
}

// Logout закрывает сессию текущего токена
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), p); err != nil {
		handleError(c, "AuthHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// GetWSTicket выдает короткоживущий билет для подключения к /ws
// POST /api/auth/ws-ticket
func (h *AuthHandler) GetWSTicket(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ticket, err := h.authService.GenerateWSTicket(p)
	if err != nil {
		log.Printf("[AuthHandler] Ошибка генерации WS-тикета для пользователя %d: %v", p.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate WebSocket ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// GetMe возвращает профиль текущего пользователя
// GET /api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), p.UserID)
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":       dto.NewUserResponse(user),
		"session_id": p.SessionID,
	})
}
