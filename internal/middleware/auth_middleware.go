package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/pkg/auth"
)

// Ключи контекста Gin
const (
	PrincipalKey = "principal"
	UserIDKey    = "user_id"
)

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	sessionRepo repository.SessionRepository
}

// NewAuthMiddleware создает middleware. Если sessionRepo не nil,
// токены закрытых сессий отклоняются.
func NewAuthMiddleware(jwtService *auth.JWTService, sessionRepo repository.SessionRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		sessionRepo: sessionRepo,
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth проверяет токен и кладет Principal в контекст запроса
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.jwtService.ParseToken(token)
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, apperrors.ErrExpiredToken) {
				errorType = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		if m.sessionRepo != nil && claims.SessionID != "" {
			session, err := m.sessionRepo.GetByID(c.Request.Context(), claims.SessionID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("[AuthMiddleware] Ошибка проверки сессии %s: %v", claims.SessionID, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			if session == nil || !session.IsActive() {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session is closed", "error_type": "session_closed"})
				return
			}
		}

		SetPrincipal(c, claims.Principal())
		c.Next()
	}
}

// RequireRole пропускает только пользователей с одной из ролей
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !principal.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role", "error_type": "forbidden"})
			return
		}
		c.Next()
	}
}

// SetPrincipal сохраняет пользователя запроса в контексте
func SetPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(PrincipalKey, p)
	c.Set(UserIDKey, p.UserID)
}

// PrincipalFrom возвращает пользователя текущего запроса
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := value.(*auth.Principal)
	return p, ok && p != nil
}
