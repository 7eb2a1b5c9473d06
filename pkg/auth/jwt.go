package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

const (
	usageAccess    = "access"
	usageWebSocket = "websocket_auth"

	issuer = "lms-api"
)

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"sid,omitempty"`
	Usage     string `json:"usage"`
	jwt.RegisteredClaims
}

// Principal возвращает аутентифицированного пользователя из claims
func (c *JWTCustomClaims) Principal() *Principal {
	return &Principal{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		SessionID: c.SessionID,
	}
}

// JWTService предоставляет методы для работы с JWT (HS256)
type JWTService struct {
	secret         []byte
	expiration     time.Duration
	wsTicketExpiry time.Duration
}

// NewJWTService создает новый сервис JWT и возвращает ошибку при проблемах
func NewJWTService(secret string, expirationHrs int, wsTicketExpirySec int) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	wsExpiry := time.Duration(wsTicketExpirySec) * time.Second
	if wsExpiry <= 0 {
		wsExpiry = 60 * time.Second
	}
	return &JWTService{
		secret:         []byte(secret),
		expiration:     time.Duration(expirationHrs) * time.Hour,
		wsTicketExpiry: wsExpiry,
	}, nil
}

// TokenTTL возвращает время жизни токена доступа
func (s *JWTService) TokenTTL() time.Duration {
	return s.expiration
}

func (s *JWTService) sign(claims *JWTCustomClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// GenerateToken создает токен доступа для пользователя в рамках сессии
func (s *JWTService) GenerateToken(user *entity.User, sessionID string) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		Usage:     usageAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			Audience:  jwt.ClaimStrings{"lms-user"},
		},
	}

	tokenString, err := s.sign(claims)
	if err != nil {
		log.Printf("[JWT] Ошибка генерации токена для пользователя ID=%d: %v", user.ID, err)
		return "", err
	}
	return tokenString, nil
}

// GenerateWSTicket создает короткоживущий JWT для аутентификации WebSocket
func (s *JWTService) GenerateWSTicket(p *Principal) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:    p.UserID,
		Email:     p.Email,
		Role:      p.Role,
		SessionID: p.SessionID,
		Usage:     usageWebSocket,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.wsTicketExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", p.UserID),
			Audience:  jwt.ClaimStrings{"lms-ws"},
		},
	}

	tokenString, err := s.sign(claims)
	if err != nil {
		log.Printf("[JWT] Ошибка генерации WS-тикета для пользователя ID=%d: %v", p.UserID, err)
		return "", err
	}
	return tokenString, nil
}

func (s *JWTService) parse(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, fmt.Errorf("%w: token is malformed", apperrors.ErrUnauthorized)
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return nil, apperrors.ErrExpiredToken
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				log.Printf("[JWT] Ошибка: Неверная подпись токена для пользователя ID=%d", claims.UserID)
				return nil, fmt.Errorf("%w: signature is invalid", apperrors.ErrUnauthorized)
			}
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}
	return claims, nil
}

// ParseToken проверяет токен доступа
func (s *JWTService) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Usage != usageAccess {
		return nil, fmt.Errorf("%w: invalid token usage", apperrors.ErrUnauthorized)
	}
	return claims, nil
}

// ParseWSTicket проверяет JWT, используемый как WS тикет
func (s *JWTService) ParseWSTicket(ticketString string) (*JWTCustomClaims, error) {
	claims, err := s.parse(ticketString)
	if err != nil {
		return nil, err
	}
	if claims.Usage != usageWebSocket {
		return nil, fmt.Errorf("%w: invalid ticket usage", apperrors.ErrUnauthorized)
	}
	return claims, nil
}
