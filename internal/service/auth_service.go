package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/pkg/auth"
)

const minPasswordLength = 8

var validate = validator.New()

// RegisterInput содержит все данные для регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Language string
}

// LoginResult - результат успешного входа
type LoginResult struct {
	User      *entity.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	SessionID string       `json:"session_id"`
}

// AuthService отвечает за регистрацию, вход и сессии
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtService  *auth.JWTService
	clock       func() time.Time
}

// NewAuthService создает сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtService *auth.JWTService,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if sessionRepo == nil {
		return nil, fmt.Errorf("SessionRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		clock:       time.Now,
	}, nil
}

// Register создает учетную запись студента
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)

	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	}
	if err := validate.Var(input.Email, "required,email,max=100"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}
	if input.Language == "" {
		input.Language = entity.LanguageFrench
	}
	if !entity.IsSupportedLanguage(input.Language) {
		return nil, fmt.Errorf("%w: invalid language '%s', allowed: fr, en", apperrors.ErrValidation, input.Language)
	}

	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}

	_, err = s.userRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this username already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		Role:     entity.RoleStudent,
		Language: input.Language,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("[AuthService] Зарегистрирован пользователь ID=%d (%s)", user.ID, user.Email)
	return user, nil
}

// Login проверяет пароль, открывает сессию и выдает токен доступа
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AuthService] Попытка входа с неизвестным email=%s", email)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Неверный пароль для пользователя ID=%d", user.ID)
		return nil, ErrInvalidCredentials
	}

	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	session := &entity.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		LoginTime: s.clock(),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user, session.ID)
	if err != nil {
		log.Printf("[AuthService] Ошибка генерации токена для пользователя ID=%d: %v", user.ID, err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Пользователь ID=%d (%s) вошел в систему, сессия %s", user.ID, user.Email, session.ID)
	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.LoginTime.Add(s.jwtService.TokenTTL()),
		SessionID: session.ID,
	}, nil
}

// Logout закрывает сессию текущего запроса; токены этой сессии перестают приниматься
func (s *AuthService) Logout(ctx context.Context, p *auth.Principal) error {
	if p == nil || p.SessionID == "" {
		return apperrors.ErrUnauthorized
	}
	if err := s.sessionRepo.Close(ctx, p.SessionID, s.clock()); err != nil {
		return err
	}
	log.Printf("[AuthService] Пользователь ID=%d вышел, сессия %s закрыта", p.UserID, p.SessionID)
	return nil
}

// GenerateWSTicket выдает короткоживущий билет для подключения к WebSocket
func (s *AuthService) GenerateWSTicket(p *auth.Principal) (string, error) {
	return s.jwtService.GenerateWSTicket(p)
}

// CloseStaleSessions закрывает сессии, открытые дольше maxAge
func (s *AuthService) CloseStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error) {
	now := s.clock()
	return s.sessionRepo.CloseStale(ctx, now.Add(-maxAge), now)
}

// normalizeEmail приводит email к стандартному виду: trim пробелов + lowercase
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
