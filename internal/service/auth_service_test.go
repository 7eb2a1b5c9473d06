package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/pkg/auth"
)

type authDeps struct {
	users    *MockUserRepository
	sessions *MockSessionRepository
	jwt      *auth.JWTService
}

func newAuthService(t *testing.T) (*AuthService, authDeps) {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret", 24, 30)
	require.NoError(t, err)
	deps := authDeps{
		users:    new(MockUserRepository),
		sessions: new(MockSessionRepository),
		jwt:      jwtService,
	}
	svc, err := NewAuthService(deps.users, deps.sessions, deps.jwt)
	require.NoError(t, err)
	svc.clock = fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	return svc, deps
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// ============================================================================
// Регистрация
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	svc, deps := newAuthService(t)
	ctx := context.Background()
	deps.users.On("GetByEmail", ctx, "marie@example.com").Return(nil, apperrors.ErrNotFound)
	deps.users.On("GetByUsername", ctx, "marie").Return(nil, apperrors.ErrNotFound)
	deps.users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	// Act
	user, err := svc.Register(ctx, RegisterInput{
		Username: " marie ",
		Email:    "  Marie@Example.com ",
		Password: "motdepasse",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "marie@example.com", user.Email, "email нормализуется")
	assert.Equal(t, entity.RoleStudent, user.Role)
	assert.Equal(t, entity.LanguageFrench, user.Language)
	deps.users.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"пустое имя", RegisterInput{Email: "a@example.com", Password: "motdepasse"}},
		{"неверный email", RegisterInput{Username: "a", Email: "pas-un-email", Password: "motdepasse"}},
		{"короткий пароль", RegisterInput{Username: "a", Email: "a@example.com", Password: "court"}},
		{"неизвестный язык", RegisterInput{Username: "a", Email: "a@example.com", Password: "motdepasse", Language: "de"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, deps := newAuthService(t)
	ctx := context.Background()
	deps.users.On("GetByEmail", ctx, "marie@example.com").Return(&entity.User{ID: 1}, nil)

	_, err := svc.Register(ctx, RegisterInput{Username: "marie", Email: "marie@example.com", Password: "motdepasse"})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	deps.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ============================================================================
// Вход и выход
// ============================================================================

func TestAuthService_Login_OpensSession(t *testing.T) {
	// Arrange
	svc, deps := newAuthService(t)
	ctx := context.Background()
	user := &entity.User{ID: 5, Email: "marie@example.com", Role: entity.RoleStudent, Password: hashed(t, "motdepasse")}
	deps.users.On("GetByEmail", ctx, "marie@example.com").Return(user, nil)
	deps.sessions.On("Create", ctx, mock.MatchedBy(func(s *entity.Session) bool {
		return s.UserID == 5 && s.ID != "" && s.IPAddress == "127.0.0.1"
	})).Return(nil)

	// Act
	result, err := svc.Login(ctx, "Marie@example.com", "motdepasse", "127.0.0.1", "test-agent")

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC), result.ExpiresAt)

	claims, err := deps.jwt.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, claims.SessionID, "токен привязан к сессии")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, deps := newAuthService(t)
	ctx := context.Background()
	deps.users.On("GetByEmail", ctx, "marie@example.com").Return(&entity.User{ID: 5, Password: hashed(t, "motdepasse")}, nil)

	_, err := svc.Login(ctx, "marie@example.com", "mauvais", "", "")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	deps.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, deps := newAuthService(t)
	ctx := context.Background()
	deps.users.On("GetByEmail", ctx, "inconnu@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Login(ctx, "inconnu@example.com", "motdepasse", "", "")

	assert.ErrorIs(t, err, ErrInvalidCredentials, "ответ не раскрывает, существует ли email")
}

func TestAuthService_Logout_ClosesSession(t *testing.T) {
	svc, deps := newAuthService(t)
	ctx := context.Background()
	deps.sessions.On("Close", ctx, "session-1", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)).Return(nil)

	err := svc.Logout(ctx, &auth.Principal{UserID: 5, SessionID: "session-1"})

	require.NoError(t, err)
	deps.sessions.AssertExpectations(t)
}

func TestAuthService_Logout_WithoutSession(t *testing.T) {
	svc, _ := newAuthService(t)

	err := svc.Logout(context.Background(), &auth.Principal{UserID: 5})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_CloseStaleSessions(t *testing.T) {
	svc, deps := newAuthService(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	deps.sessions.On("CloseStale", ctx, now.Add(-48*time.Hour), now).Return(int64(3), nil)

	closed, err := svc.CloseStaleSessions(ctx, 48*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, int64(3), closed)
}

func TestNewAuthService_RequiresDependencies(t *testing.T) {
	_, err := NewAuthService(nil, new(MockSessionRepository), nil)
	assert.Error(t, err)
}
