package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret", 1, 30)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService("", 1, 30)
	assert.Error(t, err)
}

func TestJWTService_GenerateAndParseToken(t *testing.T) {
	svc := newTestJWTService(t)
	user := &entity.User{ID: 5, Email: "prof@example.com", Role: entity.RoleInstructor}

	token, err := svc.GenerateToken(user, "session-1")
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)

	p := claims.Principal()
	assert.True(t, p.CanAuthor())
	assert.False(t, p.IsAdmin())
}

func TestJWTService_TicketIsNotAccessToken(t *testing.T) {
	svc := newTestJWTService(t)
	principal := &Principal{UserID: 3, Role: entity.RoleStudent, SessionID: "s"}

	ticket, err := svc.GenerateWSTicket(principal)
	require.NoError(t, err)

	_, err = svc.ParseToken(ticket)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "WS-тикет не должен приниматься как токен доступа")

	claims, err := svc.ParseWSTicket(ticket)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)

	token, err := svc.GenerateToken(&entity.User{ID: 3}, "s")
	require.NoError(t, err)
	_, err = svc.ParseWSTicket(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestJWTService_ExpiredAndForeignTokens(t *testing.T) {
	svc := newTestJWTService(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTCustomClaims{
		UserID: 1,
		Usage:  usageAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredString, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(expiredString)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)

	other, err := NewJWTService("other-secret", 1, 30)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(&entity.User{ID: 1}, "s")
	require.NoError(t, err)
	_, err = svc.ParseToken(foreign)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestPrincipal_Roles(t *testing.T) {
	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.CanAuthor())

	admin := &Principal{UserID: 1, Role: entity.RoleAdmin}
	student := &Principal{UserID: 2, Role: entity.RoleStudent}

	assert.True(t, admin.Owns(99))
	assert.True(t, student.Owns(2))
	assert.False(t, student.Owns(3))
	assert.True(t, student.HasRole(entity.RoleStudent, entity.RoleInstructor))
	assert.False(t, student.HasRole(entity.RoleAdmin))
}
