package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/middleware"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/quizbuilder"
	"github.com/yourusername/lms-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

var (
	testInstructor = &auth.Principal{UserID: 100, Role: entity.RoleInstructor, SessionID: "s-1"}
	testStudent    = &auth.Principal{UserID: 5, Role: entity.RoleStudent, SessionID: "s-2"}
)

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// withPrincipal кладет пользователя в контекст, как это делает AuthMiddleware
func withPrincipal(c *gin.Context, p *auth.Principal) *gin.Context {
	middleware.SetPrincipal(c, p)
	return c
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Тело ответа должно быть корректным JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// handleError
// ============================================================================

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: quiz 7", apperrors.ErrNotFound), http.StatusNotFound},
		{"conflict", service.ErrAlreadyEnrolled, http.StatusConflict},
		{"validation", fmt.Errorf("%w: bad level", apperrors.ErrValidation), http.StatusUnprocessableEntity},
		{"builder validation", &quizbuilder.ValidationError{Message: quizbuilder.MsgSelectCorrect}, http.StatusUnprocessableEntity},
		{"unauthorized", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", apperrors.ErrExpiredToken, http.StatusUnauthorized},
		{"forbidden", service.ErrNotAuthor, http.StatusForbidden},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c, w := newTestGinContext("GET", "/", nil)

			// Act
			handleError(c, "Test", tt.err)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code, "Неверный статус для %v", tt.err)
		})
	}
}

func TestHandleError_InternalErrorIsHidden(t *testing.T) {
	c, w := newTestGinContext("GET", "/", nil)

	handleError(c, "Test", errors.New("pq: password authentication failed"))

	resp := parseJSONResponse(t, w)
	assert.Equal(t, "Internal server error", resp["error"], "Текст внутренней ошибки не должен уходить клиенту")
}

func TestHandleError_SubmitFailureUsesUserMessage(t *testing.T) {
	c, w := newTestGinContext("GET", "/", nil)

	handleError(c, "Test", &quizbuilder.SubmitError{Err: errors.New("tx aborted")})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, quizbuilder.MsgCreateFailed, resp["error"])
}

func TestPrincipal_MissingReturns401(t *testing.T) {
	c, w := newTestGinContext("GET", "/", nil)

	_, ok := principal(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
