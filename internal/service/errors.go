package service

import (
	"fmt"

	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// Ошибки сервисов, которые обработчики отображают в стабильные коды
var (
	ErrNotEnrolled        = fmt.Errorf("%w: user is not enrolled in the course", apperrors.ErrForbidden)
	ErrAlreadyEnrolled    = fmt.Errorf("%w: user is already enrolled in the course", apperrors.ErrConflict)
	ErrAttemptCompleted   = fmt.Errorf("%w: attempt is already completed", apperrors.ErrConflict)
	ErrAttemptNotOwned    = fmt.Errorf("%w: attempt belongs to another user", apperrors.ErrForbidden)
	ErrThreadClosed       = fmt.Errorf("%w: thread is closed", apperrors.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	ErrNotAuthor          = fmt.Errorf("%w: authoring requires instructor role", apperrors.ErrForbidden)
)
