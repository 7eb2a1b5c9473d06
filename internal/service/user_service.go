package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// UserService предоставляет методы для работы с профилем пользователя
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetProfile возвращает пользователя по ID
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile меняет имя пользователя и полное имя
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, username, fullName string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	username = strings.TrimSpace(username)
	if username != "" && username != user.Username {
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check username availability: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: username '%s' already taken", apperrors.ErrConflict, username)
		}
		updates["username"] = username
		user.Username = username
	}
	fullName = strings.TrimSpace(fullName)
	if fullName != "" && fullName != user.FullName {
		updates["full_name"] = fullName
		user.FullName = fullName
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, updates); err != nil {
		return nil, err
	}
	return user, nil
}

// SetLanguage сохраняет язык интерфейса пользователя
func (s *UserService) SetLanguage(ctx context.Context, userID uint, language string) error {
	if !entity.IsSupportedLanguage(language) {
		return fmt.Errorf("%w: invalid language '%s', allowed: fr, en", apperrors.ErrValidation, language)
	}
	return s.userRepo.UpdateProfile(ctx, userID, map[string]interface{}{
		"language": language,
	})
}
