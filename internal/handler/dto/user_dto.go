package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// RegisterRequest - регистрация пользователя
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"max=150"`
	Language string `json:"language" binding:"omitempty,oneof=fr en"`
}

// LoginRequest - вход по email и паролю
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest - изменение профиля
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	FullName string `json:"full_name" binding:"max=150"`
}

// LanguageRequest - смена языка интерфейса
type LanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=fr en"`
}

// UserResponse - публичное представление пользователя
type UserResponse struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	XP            int64     `json:"xp"`
	Level         int       `json:"level"`
	LevelProgress int       `json:"level_progress"`
	Language      string    `json:"language"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUserResponse создает DTO пользователя
func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          u.Role,
		XP:            u.XP,
		Level:         u.Level(),
		LevelProgress: entity.LevelProgress(u.XP),
		Language:      u.Language,
		CreatedAt:     u.CreatedAt,
	}
}

// CreateThreadRequest - новая тема форума с первым сообщением
type CreateThreadRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body" binding:"required,max=10000"`
}

// ReplyRequest - ответ в теме
type ReplyRequest struct {
	Body string `json:"body" binding:"required,max=10000"`
}

// CloseThreadRequest - закрытие или открытие темы
type CloseThreadRequest struct {
	Closed bool `json:"closed"`
}
